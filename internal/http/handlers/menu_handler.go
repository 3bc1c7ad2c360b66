// Menu HTTP handlers.
//
//   - GET /menu                        (full catalog, file order)
//   - GET /menu/categories/{category}  (one category)
//   - GET /menu/price                  (price of one item)
//   - GET /menu/search                 (keyword search)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/caked-with-love/internal/menu"
	"github.com/tbourn/caked-with-love/internal/search"
	"github.com/tbourn/caked-with-love/internal/services"
	"github.com/tbourn/caked-with-love/internal/utils"
)

const (
	defaultSearchK = 5
	maxSearchK     = 20
)

// ItemView is a menu item with its display price.
type ItemView struct {
	Name    string     `json:"name"    example:"Chocolate"`
	Price   menu.Price `json:"price"   example:"500"`
	Display string     `json:"display" example:"₹500"`
}

// CategoryView is a category with its items in file order.
type CategoryView struct {
	Name  string     `json:"name" example:"Cakes"`
	Items []ItemView `json:"items"`
}

// MenuResponse is the full catalog.
type MenuResponse struct {
	Categories []CategoryView `json:"categories"`
}

// PriceResponse is the answer to a single price lookup.
type PriceResponse struct {
	Category string     `json:"category" example:"Cakes"`
	Item     string     `json:"item"     example:"Chocolate"`
	Price    menu.Price `json:"price"    example:"500"`
	Display  string     `json:"display"  example:"₹500"`
}

// SearchResponse lists ranked search hits.
type SearchResponse struct {
	Query   string          `json:"query"   example:"chocolate cake"`
	Results []search.Result `json:"results"`
}

func categoryView(c menu.Category) CategoryView {
	items := make([]ItemView, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, ItemView{Name: it.Name, Price: it.Price, Display: it.Price.String()})
	}
	return CategoryView{Name: c.Name, Items: items}
}

// GetMenu godoc
// @ID          getMenu
// @Summary     Full menu
// @Description Returns every category with its items and display prices, in the order the baker wrote them.
// @Tags        Menu
// @Produce     json
// @Success     200  {object}  handlers.MenuResponse
// @Router      /menu [get]
func (h *Handlers) GetMenu(c *gin.Context) {
	cats := h.menuSvc.Menu()
	out := MenuResponse{Categories: make([]CategoryView, 0, len(cats))}
	for _, cat := range cats {
		out.Categories = append(out.Categories, categoryView(cat))
	}
	ok(c, http.StatusOK, out)
}

// GetCategory godoc
// @ID          getCategory
// @Summary     One menu category
// @Description Category names match exactly first, then case-insensitively.
// @Tags        Menu
// @Produce     json
// @Param       category  path  string  true  "Category name"  example(Cakes)
// @Success     200  {object}  handlers.CategoryView
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown category"
// @Router      /menu/categories/{category} [get]
func (h *Handlers) GetCategory(c *gin.Context) {
	cat, err := h.menuSvc.Category(c.Param("category"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeCategoryNotFound, err.Error())
		return
	}
	ok(c, http.StatusOK, categoryView(cat))
}

// GetPrice godoc
// @ID          getPrice
// @Summary     Price of one item
// @Description The price always comes from the catalog.
// @Tags        Menu
// @Produce     json
// @Param       category  query  string  true  "Category name"  example(Cakes)
// @Param       item      query  string  true  "Item name"      example(Chocolate)
// @Success     200  {object}  handlers.PriceResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing parameter"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown item"
// @Router      /menu/price [get]
func (h *Handlers) GetPrice(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	item := strings.TrimSpace(c.Query("item"))
	if category == "" || item == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "category and item are required")
		return
	}
	e, err := h.menuSvc.Price(category, item)
	if err != nil {
		if errors.Is(err, services.ErrUnknownItem) {
			fail(c, http.StatusNotFound, ErrCodeUnknownItem, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, PriceResponse{
		Category: e.Category,
		Item:     e.Item,
		Price:    e.Price,
		Display:  e.Price.String(),
	})
}

// SearchMenu godoc
// @ID          searchMenu
// @Summary     Search the menu
// @Description Ranks items by keyword overlap between the query and "category item".
// @Tags        Menu
// @Produce     json
// @Param       q  query  string  true   "Search text"     example(chocolate cake)
// @Param       k  query  int     false  "Maximum hits"    minimum(1) maximum(20) default(5)
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing query"
// @Router      /menu/search [get]
func (h *Handlers) SearchMenu(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q is required")
		return
	}
	k := utils.AtoiDefault(c.Query("k"), defaultSearchK)
	if k < 1 {
		k = 1
	}
	if k > maxSearchK {
		k = maxSearchK
	}
	res := h.menuSvc.Search(c.Request.Context(), q, k)
	if res == nil {
		res = []search.Result{}
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Results: res})
}
