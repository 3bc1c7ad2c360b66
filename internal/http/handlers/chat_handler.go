// Chat session HTTP handlers.
//
// This file exposes REST endpoints for chat sessions:
//   - POST   /sessions        (create)
//   - GET    /sessions/{id}   (session with paginated turns)
//   - DELETE /sessions/{id}   (forget)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/caked-with-love/internal/domain"
	"github.com/tbourn/caked-with-love/internal/http/middleware"
	"github.com/tbourn/caked-with-love/internal/menu"
	"github.com/tbourn/caked-with-love/internal/search"
	"github.com/tbourn/caked-with-love/internal/services"
	"github.com/tbourn/caked-with-love/internal/session"
)

//
// Service contracts (context-aware)
//

// SessionStore is the in-memory session registry.
type SessionStore interface {
	Create() *session.Session
	Get(id string) (*session.Session, bool)
	Delete(id string) bool
}

// ChatService runs one request/reply cycle on a session.
type ChatService interface {
	// Send appends the user turn and the assistant reply (or apology) and
	// returns the assistant turn. Completion failures are never returned.
	Send(ctx context.Context, sess *session.Session, text string) (domain.ChatTurn, error)
}

// MenuService is the read-only catalog.
type MenuService interface {
	Menu() []menu.Category
	Category(name string) (menu.Category, error)
	Price(category, item string) (menu.Entry, error)
	Search(ctx context.Context, q string, k int) []search.Result
}

// OrderService validates and records orders.
type OrderService interface {
	Submit(ctx context.Context, f services.OrderForm) (*domain.OrderRecord, int, error)
	Options() services.OrderOptions
	Export(ctx context.Context, w io.Writer) error
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// IdempotencyStore persists order responses keyed by (scope, client, key).
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, clientID, key string, now time.Time) (status int, body string, found bool, err error)
	Save(ctx context.Context, scope, clientID, key string, status int, body string, now time.Time) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for sessions, menu and orders. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	sessions SessionStore
	chatSvc  ChatService
	menuSvc  MenuService
	orderSvc OrderService
	idem     IdempotencyStore
}

// New constructs a Handlers instance. idem may be nil, which disables
// response replay for POST /orders.
func New(sessions SessionStore, chatSvc ChatService, menuSvc MenuService, orderSvc OrderService, idem IdempotencyStore) *Handlers {
	return &Handlers{
		sessions: sessions,
		chatSvc:  chatSvc,
		menuSvc:  menuSvc,
		orderSvc: orderSvc,
		idem:     idem,
	}
}

//
// DTOs
//

// SessionResponse is a chat session and (a page of) its turns.
type SessionResponse struct {
	ID         string            `json:"id"         example:"3f2b8c1e-9a4d-4c2b-8f1e-2d3c4b5a6f70"`
	State      string            `json:"state"      example:"idle"`
	CreatedAt  time.Time         `json:"created_at"`
	Turns      []domain.ChatTurn `json:"turns"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

//
// Helpers
//

// lookupSession resolves the :id path parameter or writes the error response.
func (h *Handlers) lookupSession(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return nil, false
	}
	sess, found := h.sessions.Get(id)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeSessionNotFound, services.ErrSessionNotFound.Error())
		return nil, false
	}
	return sess, true
}

//
// Handlers
//

// CreateSession godoc
// @ID          createSession
// @Summary     Start a chat session
// @Description Creates an empty chat session. The returned id is the handle for all later chat calls.
// @Tags        Sessions
// @Produce     json
// @Success     201  {object}  handlers.SessionResponse
// @Router      /sessions [post]
func (h *Handlers) CreateSession(c *gin.Context) {
	sess := h.sessions.Create()
	middleware.LoggerFrom(c).Info().Str("session_id", sess.ID).Msg("session created")
	ok(c, http.StatusCreated, SessionResponse{
		ID:        sess.ID,
		State:     sess.State().String(),
		CreatedAt: sess.CreatedAt,
		Turns:     []domain.ChatTurn{},
	})
}

// GetSession godoc
// @ID          getSession
// @Summary     Get a chat session
// @Description Returns the session state and its turns, oldest first, paginated.
// @Tags        Sessions
// @Produce     json
//
// @Param       id         path   string  true  "Session ID (UUID)"  format(uuid)
// @Param       page       query  int     false "Page number"        minimum(1) default(1)
// @Param       page_size  query  int     false "Turns per page"     minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.SessionResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Session not found"
// @Router      /sessions/{id} [get]
func (h *Handlers) GetSession(c *gin.Context) {
	sess, found := h.lookupSession(c)
	if !found {
		return
	}
	turns := sess.Turns()
	lo, hi, p := paginate(c, len(turns))
	window := append([]domain.ChatTurn{}, turns[lo:hi]...)
	ok(c, http.StatusOK, SessionResponse{
		ID:         sess.ID,
		State:      sess.State().String(),
		CreatedAt:  sess.CreatedAt,
		Turns:      window,
		Pagination: &p,
	})
}

// DeleteSession godoc
// @ID          deleteSession
// @Summary     End a chat session
// @Description Forgets the session and its history.
// @Tags        Sessions
//
// @Param       id  path  string  true  "Session ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Session not found"
// @Router      /sessions/{id} [delete]
func (h *Handlers) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return
	}
	if !h.sessions.Delete(id) {
		fail(c, http.StatusNotFound, ErrCodeSessionNotFound, services.ErrSessionNotFound.Error())
		return
	}
	noContent(c)
}
