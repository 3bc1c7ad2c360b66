// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Customer data (transcripts, orders) is never cacheable
package httpapi

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/caked-with-love/internal/config"
	"github.com/tbourn/caked-with-love/internal/http/handlers"
	"github.com/tbourn/caked-with-love/internal/http/middleware"
)

// maxBodyBytes caps every request body (orders and chat messages are small).
const maxBodyBytes = 1 << 20

// Deps carries the application services the HTTP layer depends on.
// Idem may be nil, which disables idempotent order replay.
type Deps struct {
	Sessions handlers.SessionStore
	Chat     handlers.ChatService
	Menu     handlers.MenuService
	Orders   handlers.OrderService
	Idem     handlers.IdempotencyStore
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per client, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction; health checks and scrapes stay quiet
	r.Use(middleware.Logger(middleware.LoggerOptions{
		Redactor:  middleware.NewRedactor("X-API-Key"),
		SkipPaths: []string{"/health", "/metrics"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics("/metrics"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	ordersPath := path.Join(normalizePrefix(cfg.APIBasePath), "/orders")
	r.Use(idempotency(ordersPath, deps.Idem))

	// 8) Token-bucket rate limiter per client
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClient())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderClientID, middleware.HeaderIdempotencyKey, "If-None-Match",
	}
	exposeHeaders := []string{
		"X-Request-ID", "Content-Length", "Content-Disposition", "ETag", handlers.HeaderIdempotencyReplayed,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Sessions, deps.Chat, deps.Menu, deps.Orders, deps.Idem)
	compress := gzip.Gzip(gzip.DefaultCompression)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Chat sessions
		sessions := api.Group("/sessions", middleware.NoStore())
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.POST("/:id/messages", h.PostMessage)

		// Menu (read-only, cacheable)
		m := api.Group("/menu", compress)
		m.GET("", h.GetMenu)
		m.GET("/categories/:category", h.GetCategory)
		m.GET("/price", h.GetPrice)
		m.GET("/search", h.SearchMenu)

		// Orders
		orders := api.Group("/orders")
		orders.GET("/options", compress, h.GetOrderOptions)
		orders.POST("", middleware.NoStore(), h.CreateOrder)
		orders.GET("/export", middleware.NoStore(), compress, h.ExportOrders)
	}
}

// idempotency validates Idempotency-Key on every route, but only consults the
// order store (and so only grants a rate-limit bypass) for POST on ordersPath.
func idempotency(ordersPath string, store handlers.IdempotencyStore) gin.HandlerFunc {
	opts := middleware.IdempotencyOptions{MaxLen: 200}
	plain := middleware.IdempotencyValidator(opts, nil)
	if store == nil {
		return plain
	}
	withLookup := middleware.IdempotencyValidator(opts, func(ctx context.Context, clientID, key string, now time.Time) (bool, error) {
		_, _, found, err := store.Lookup(ctx, handlers.IdempotencyScopeOrders, clientID, key, now)
		return found, err
	})
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && c.FullPath() == ordersPath {
			withLookup(c)
			return
		}
		plain(c)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	return r.Group(normalizePrefix(prefix))
}

func normalizePrefix(prefix string) string {
	if prefix == "" || prefix == "/" {
		return ""
	}
	return prefix
}
