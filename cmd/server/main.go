// Command server runs the Caked with Love HTTP API: the bakery menu, chat
// sessions with the ordering assistant, and the order ledger.
//
//	@title			Caked with Love API
//	@version		1.0
//	@description	Chat ordering assistant for a home bakery: menu, chat sessions and order ledger.
//	@BasePath		/api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/caked-with-love/docs"
	"github.com/tbourn/caked-with-love/internal/completion"
	"github.com/tbourn/caked-with-love/internal/config"
	httpapi "github.com/tbourn/caked-with-love/internal/http"
	"github.com/tbourn/caked-with-love/internal/menu"
	"github.com/tbourn/caked-with-love/internal/observability"
	"github.com/tbourn/caked-with-love/internal/repo"
	"github.com/tbourn/caked-with-love/internal/services"
	"github.com/tbourn/caked-with-love/internal/session"
	"github.com/tbourn/caked-with-love/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	purgeInterval   = 15 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	catalog, err := menu.Load(cfg.MenuPath)
	if err != nil {
		var se *menu.StartupError
		if errors.As(err, &se) {
			log.Fatal().Err(err).Str("path", cfg.MenuPath).Msg("menu unavailable; refusing to start")
		}
		log.Fatal().Err(err).Msg("menu load failed")
	}
	log.Info().
		Int("items", catalog.Len()).
		Strs("categories", catalog.CategoryNames()).
		Str("path", cfg.MenuPath).
		Msg("menu loaded")

	for _, p := range []string{cfg.LedgerPath, cfg.DBPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("cannot create data directory")
		}
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	go purgeIdempotency(ctx, &repo.IdempotencyStore{DB: db, TTL: cfg.IdempotencyTTL})

	ledger := repo.NewLedger(cfg.LedgerPath)
	client := completion.NewHTTPClient(completion.Options{
		URL:     cfg.Completion.URL,
		APIKey:  cfg.Completion.APIKey,
		Model:   cfg.Completion.Model,
		Timeout: cfg.Completion.Timeout,
	})
	if cfg.Completion.APIKey == "" {
		log.Warn().Msg("no completion API key configured; chat replies will be apologies")
	}

	deps := httpapi.Deps{
		Sessions: session.NewStore(cfg.SessionIdleTTL),
		Chat:     services.NewChatService(client, catalog, cfg.MaxPromptRunes),
		Menu:     services.NewMenuService(catalog),
		Orders:   services.NewOrderService(catalog, ledger),
		Idem:     &repo.IdempotencyStore{DB: db, TTL: cfg.IdempotencyTTL},
	}

	docs.SwaggerInfo.BasePath = cfg.APIBasePath
	docs.SwaggerInfo.Version = version

	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("model", client.Model()).
			Str("ledger", ledger.Path()).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("stopped")
}

// purgeIdempotency drops expired stored order responses until ctx ends.
func purgeIdempotency(ctx context.Context, store *repo.IdempotencyStore) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, store.DB, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("idempotency records expired")
			}
		}
	}
}
