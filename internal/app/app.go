package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesummary/config"
	"github.com/guttosm/tradesummary/internal/api"
	"github.com/guttosm/tradesummary/internal/cache"
	"github.com/guttosm/tradesummary/internal/logger"
	"github.com/guttosm/tradesummary/internal/service"
	"github.com/guttosm/tradesummary/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres() and, when migrate is set,
//     applies the embedded migrations.
//   - Connects to Redis when REDIS_ADDR is configured. A cache that cannot be
//     reached is logged and skipped; the API serves straight from Postgres.
//   - Wires repository, service, handler and router.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp(migrate bool) (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if migrate {
		if err := migrator(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	// Optional read-through cache
	rc, err := cacheOpener(cfg)
	if err != nil {
		logger.L().Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("cache disabled")
		rc = nil
	}

	// Initialize repository layer (responsible for DB access)
	repo := storage.NewSummaryRepository(db)

	// Initialize service layer; a nil *RedisCache must not become a non-nil interface
	var sc cache.SummaryCache
	var cachePing func() error
	if rc != nil {
		sc = rc
		cachePing = func() error { return rc.Ping(context.Background()) }
	}
	svc := service.NewSummaryService(repo, sc)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(db.Ping, cachePing)
	healthHandler.Register(router)

	// Cleanup resources on shutdown
	cleanup := func() {
		if rc != nil {
			_ = rc.Close()
		}
		_ = db.Close()
	}

	return router, cleanup, nil
}
