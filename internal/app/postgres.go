package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guttosm/tradesummary/config"
	"github.com/guttosm/tradesummary/internal/logger"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

const pingTimeout = 5 * time.Second

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitPostgres opens the summary store described by cfg.Postgres, applies the
// configured pool limits and pings it once. The handle is closed again when
// the ping fails, so callers only own a *sql.DB on success.
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	pg := cfg.Postgres

	db, err := sqlOpener("postgres", pg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if pg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pg.MaxOpenConns)
	}
	if pg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pg.MaxIdleConns)
	}
	if pg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pg.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres %s:%d/%s: %w", pg.Host, pg.Port, pg.DBName, err)
	}

	logger.L().Info().
		Str("host", pg.Host).
		Int("port", pg.Port).
		Str("db", pg.DBName).
		Int("max_open_conns", pg.MaxOpenConns).
		Msg("postgres connected")
	return db, nil
}

// postgresOpener is an indirection used by InitializeApp; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres
