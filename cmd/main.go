package main

//
//  @title           tradesummary API
//  @version         1.0
//  @description     Per-symbol trade summaries: max time gap, volume, weighted average price and max price.
//  @termsOfService  https://github.com/guttosm/tradesummary
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tradesummary
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        summaries
//  @tag.description Stored and on-the-fly per-symbol summaries
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/guttosm/tradesummary/config"
	_ "github.com/guttosm/tradesummary/docs" // swagger docs
	"github.com/guttosm/tradesummary/internal/app"
	"github.com/guttosm/tradesummary/internal/ingestion"
	"github.com/guttosm/tradesummary/internal/logger"
	"github.com/guttosm/tradesummary/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// summarizeFlags carries the summarize-mode settings after flags override config.
type summarizeFlags struct {
	in, out   string
	delimiter string
	workers   int
	header    bool
	persist   bool
	force     bool
	migrate   bool
}

// Indirections for unit testing.
var (
	dbOpener    = app.InitPostgres
	cacheOpener = app.InitCache
	migrator    = storage.Migrate
	persister   = ingestion.PersistResult
)

// runSummarize computes the table for f.in and writes it to f.out.
// With persist, the run is also stored in Postgres and the cache is flushed so
// readers see the new values.
func runSummarize(ctx context.Context, cfg config.Config, f summarizeFlags) error {
	comma, size := utf8.DecodeRuneInString(f.delimiter)
	if size == 0 || size != len(f.delimiter) {
		return fmt.Errorf("invalid delimiter %q", f.delimiter)
	}
	if f.workers < 0 {
		return fmt.Errorf("invalid workers %d", f.workers)
	}

	opts := ingestion.Options{Comma: comma, Header: f.header, Workers: f.workers}
	res, err := ingestion.ProcessFile(ctx, f.in, f.out, opts)
	if err != nil {
		return err
	}
	if !f.persist {
		return nil
	}

	db, err := dbOpener(cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer func() { _ = db.Close() }()

	if f.migrate {
		if err := migrator(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	skipped, err := persister(ctx, db, f.in, res, f.force)
	if err != nil {
		return err
	}
	if !skipped {
		flushCache(ctx, cfg)
	}
	return nil
}

// flushCache drops cached summaries after a new run is stored. A cache that
// cannot be reached only expires by TTL, so failures are logged.
func flushCache(ctx context.Context, cfg config.Config) {
	rc, err := cacheOpener(cfg)
	if err != nil {
		logger.L().Warn().Err(err).Msg("cache flush skipped")
		return
	}
	if rc == nil {
		return
	}
	defer func() { _ = rc.Close() }()
	if err := rc.Flush(ctx); err != nil {
		logger.L().Warn().Err(err).Msg("cache flush failed")
	}
}

// main is the entry point of the tradesummary application.
//
// Modes (selected via --mode flag):
//   - summarize: Reads a trade CSV and writes the per-symbol summary table.
//   - api:       Starts the REST API to expose stored summaries.
//
// Flags:
//   - --mode:      Execution mode ("summarize" or "api"). Default: "summarize".
//   - --in/--out:  Input and output paths. Default: INPUT_PATH / OUTPUT_PATH.
//   - --delimiter: Field delimiter for both files. Default: CSV_DELIMITER.
//   - --workers:   Symbol partitions (0=one per CPU, 1=sequential). Default: INGEST_WORKERS.
//   - --header:    Skip the first input row.
//   - --persist:   Also store the run in Postgres (--force replaces a stored run).
//   - --migrate:   Apply database migrations before persisting or serving.
//   - --port:      Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()
	cfg := config.AppConfig

	// Initialize JSON logger
	logger.Configure(cfg.Log.Level, cfg.Log.Pretty, os.Stdout)

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "summarize", "Mode: summarize or api")
	in := flag.String("in", cfg.Ingest.InputPath, "Input trade CSV")
	out := flag.String("out", cfg.Ingest.OutputPath, "Output summary CSV")
	delimiter := flag.String("delimiter", string(cfg.Ingest.Delimiter), "Single-character field delimiter")
	workers := flag.Int("workers", cfg.Ingest.Workers, "Symbol partitions (0=auto up to CPU, 1=sequential)")
	header := flag.Bool("header", false, "Skip the first input row")
	persist := flag.Bool("persist", false, "Store the run in Postgres")
	force := flag.Bool("force", false, "Replace a run already stored for the same input")
	migrate := flag.Bool("migrate", false, "Apply database migrations first")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "summarize":
		logger.L().Info().Msg("running summary")
		err := runSummarize(ctx, cfg, summarizeFlags{
			in:        *in,
			out:       *out,
			delimiter: *delimiter,
			workers:   *workers,
			header:    *header,
			persist:   *persist,
			force:     *force,
			migrate:   *migrate,
		})
		if err != nil {
			logger.L().Fatal().Err(err).Msg("summary failed")
		}
		logger.L().Info().Msg("summary completed successfully")

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp(*migrate)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

