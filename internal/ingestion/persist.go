package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/tradesummary/internal/logger"
	"github.com/guttosm/tradesummary/internal/storage"
)

const defaultBatchSize = 5000

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.SummaryRepository {
	return storage.NewSummaryRepository(db)
}

// PersistResult stores a finished run under source (typically the input path).
//
// Behavior:
//   - Idempotent per source: a source already stored is skipped unless force.
//   - With force, the previous run for source is deleted first.
//   - The delete, the batched inserts and the run log share one transaction:
//     readers see the old run or the new one, never a mix, and a failure
//     keeps whatever was stored before.
//
// Returns:
//   - bool: true when the run was skipped because source was already stored.
//   - error: first error encountered (if any).
func PersistResult(ctx context.Context, db *sql.DB, source string, res *Result, force bool) (bool, error) {
	repo := repoCtor(db)
	base := filepath.Base(source)
	start := time.Now()

	exists, err := repo.HasRunForSource(source)
	if err != nil {
		return false, fmt.Errorf("source %s: check run log: %w", base, err)
	}
	if exists && !force {
		logger.L().Info().Str("source", base).Bool("skipped", true).Msg("already persisted")
		return true, nil
	}

	runID := uuid.NewString()
	err = repo.WriteRun(func(w storage.RunWriter) error {
		if exists {
			if err := w.DeleteRunBySource(source); err != nil {
				return fmt.Errorf("source %s: delete existing: %w", base, err)
			}
		}
		for lo := 0; lo < len(res.Rows); lo += defaultBatchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			hi := min(lo+defaultBatchSize, len(res.Rows))
			if err := w.InsertSummariesBatch(runID, res.Rows[lo:hi]); err != nil {
				return fmt.Errorf("source %s: insert rows %d-%d: %w", base, lo+1, hi, err)
			}
		}
		if err := w.UpsertRunLog(runID, source, res.Records, res.Symbols); err != nil {
			return fmt.Errorf("source %s: upsert run log: %w", base, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	logger.L().Info().
		Str("source", base).
		Str("run_id", runID).
		Int("symbols", res.Symbols).
		Dur("elapsed", time.Since(start)).
		Bool("force", force).
		Msg("run persisted")
	return false, nil
}
