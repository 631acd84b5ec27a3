package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/guttosm/tradesummary/internal/domain/models"
	pq "github.com/lib/pq"
)

// SummaryRepository defines contract for DB operations.
type SummaryRepository interface {
	GetSummaryBySymbol(symbol string) (*models.Summary, error)
	ListSummaries() ([]models.Summary, error)
	HasRunForSource(source string) (bool, error)
	// WriteRun runs fn in one transaction. The writes fn makes are committed
	// together when it returns nil and rolled back otherwise.
	WriteRun(fn func(w RunWriter) error) error
}

// RunWriter is the transaction-scoped half of the repository used to store a run.
type RunWriter interface {
	DeleteRunBySource(source string) error
	InsertSummariesBatch(runID string, rows []models.Summary) error
	UpsertRunLog(runID, source string, recordCount, symbolCount int) error
}

type summaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

// WriteRun begins a transaction, hands fn a RunWriter bound to it and commits
// only when fn succeeds.
func (r *summaryRepository) WriteRun(fn func(w RunWriter) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(&runWriter{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type runWriter struct {
	tx *sql.Tx
}

// InsertSummariesBatch streams rows into symbol_summaries with COPY.
func (w *runWriter) InsertSummariesBatch(runID string, rows []models.Summary) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := w.tx.Prepare(pq.CopyIn(
		"symbol_summaries",
		"run_id",
		"symbol",
		"max_gap",
		"volume",
		"weighted_average_price",
		"max_price",
	))
	if err != nil {
		return err
	}

	for _, s := range rows {
		if _, err := stmt.Exec(runID, s.Symbol, s.MaxGap, s.Volume, s.WeightedAveragePrice, s.MaxPrice); err != nil {
			_ = stmt.Close()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		return err
	}
	return stmt.Close()
}

// UpsertRunLog records (or replaces) the run entry for a source.
// Summaries only become visible to readers once their run is logged.
func (w *runWriter) UpsertRunLog(runID, source string, recordCount, symbolCount int) error {
	_, err := w.tx.Exec(`
		INSERT INTO summary_runs (run_id, source, record_count, symbol_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source)
		DO UPDATE SET run_id = EXCLUDED.run_id,
					  record_count = EXCLUDED.record_count,
					  symbol_count = EXCLUDED.symbol_count,
					  ingested_at = NOW()
	`, runID, source, recordCount, symbolCount)
	return err
}

// DeleteRunBySource removes a source's run and its summaries.
func (w *runWriter) DeleteRunBySource(source string) error {
	if _, err := w.tx.Exec(`
		DELETE FROM symbol_summaries
		WHERE run_id IN (SELECT run_id FROM summary_runs WHERE source = $1)
	`, source); err != nil {
		return err
	}
	_, err := w.tx.Exec(`DELETE FROM summary_runs WHERE source = $1`, source)
	return err
}

// HasRunForSource checks whether a run was already recorded for the given input.
func (r *summaryRepository) HasRunForSource(source string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM summary_runs WHERE source = $1)`, source).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetSummaryBySymbol returns the symbol's row from the most recent run that
// contains it, or nil when the symbol was never stored.
func (r *summaryRepository) GetSummaryBySymbol(symbol string) (*models.Summary, error) {
	var s models.Summary
	err := r.db.QueryRow(`
		SELECT s.symbol, s.max_gap, s.volume, s.weighted_average_price, s.max_price
		FROM symbol_summaries s
		JOIN summary_runs r ON r.run_id = s.run_id
		WHERE s.symbol = $1
		ORDER BY r.ingested_at DESC
		LIMIT 1
	`, symbol).Scan(&s.Symbol, &s.MaxGap, &s.Volume, &s.WeightedAveragePrice, &s.MaxPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSummaries returns the table of the most recent run.
// Symbols are ordered byte-wise (COLLATE "C") to match the file output.
func (r *summaryRepository) ListSummaries() ([]models.Summary, error) {
	rows, err := r.db.Query(`
		SELECT s.symbol, s.max_gap, s.volume, s.weighted_average_price, s.max_price
		FROM symbol_summaries s
		WHERE s.run_id = (SELECT run_id FROM summary_runs ORDER BY ingested_at DESC LIMIT 1)
		ORDER BY s.symbol COLLATE "C"
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.Summary, 0)
	for rows.Next() {
		var s models.Summary
		if err := rows.Scan(&s.Symbol, &s.MaxGap, &s.Volume, &s.WeightedAveragePrice, &s.MaxPrice); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
