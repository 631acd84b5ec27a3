package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// RowFunc receives one raw row with its 1-based line number in the input.
// fields is reused between calls and must be copied if retained.
type RowFunc func(line int, fields []string) error

// ReadRecords streams CSV rows from r into fn.
// It fails on:
//   - unrecoverable I/O or CSV syntax errors
//   - any error returned by fn (the stream stops at that row)
//   - context cancellation, checked between rows
//
// Column count is not enforced here; the aggregator rejects malformed rows so
// that the symbol check keeps precedence over the field checks.
//
// Parameters:
//   - ctx:    context for cancellation.
//   - r:      source of the trade rows.
//   - comma:  field delimiter (e.g., ',').
//   - header: skip the first row when true.
//   - fn:     callback invoked for every data row.
func ReadRecords(ctx context.Context, r io.Reader, comma rune, header bool, fn RowFunc) error {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1 // checked per row by the aggregator
	cr.ReuseRecord = true

	if header {
		if _, err := cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read header: %w", err)
		}
	}

	lastLine := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read line after %d: %w", lastLine, err)
		}
		line, _ := cr.FieldPos(0)
		lastLine = line

		if err := fn(line, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
