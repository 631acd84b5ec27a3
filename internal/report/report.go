package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/guttosm/tradesummary/internal/domain/models"
)

// WriteCSV writes one line per summary in the order given:
//
//	symbol, max_gap, volume, weighted_average_price, max_price
//
// No header row is written, in keeping with the input files.
func WriteCSV(w io.Writer, rows []models.Summary, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	rec := make([]string, 5)
	for i, r := range rows {
		rec[0] = r.Symbol
		rec[1] = strconv.FormatInt(r.MaxGap, 10)
		rec[2] = strconv.FormatInt(r.Volume, 10)
		rec[3] = strconv.FormatInt(r.WeightedAveragePrice, 10)
		rec[4] = strconv.FormatInt(r.MaxPrice, 10)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d (%s): %w", i+1, r.Symbol, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
