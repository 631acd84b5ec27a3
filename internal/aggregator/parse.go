package aggregator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/guttosm/tradesummary/internal/domain/models"
)

// FieldCount is the number of columns in a trade row.
const FieldCount = 4

// ParseTrade converts a raw row into a models.Trade.
//
// Column order:
//
//	0 timestamp (int64)
//	1 symbol    (opaque, non-empty, kept as-is)
//	2 quantity  (int64)
//	3 price     (int64)
//
// The symbol is validated first, so a row with an empty symbol always fails
// with ErrInvalidSymbol whatever the other cells hold. Numeric cells tolerate
// surrounding whitespace and a leading sign; anything else (decimals, words)
// fails with ErrInvalidField.
func ParseTrade(fields []string) (models.Trade, error) {
	var t models.Trade

	if len(fields) < 2 || fields[1] == "" {
		return t, ErrInvalidSymbol
	}
	t.Symbol = fields[1]

	if len(fields) != FieldCount {
		return t, &FieldError{
			Field: "row",
			Value: strings.Join(fields, ","),
			Err:   fmt.Errorf("expected %d columns, got %d", FieldCount, len(fields)),
		}
	}

	var err error
	if t.Timestamp, err = parseInt("timestamp", fields[0]); err != nil {
		return t, err
	}
	if t.Quantity, err = parseInt("quantity", fields[2]); err != nil {
		return t, err
	}
	if t.Price, err = parseInt("price", fields[3]); err != nil {
		return t, err
	}
	return t, nil
}

func parseInt(field, raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		// strconv errors repeat the input; keep only the reason.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &FieldError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}
