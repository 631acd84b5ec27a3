package aggregator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSymbol is returned when a trade has an empty or missing symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrInvalidField is returned when timestamp, quantity or price is not an integer.
	ErrInvalidField = errors.New("invalid field")
	// ErrOverflow is returned when a running total of a symbol no longer fits in int64.
	ErrOverflow = errors.New("integer overflow")
)

// FieldError describes a raw field that could not be parsed.
// It matches ErrInvalidField with errors.Is.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }

func (e *FieldError) Unwrap() error { return e.Err }

// OverflowError names the symbol and the quantity that left the int64 range.
// It matches ErrOverflow with errors.Is.
type OverflowError struct {
	Symbol string
	Field  string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("symbol %q: %s overflows int64", e.Symbol, e.Field)
}

func (e *OverflowError) Is(target error) bool { return target == ErrOverflow }
