package models

// Trade represents a single row of the trades input.
// Each field matches one column in the input file.
//
// Column order:
//  1. Timestamp
//  2. Symbol
//  3. Quantity
//  4. Price
//
// A Trade is transient: it is folded into the per-symbol state and then dropped.
type Trade struct {
	Timestamp int64
	Symbol    string
	Quantity  int64
	Price     int64
}
