package aggregator

import (
	"maps"
	"math"
	"slices"

	"github.com/guttosm/tradesummary/internal/domain/models"
)

// Aggregator folds a trade stream into one SymbolState per symbol.
//
// Trades must be applied in arrival order: MaxGap depends on it. An Aggregator
// is not safe for concurrent use; parallel ingestion gives each partition its
// own instance and combines them with Merge.
type Aggregator struct {
	states  map[string]models.SymbolState
	records int
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{states: make(map[string]models.SymbolState)}
}

// Update applies one trade to the running state of its symbol.
//
// On the first trade of a symbol the state is seeded from that trade with a
// zero gap. On later trades the gap is the signed difference from the previous
// timestamp; a negative gap is kept as-is and simply loses the max.
//
// Totals are exact: a trade whose notional, or whose effect on the gap, volume
// or notional sum, does not fit in int64 fails with an *OverflowError and
// leaves the state untouched.
func (a *Aggregator) Update(t models.Trade) error {
	if t.Symbol == "" {
		return ErrInvalidSymbol
	}

	notional, ok := mulInt64(t.Price, t.Quantity)
	if !ok {
		return &OverflowError{Symbol: t.Symbol, Field: "notional"}
	}
	single := models.SymbolState{
		FirstTimestamp: t.Timestamp,
		LastTimestamp:  t.Timestamp,
		Volume:         t.Quantity,
		TotalNotional:  notional,
		MaxPrice:       t.Price,
	}

	next := single
	if prev, seen := a.states[t.Symbol]; seen {
		var err error
		if next, err = join(t.Symbol, prev, single); err != nil {
			return err
		}
	} else if err := checkAverage(t.Symbol, next); err != nil {
		return err
	}

	// The next state is built in full and stored in one assignment.
	a.states[t.Symbol] = next
	a.records++
	return nil
}

// UpdateFields parses a raw row with ParseTrade and applies it.
func (a *Aggregator) UpdateFields(fields []string) error {
	t, err := ParseTrade(fields)
	if err != nil {
		return err
	}
	return a.Update(t)
}

// State returns a copy of the running state for symbol.
func (a *Aggregator) State(symbol string) (models.SymbolState, bool) {
	s, ok := a.states[symbol]
	return s, ok
}

// Len is the number of distinct symbols seen.
func (a *Aggregator) Len() int { return len(a.states) }

// Records is the number of trades applied, including those merged in.
func (a *Aggregator) Records() int { return a.records }

// Finalize returns one summary per symbol in ascending byte order of symbol.
// It does not modify the Aggregator and may be called any number of times.
func (a *Aggregator) Finalize() []models.Summary {
	symbols := slices.Sorted(maps.Keys(a.states))

	out := make([]models.Summary, 0, len(symbols))
	for _, sym := range symbols {
		s := a.states[sym]
		out = append(out, models.Summary{
			Symbol:               sym,
			MaxGap:               s.MaxGap,
			Volume:               s.Volume,
			WeightedAveragePrice: floorDiv(s.TotalNotional, s.Volume),
			MaxPrice:             s.MaxPrice,
		})
	}
	return out
}

// Merge folds next into a, treating next as the continuation of a's stream.
//
// For a symbol present in both, next's trades are taken to arrive after a's,
// so the gap across the boundary (next.FirstTimestamp - a.LastTimestamp) takes
// part in MaxGap. When the partitions are disjoint by symbol, as produced by
// hashing on symbol, Merge is a plain union. next must not be used afterwards.
//
// On overflow Merge returns an *OverflowError and a is unchanged.
func (a *Aggregator) Merge(next *Aggregator) error {
	staged := make(map[string]models.SymbolState, len(next.states))
	for sym, ns := range next.states {
		prev, ok := a.states[sym]
		if !ok {
			staged[sym] = ns
			continue
		}
		joined, err := join(sym, prev, ns)
		if err != nil {
			return err
		}
		staged[sym] = joined
	}
	maps.Copy(a.states, staged)
	a.records += next.records
	return nil
}

// join appends the state of a later stretch of trades (next) to prev.
func join(symbol string, prev, next models.SymbolState) (models.SymbolState, error) {
	gap, ok := subInt64(next.FirstTimestamp, prev.LastTimestamp)
	if !ok {
		return prev, &OverflowError{Symbol: symbol, Field: "gap"}
	}
	volume, ok := addInt64(prev.Volume, next.Volume)
	if !ok {
		return prev, &OverflowError{Symbol: symbol, Field: "volume"}
	}
	notional, ok := addInt64(prev.TotalNotional, next.TotalNotional)
	if !ok {
		return prev, &OverflowError{Symbol: symbol, Field: "notional"}
	}

	out := models.SymbolState{
		FirstTimestamp: prev.FirstTimestamp,
		LastTimestamp:  next.LastTimestamp,
		MaxGap:         max(prev.MaxGap, next.MaxGap, gap),
		Volume:         volume,
		TotalNotional:  notional,
		MaxPrice:       max(prev.MaxPrice, next.MaxPrice),
	}
	return out, checkAverage(symbol, out)
}

// checkAverage rejects the one state whose floor average is not an int64:
// math.MinInt64 / -1.
func checkAverage(symbol string, s models.SymbolState) error {
	if s.Volume == -1 && s.TotalNotional == math.MinInt64 {
		return &OverflowError{Symbol: symbol, Field: "weighted average price"}
	}
	return nil
}

// floorDiv divides rounding toward negative infinity. A zero divisor yields 0.
func floorDiv(n, d int64) int64 {
	if d == 0 {
		return 0
	}
	q := n / d
	if n%d != 0 && (n < 0) != (d < 0) {
		q--
	}
	return q
}
