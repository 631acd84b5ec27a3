package models

// SymbolState is the running state kept for one symbol while a trade stream
// is being folded.
//
// Fields:
//   - FirstTimestamp: timestamp of the first trade seen for the symbol.
//   - LastTimestamp: timestamp of the most recent trade, in arrival order.
//   - MaxGap: largest timestamp difference between consecutive trades, in arrival order.
//   - Volume: sum of quantities.
//   - TotalNotional: sum of price*quantity.
//   - MaxPrice: highest price seen.
type SymbolState struct {
	FirstTimestamp int64
	LastTimestamp  int64
	MaxGap         int64
	Volume         int64
	TotalNotional  int64
	MaxPrice       int64
}

// Summary is one row of the output table for a symbol.
//
// Column order when written: Symbol, MaxGap, Volume, WeightedAveragePrice, MaxPrice.
//
// swagger:model Summary
type Summary struct {
	Symbol               string `json:"symbol" example:"aaa"`
	MaxGap               int64  `json:"max_gap" example:"3"`
	Volume               int64  `json:"volume" example:"3"`
	WeightedAveragePrice int64  `json:"weighted_average_price" example:"1"`
	MaxPrice             int64  `json:"max_price" example:"3"`
}
