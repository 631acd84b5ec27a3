package dto

// SummaryResponse represents the JSON structure returned for a single symbol by
// the GET /api/v1/summaries/{symbol} endpoint.
//
// Fields match the API contract and may differ from internal domain models.
type SummaryResponse struct {
	Symbol               string `json:"symbol" example:"aaa"`
	MaxGap               int64  `json:"max_gap" example:"3"`
	Volume               int64  `json:"volume" example:"3"`
	WeightedAveragePrice int64  `json:"weighted_average_price" example:"1"`
	MaxPrice             int64  `json:"max_price" example:"3"`
}

// SummariesResponse wraps a symbol-ordered table of summaries.
type SummariesResponse struct {
	Count     int               `json:"count" example:"2"`
	Summaries []SummaryResponse `json:"summaries"`
}
