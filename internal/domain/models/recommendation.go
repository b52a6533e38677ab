package models

// Action is a trading recommendation decision.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Recommendation combines one aggregated quote with one sentiment score
// through the deterministic decision rule. Immutable, never stored.
type Recommendation struct {
	Symbol     string  `json:"symbol"`
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Sentiment  float64 `json:"sentiment"`
	Price      float64 `json:"price"`
	Reasoning  string  `json:"reasoning"`
}
