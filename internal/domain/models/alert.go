package models

import (
	"fmt"
	"time"
)

// AlertKind distinguishes threshold rules.
type AlertKind string

const (
	AlertPrice          AlertKind = "price_alert"
	AlertSentimentSpike AlertKind = "sentiment_spike"
)

// Severity of an alert. Sentiment spikes are always high; there is no
// medium tier for them.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Alert is one threshold-triggered event from a sweep. The ID is derived
// from kind and symbol so consumers can deduplicate across sweeps; the
// evaluator itself keeps no cross-sweep state.
type Alert struct {
	ID            string    `json:"id"`
	Kind          AlertKind `json:"type"`
	Severity      Severity  `json:"severity"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Symbol        string    `json:"symbol"`
	ChangePercent float64   `json:"changePercent,omitempty"`
	Sentiment     float64   `json:"sentiment,omitempty"`
	CreatedAt     time.Time `json:"timestamp"`
	Read          bool      `json:"read"`
}

// AlertID builds the deterministic alert identifier.
func AlertID(kind AlertKind, symbol string) string {
	switch kind {
	case AlertPrice:
		return fmt.Sprintf("price-%s", symbol)
	case AlertSentimentSpike:
		return fmt.Sprintf("sentiment-%s", symbol)
	default:
		return fmt.Sprintf("%s-%s", kind, symbol)
	}
}
