package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
)

// QuoteProvider is one upstream quote source. Implementations catch all
// network, auth, parse, and rate-limit failures and report them as absent
// data (nil / empty slice), logging a diagnostic; a provider failure never
// surfaces as an error to callers.
type QuoteProvider interface {
	AssetClass() models.AssetClass
	FetchQuote(ctx context.Context, symbol string) *models.Quote
	FetchTrending(ctx context.Context) []models.Quote
}

// ProfileProvider resolves company profiles. Same silent-degradation
// contract as QuoteProvider.
type ProfileProvider interface {
	FetchProfile(ctx context.Context, symbol string) *models.CompanyProfile
}

// SentimentClassifier delegates a batch of texts to an external model and
// returns one label distribution per input text. Unlike providers, the
// classifier surfaces its error so the scorer can mark the result
// unavailable instead of silently neutral.
type SentimentClassifier interface {
	Classify(ctx context.Context, texts []string) ([][]models.SentimentLabel, error)
}

// TextSource fetches recent social snippets matching a query. max is
// clamped to provider-allowed bounds by the implementation.
type TextSource interface {
	SearchRecent(ctx context.Context, query string, max int) ([]string, error)
}

// AlertPublisher delivers alerts to a downstream sink.
type AlertPublisher interface {
	Publish(ctx context.Context, a *models.Alert) error
	PublishBatch(ctx context.Context, alerts []models.Alert) error
	Close() error
}

// AlertStore archives alerts for downstream consumers. The evaluator never
// writes here; only the archiving consumer does.
type AlertStore interface {
	Store(ctx context.Context, a *models.Alert) error
	StoreBatch(ctx context.Context, alerts []models.Alert) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Alert, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational signals.
type Metrics interface {
	RecordProviderRequest(provider, result string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordAlert(kind, severity string)
}
