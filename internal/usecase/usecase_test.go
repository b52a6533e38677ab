package usecase

import (
	"context"
	"sync"
	"testing"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/cache"
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/logger"
)

// fakeProvider serves canned quotes for one asset class and records which
// symbols were requested.
type fakeProvider struct {
	mu       sync.Mutex
	class    models.AssetClass
	quotes   map[string]*models.Quote
	trending []models.Quote
	requests []string
}

func (p *fakeProvider) AssetClass() models.AssetClass { return p.class }

func (p *fakeProvider) FetchQuote(_ context.Context, symbol string) *models.Quote {
	p.mu.Lock()
	p.requests = append(p.requests, symbol)
	p.mu.Unlock()
	if q, ok := p.quotes[symbol]; ok {
		cp := *q
		return &cp
	}
	return nil
}

func (p *fakeProvider) FetchTrending(_ context.Context) []models.Quote { return p.trending }

func (p *fakeProvider) requested() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.requests...)
}

type fakeProfiles struct {
	profiles map[string]*models.CompanyProfile
	calls    int
}

func (p *fakeProfiles) FetchProfile(_ context.Context, symbol string) *models.CompanyProfile {
	p.calls++
	return p.profiles[symbol]
}

// fakeClassifier replays one canned distribution set and records inputs.
type fakeClassifier struct {
	mu      sync.Mutex
	dists   [][]models.SentimentLabel
	err     error
	batches [][]string
}

func (c *fakeClassifier) Classify(_ context.Context, texts []string) ([][]models.SentimentLabel, error) {
	c.mu.Lock()
	c.batches = append(c.batches, append([]string(nil), texts...))
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.dists, nil
}

// fakeTexts replays canned snippets and records queries.
type fakeTexts struct {
	mu      sync.Mutex
	texts   []string
	err     error
	queries []string
}

func (t *fakeTexts) SearchRecent(_ context.Context, query string, _ int) ([]string, error) {
	t.mu.Lock()
	t.queries = append(t.queries, query)
	t.mu.Unlock()
	if t.err != nil {
		return nil, t.err
	}
	return t.texts, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordProviderRequest(string, string) {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordLastPrice(string, float64)      {}
func (nopMetrics) RecordLatency(string, float64)        {}
func (nopMetrics) RecordAlert(string, string)           {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func stockQuote(symbol string, price, change float64) *models.Quote {
	return &models.Quote{
		Symbol:          symbol,
		Class:           models.AssetStock,
		Price:           price,
		Change:          change,
		ChangeIsPercent: true,
	}
}

func newMarketUC(cfg *config.Config, profiles *fakeProfiles, providers ...*fakeProvider) *MarketDataUseCase {
	chain := make([]drepo.QuoteProvider, 0, len(providers))
	for _, p := range providers {
		chain = append(chain, p)
	}
	return NewMarketDataUseCase(cfg, chain, profiles, cache.NewMemoryCache(), nopMetrics{})
}
