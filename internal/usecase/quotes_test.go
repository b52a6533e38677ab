package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/cache"
	"MarketPulse/pkg/config"
)

func TestGetQuotePriorityOrder(t *testing.T) {
	stock := &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191.45, 1.2)},
	}
	crypto := &fakeProvider{
		class: models.AssetCrypto,
		quotes: map[string]*models.Quote{
			"AAPL": {Symbol: "AAPL", Class: models.AssetCrypto, Price: 1},
			"BTC":  {Symbol: "BTC", Class: models.AssetCrypto, Price: 64000, Change: -2.4, ChangeIsPercent: true},
		},
	}
	uc := newMarketUC(&config.Config{}, &fakeProfiles{}, stock, crypto)

	q := uc.GetQuote(context.Background(), " aapl ")
	if q == nil {
		t.Fatalf("expected quote, got nil")
	}
	if q.Class != models.AssetStock {
		t.Fatalf("stock provider should win for AAPL, got class %q", q.Class)
	}
	if len(crypto.requested()) != 0 {
		t.Fatalf("crypto provider should not be consulted on a stock hit: %v", crypto.requested())
	}

	q = uc.GetQuote(context.Background(), "BTC")
	if q == nil || q.Class != models.AssetCrypto {
		t.Fatalf("expected crypto fallback for BTC, got %+v", q)
	}
	if got := stock.requested(); len(got) != 2 || got[1] != "BTC" {
		t.Fatalf("stock provider should be consulted first for BTC: %v", got)
	}
}

type spyMetrics struct {
	nopMetrics
	mu         sync.Mutex
	lastPrices int
}

func (m *spyMetrics) RecordLastPrice(string, float64) {
	m.mu.Lock()
	m.lastPrices++
	m.mu.Unlock()
}

func TestGetQuoteLeavesPriceGaugeToAdapters(t *testing.T) {
	stock := &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191.45, 1.2)},
	}
	spy := &spyMetrics{}
	uc := NewMarketDataUseCase(&config.Config{},
		[]drepo.QuoteProvider{stock}, &fakeProfiles{}, cache.NewMemoryCache(), spy)

	if q := uc.GetQuote(context.Background(), "AAPL"); q == nil {
		t.Fatalf("expected quote")
	}
	if q := uc.GetQuoteForClass(context.Background(), "AAPL", models.AssetStock); q == nil {
		t.Fatalf("expected quote")
	}
	if spy.lastPrices != 0 {
		t.Fatalf("aggregator must not set the price gauge, got %d records", spy.lastPrices)
	}
}

func TestGetQuoteUnknownSymbol(t *testing.T) {
	uc := newMarketUC(&config.Config{}, &fakeProfiles{},
		&fakeProvider{class: models.AssetStock},
		&fakeProvider{class: models.AssetCrypto})

	if q := uc.GetQuote(context.Background(), "ZZZZ"); q != nil {
		t.Fatalf("expected nil for unknown symbol, got %+v", q)
	}
	if q := uc.GetQuote(context.Background(), "   "); q != nil {
		t.Fatalf("expected nil for blank symbol, got %+v", q)
	}
}

func TestGetQuoteForClassSkipsOtherClasses(t *testing.T) {
	stock := &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"BTC": stockQuote("BTC", 1, 0)},
	}
	uc := newMarketUC(&config.Config{}, &fakeProfiles{}, stock)

	if q := uc.GetQuoteForClass(context.Background(), "BTC", models.AssetCrypto); q != nil {
		t.Fatalf("expected nil when no provider serves the class, got %+v", q)
	}
	if q := uc.GetQuoteForClass(context.Background(), "btc", models.AssetStock); q == nil {
		t.Fatalf("expected quote from the matching class")
	}
}

func TestOverviewPreservesOrderAndDropsFailedSlots(t *testing.T) {
	cfg := &config.Config{}
	cfg.Overview.Stocks = []string{"AAPL", "MISSING", "TSLA"}
	cfg.Overview.Cryptos = []string{"BTC", "ETH"}

	stock := &fakeProvider{
		class: models.AssetStock,
		quotes: map[string]*models.Quote{
			"AAPL": stockQuote("AAPL", 191, 1),
			"TSLA": stockQuote("TSLA", 180, -2),
		},
	}
	crypto := &fakeProvider{
		class: models.AssetCrypto,
		quotes: map[string]*models.Quote{
			"ETH": {Symbol: "ETH", Class: models.AssetCrypto, Price: 3000, ChangeIsPercent: true},
		},
	}
	uc := newMarketUC(cfg, &fakeProfiles{}, stock, crypto)

	res := uc.Overview(context.Background())
	if res.TotalStocks != 2 || len(res.Stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d (%+v)", res.TotalStocks, res.Stocks)
	}
	if res.Stocks[0].Symbol != "AAPL" || res.Stocks[1].Symbol != "TSLA" {
		t.Fatalf("stock order not preserved: %+v", res.Stocks)
	}
	if res.TotalCryptos != 1 || res.Cryptos[0].Symbol != "ETH" {
		t.Fatalf("expected only ETH in cryptos, got %+v", res.Cryptos)
	}
}

func TestTrendingCachesAndCaps(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.TrendingTTL = time.Minute

	trending := make([]models.Quote, 0, 10)
	for _, sym := range []string{"NVDA", "AMD", "TSLA", "AAPL", "MSFT"} {
		trending = append(trending, *stockQuote(sym, 100, 1))
	}
	stock := &fakeProvider{class: models.AssetStock, trending: trending}
	uc := newMarketUC(cfg, &fakeProfiles{}, stock)

	list := uc.Trending(context.Background(), models.AssetStock, 3)
	if len(list) != 3 || list[0].Symbol != "NVDA" {
		t.Fatalf("expected first 3 trending entries, got %+v", list)
	}

	// Second call must be served from cache.
	stock.trending = nil
	list = uc.Trending(context.Background(), models.AssetStock, 5)
	if len(list) != 5 {
		t.Fatalf("expected cached trending list, got %+v", list)
	}
}

func TestProfileCaching(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.ProfileTTL = time.Minute

	profiles := &fakeProfiles{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", CompanyName: "Apple Inc."},
	}}
	uc := newMarketUC(cfg, profiles, &fakeProvider{class: models.AssetStock})

	p := uc.Profile(context.Background(), "aapl")
	if p == nil || p.CompanyName != "Apple Inc." {
		t.Fatalf("expected Apple profile, got %+v", p)
	}
	p = uc.Profile(context.Background(), "AAPL")
	if p == nil {
		t.Fatalf("expected cached profile")
	}
	if profiles.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", profiles.calls)
	}

	if p := uc.Profile(context.Background(), "UNKNOWN"); p != nil {
		t.Fatalf("expected nil for unknown profile, got %+v", p)
	}
}
