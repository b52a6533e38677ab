package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/cache"
	"MarketPulse/pkg/config"
)

// MarketDataUseCase resolves quotes, trending lists, overviews, and company
// profiles across the configured provider chain.
type MarketDataUseCase struct {
	providers []drepo.QuoteProvider
	profiles  drepo.ProfileProvider
	cache     cache.Service
	metrics   drepo.Metrics

	overviewStocks  []string
	overviewCryptos []string
	trendingTTL     time.Duration
	profileTTL      time.Duration
	timeout         time.Duration
}

func NewMarketDataUseCase(
	cfg *config.Config,
	providers []drepo.QuoteProvider,
	profiles drepo.ProfileProvider,
	c cache.Service,
	metrics drepo.Metrics,
) *MarketDataUseCase {
	return &MarketDataUseCase{
		providers:       providers,
		profiles:        profiles,
		cache:           c,
		metrics:         metrics,
		overviewStocks:  cfg.Overview.Stocks,
		overviewCryptos: cfg.Overview.Cryptos,
		trendingTTL:     cfg.Cache.TrendingTTL,
		profileTTL:      cfg.Cache.ProfileTTL,
		timeout:         15 * time.Second,
	}
}

// GetQuote resolves a bare symbol by consulting providers in priority order
// and returning the first hit. A miss everywhere returns nil, never an
// error: provider failures are indistinguishable from unknown symbols by
// contract.
func (uc *MarketDataUseCase) GetQuote(ctx context.Context, symbol string) *models.Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}

	start := time.Now()
	defer func() {
		uc.metrics.RecordLatency("get_quote", time.Since(start).Seconds())
	}()

	// The price gauge is recorded by the adapter that produced the quote.
	for _, p := range uc.providers {
		if q := p.FetchQuote(ctx, symbol); q != nil {
			return q
		}
	}
	return nil
}

// GetQuoteForClass resolves a symbol against one asset class only.
func (uc *MarketDataUseCase) GetQuoteForClass(ctx context.Context, symbol string, class models.AssetClass) *models.Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, p := range uc.providers {
		if p.AssetClass() != class {
			continue
		}
		if q := p.FetchQuote(ctx, symbol); q != nil {
			return q
		}
	}
	return nil
}

// Overview fans out one lookup per configured symbol across both asset
// classes and joins whatever came back. Slot order is preserved so the
// response is stable; failed slots are simply absent.
func (uc *MarketDataUseCase) Overview(ctx context.Context) *models.MarketOverview {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()

	stocks := make([]*models.Quote, len(uc.overviewStocks))
	cryptos := make([]*models.Quote, len(uc.overviewCryptos))

	var wg sync.WaitGroup
	for i, sym := range uc.overviewStocks {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			stocks[i] = uc.GetQuoteForClass(ctx, sym, models.AssetStock)
		}(i, sym)
	}
	for i, sym := range uc.overviewCryptos {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			cryptos[i] = uc.GetQuoteForClass(ctx, sym, models.AssetCrypto)
		}(i, sym)
	}
	wg.Wait()

	res := &models.MarketOverview{
		Stocks:  compactQuotes(stocks),
		Cryptos: compactQuotes(cryptos),
	}
	res.TotalStocks = len(res.Stocks)
	res.TotalCryptos = len(res.Cryptos)

	uc.metrics.RecordLatency("overview", time.Since(start).Seconds())
	return res
}

func compactQuotes(src []*models.Quote) []models.Quote {
	out := make([]models.Quote, 0, len(src))
	for _, q := range src {
		if q != nil {
			out = append(out, *q)
		}
	}
	return out
}

// Trending returns the trending list for one asset class, capped at limit.
// Results are cached briefly; per-symbol quotes never are.
func (uc *MarketDataUseCase) Trending(ctx context.Context, class models.AssetClass, limit int) []models.Quote {
	if limit <= 0 {
		limit = 10
	}

	key := fmt.Sprintf("trending:%s", class)
	var cached []models.Quote
	if err := uc.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
		return capQuotes(cached, limit)
	}

	for _, p := range uc.providers {
		if p.AssetClass() != class {
			continue
		}
		list := p.FetchTrending(ctx)
		if len(list) == 0 {
			return nil
		}
		if err := uc.cache.Set(ctx, key, list, uc.trendingTTL); err != nil {
			uc.metrics.RecordError("cache_set")
		}
		return capQuotes(list, limit)
	}
	return nil
}

func capQuotes(list []models.Quote, limit int) []models.Quote {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}

// Profile resolves a company profile, serving from cache when fresh.
func (uc *MarketDataUseCase) Profile(ctx context.Context, symbol string) *models.CompanyProfile {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}

	key := fmt.Sprintf("profile:%s", symbol)
	var cached models.CompanyProfile
	if err := uc.cache.Get(ctx, key, &cached); err == nil && cached.Symbol != "" {
		return &cached
	}

	p := uc.profiles.FetchProfile(ctx, symbol)
	if p == nil {
		return nil
	}
	if err := uc.cache.Set(ctx, key, p, uc.profileTTL); err != nil {
		uc.metrics.RecordError("cache_set")
	}
	return p
}
