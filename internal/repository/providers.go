package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/alphavantage"
	"MarketPulse/internal/service/coingecko"
	"MarketPulse/internal/service/fmp"
)

// StockProvider composes the equity upstreams into one QuoteProvider:
// AlphaVantage serves per-symbol quotes, FMP serves the most-active list.
type StockProvider struct {
	quotes   *alphavantage.Client
	trending *fmp.Client
}

func NewStockProvider(quotes *alphavantage.Client, trending *fmp.Client) *StockProvider {
	return &StockProvider{quotes: quotes, trending: trending}
}

func (p *StockProvider) AssetClass() models.AssetClass {
	return models.AssetStock
}

func (p *StockProvider) FetchQuote(ctx context.Context, symbol string) *models.Quote {
	return p.quotes.FetchQuote(ctx, symbol)
}

func (p *StockProvider) FetchTrending(ctx context.Context) []models.Quote {
	return p.trending.FetchActives(ctx)
}

// CryptoProvider wraps CoinGecko for both per-symbol quotes and the
// top-market-cap trending list.
type CryptoProvider struct {
	client *coingecko.Client
}

func NewCryptoProvider(client *coingecko.Client) *CryptoProvider {
	return &CryptoProvider{client: client}
}

func (p *CryptoProvider) AssetClass() models.AssetClass {
	return models.AssetCrypto
}

func (p *CryptoProvider) FetchQuote(ctx context.Context, symbol string) *models.Quote {
	return p.client.FetchQuote(ctx, symbol)
}

func (p *CryptoProvider) FetchTrending(ctx context.Context) []models.Quote {
	return p.client.FetchTrending(ctx)
}

// Providers returns the quote providers in resolution priority order:
// stocks are consulted before crypto when classifying a bare symbol.
func Providers(stock *StockProvider, crypto *CryptoProvider) []repository.QuoteProvider {
	return []repository.QuoteProvider{stock, crypto}
}

var (
	_ repository.QuoteProvider = (*StockProvider)(nil)
	_ repository.QuoteProvider = (*CryptoProvider)(nil)
)
