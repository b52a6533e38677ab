package coingecko

import (
	"context"
	"strings"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// demo tier allows roughly 30 requests per minute
const (
	rateKey    = "coingecko"
	rateCap    = 30
	rateRefill = 0.5
)

// coinIDs maps common ticker symbols to CoinGecko coin ids. Symbols not in
// the table fall back to the lowercased symbol as the id, which may silently
// fail to resolve upstream; that is a documented limitation, not a bug.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
}

// CoinID resolves a ticker symbol to the provider's coin id.
func CoinID(symbol string) string {
	if id, ok := coinIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// Client fetches crypto quotes and trending coins from CoinGecko. All
// failures degrade to nil / empty and are logged; the client never returns
// an error to callers.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
	rl      *ratelimit.Limiter
	l       *applogger.Logger
	metrics drepo.Metrics
}

// New creates a new CoinGecko client.
func New(cfg *config.Config, l *applogger.Logger, m drepo.Metrics, rl *ratelimit.Limiter) *Client {
	return &Client{
		apiKey:  cfg.Providers.CoinGecko.APIKey,
		baseURL: cfg.Providers.CoinGecko.BaseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.CoinGecko.Timeout)),
		rl:      rl,
		l:       l,
		metrics: m,
	}
}

// simplePrice mirrors one coin entry of the /simple/price response.
type simplePrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USDMarketCap float64 `json:"usd_market_cap"`
}

// FetchQuote returns the normalized crypto quote for symbol, or nil when the
// provider has no data or the call failed.
func (c *Client) FetchQuote(ctx context.Context, symbol string) *models.Quote {
	if !c.rl.Allow(rateKey, rateCap, rateRefill) {
		c.metrics.RecordProviderRequest(rateKey, "throttled")
		c.l.Warn("coingecko throttled", applogger.String("symbol", symbol))
		return nil
	}

	id := CoinID(symbol)
	var resp map[string]simplePrice
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/simple/price",
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"ids":                 {id},
			"vs_currencies":       {"usd"},
			"include_24hr_change": {"true"},
			"include_24hr_vol":    {"true"},
			"include_market_cap":  {"true"},
		},
	}, &resp)
	if err != nil {
		c.metrics.RecordProviderRequest(rateKey, "error")
		c.l.Error("coingecko quote failed",
			applogger.String("symbol", symbol), applogger.Error(err))
		return nil
	}

	q := Normalize(symbol, id, resp)
	if q == nil {
		c.metrics.RecordProviderRequest(rateKey, "nodata")
		return nil
	}
	c.metrics.RecordProviderRequest(rateKey, "ok")
	c.metrics.RecordLastPrice(q.Symbol, q.Price)
	return q
}

// Normalize maps a /simple/price response to the canonical quote model.
// Returns nil when the coin id is absent from the payload.
func Normalize(symbol, id string, resp map[string]simplePrice) *models.Quote {
	data, ok := resp[id]
	if !ok {
		return nil
	}
	return &models.Quote{
		Symbol:          strings.ToUpper(symbol),
		Class:           models.AssetCrypto,
		Price:           data.USD,
		Change:          data.USD24hChange,
		ChangeIsPercent: true,
		Volume:          data.USD24hVol,
		MarketCap:       data.USDMarketCap,
		AsOf:            "24h",
	}
}

// marketCoin mirrors one entry of the /coins/markets response.
type marketCoin struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	Change24h    float64 `json:"price_change_percentage_24h"`
	MarketCap    float64 `json:"market_cap"`
	TotalVolume  float64 `json:"total_volume"`
	Image        string  `json:"image"`
}

// FetchTrending returns the top coins ordered by descending market cap,
// requesting exactly 10 entries. Failures degrade to an empty list.
func (c *Client) FetchTrending(ctx context.Context) []models.Quote {
	if !c.rl.Allow(rateKey, rateCap, rateRefill) {
		c.metrics.RecordProviderRequest(rateKey, "throttled")
		c.l.Warn("coingecko trending throttled")
		return nil
	}

	var resp []marketCoin
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/coins/markets",
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"vs_currency":             {"usd"},
			"order":                   {"market_cap_desc"},
			"per_page":                {"10"},
			"page":                    {"1"},
			"sparkline":               {"false"},
			"price_change_percentage": {"24h"},
		},
	}, &resp)
	if err != nil {
		c.metrics.RecordProviderRequest(rateKey, "error")
		c.l.Error("coingecko trending failed", applogger.Error(err))
		return nil
	}

	out := make([]models.Quote, 0, len(resp))
	for _, coin := range resp {
		out = append(out, models.Quote{
			Symbol:          strings.ToUpper(coin.Symbol),
			Class:           models.AssetCrypto,
			Price:           coin.CurrentPrice,
			Change:          coin.Change24h,
			ChangeIsPercent: true,
			Volume:          coin.TotalVolume,
			MarketCap:       coin.MarketCap,
			AsOf:            "24h",
			Name:            coin.Name,
			Image:           coin.Image,
		})
	}
	c.metrics.RecordProviderRequest(rateKey, "ok")
	return out
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}
