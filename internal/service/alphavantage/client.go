package alphavantage

import (
	"context"
	"strconv"
	"strings"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// free tier allows 5 requests per minute
const (
	rateKey    = "alphavantage"
	rateCap    = 5
	rateRefill = 5.0 / 60.0
)

// Client fetches real-time stock quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint. All failures degrade to nil and are logged; the client never
// returns an error to callers.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
	rl      *ratelimit.Limiter
	l       *applogger.Logger
	metrics drepo.Metrics
}

// New creates a new Alpha Vantage client.
func New(cfg *config.Config, l *applogger.Logger, m drepo.Metrics, rl *ratelimit.Limiter) *Client {
	return &Client{
		apiKey:  cfg.Providers.AlphaVantage.APIKey,
		baseURL: cfg.Providers.AlphaVantage.BaseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.AlphaVantage.Timeout)),
		rl:      rl,
		l:       l,
		metrics: m,
	}
}

// globalQuote mirrors the upstream payload; every value arrives as a string.
type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	Open          string `json:"02. open"`
	High          string `json:"03. high"`
	Low           string `json:"04. low"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	LatestDay     string `json:"07. latest trading day"`
	PrevClose     string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

type globalQuoteResponse struct {
	GlobalQuote *globalQuote `json:"Global Quote"`
}

// FetchQuote returns the normalized stock quote for symbol, or nil when the
// provider has no data or the call failed.
func (c *Client) FetchQuote(ctx context.Context, symbol string) *models.Quote {
	if !c.rl.Allow(rateKey, rateCap, rateRefill) {
		c.metrics.RecordProviderRequest(rateKey, "throttled")
		c.l.Warn("alphavantage throttled", applogger.String("symbol", symbol))
		return nil
	}

	var resp globalQuoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
			"apikey":   {c.apiKey},
		},
	}, &resp)
	if err != nil {
		c.metrics.RecordProviderRequest(rateKey, "error")
		c.l.Error("alphavantage quote failed",
			applogger.String("symbol", symbol), applogger.Error(err))
		return nil
	}

	q := Normalize(resp.GlobalQuote)
	if q == nil {
		c.metrics.RecordProviderRequest(rateKey, "nodata")
		return nil
	}
	c.metrics.RecordProviderRequest(rateKey, "ok")
	c.metrics.RecordLastPrice(q.Symbol, q.Price)
	return q
}

// Normalize maps the raw GLOBAL_QUOTE payload to the canonical quote model.
// It returns nil when the payload is not interpretable as a quote (missing
// symbol or price). Parse failures on non-critical fields substitute zero
// values instead of rejecting the whole quote.
func Normalize(raw *globalQuote) *models.Quote {
	if raw == nil || raw.Symbol == "" || raw.Price == "" {
		return nil
	}
	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return nil
	}

	q := &models.Quote{
		Symbol:    strings.ToUpper(raw.Symbol),
		Class:     models.AssetStock,
		Price:     price,
		Volume:    parseFloat(raw.Volume),
		Open:      parseFloat(raw.Open),
		High:      parseFloat(raw.High),
		Low:       parseFloat(raw.Low),
		PrevClose: parseFloat(raw.PrevClose),
		AsOf:      raw.LatestDay,
	}

	// percent change arrives as "1.23%"; strip the suffix and parse. When
	// the percent field is missing or malformed, fall back to the absolute
	// change and tag it accordingly.
	pct := strings.TrimSuffix(strings.TrimSpace(raw.ChangePercent), "%")
	if v, err := strconv.ParseFloat(pct, 64); err == nil && pct != "" {
		q.Change = v
		q.ChangeIsPercent = true
	} else {
		q.Change = parseFloat(raw.Change)
		q.ChangeIsPercent = false
	}
	return q
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
