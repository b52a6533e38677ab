package fmp

import (
	"context"
	"strconv"
	"strings"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

const providerName = "fmp"

// trendingLimit truncates the upstream actives list regardless of its
// ordering.
const trendingLimit = 10

// Client fetches trending stocks and company profiles from Financial
// Modeling Prep. All failures degrade to nil / empty and are logged; the
// client never returns an error to callers.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
	l       *applogger.Logger
	metrics drepo.Metrics
}

// New creates a new Financial Modeling Prep client.
func New(cfg *config.Config, l *applogger.Logger, m drepo.Metrics) *Client {
	return &Client{
		apiKey:  cfg.Providers.FMP.APIKey,
		baseURL: cfg.Providers.FMP.BaseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.FMP.Timeout)),
		l:       l,
		metrics: m,
	}
}

// activeStock mirrors one entry of the /stock/actives response.
type activeStock struct {
	Ticker            string  `json:"ticker"`
	Price             float64 `json:"price"`
	Changes           float64 `json:"changes"`
	ChangesPercentage string  `json:"changesPercentage"`
	Volume            float64 `json:"volume"`
	MarketCap         float64 `json:"marketCap"`
}

// FetchActives returns the most active stocks truncated to the first 10
// entries. Failures degrade to an empty list.
func (c *Client) FetchActives(ctx context.Context) []models.Quote {
	var resp []activeStock
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/stock/actives",
		QueryParams: map[string][]string{"apikey": {c.apiKey}},
	}, &resp)
	if err != nil {
		c.metrics.RecordProviderRequest(providerName, "error")
		c.l.Error("fmp actives failed", applogger.Error(err))
		return nil
	}

	if len(resp) > trendingLimit {
		resp = resp[:trendingLimit]
	}
	out := make([]models.Quote, 0, len(resp))
	for _, s := range resp {
		out = append(out, normalizeActive(s))
	}
	c.metrics.RecordProviderRequest(providerName, "ok")
	return out
}

// normalizeActive maps one actives entry to the canonical quote model. The
// percent field arrives as a string suffixed with "%"; an unparseable
// percent falls back to the absolute change.
func normalizeActive(s activeStock) models.Quote {
	q := models.Quote{
		Symbol:    strings.ToUpper(s.Ticker),
		Class:     models.AssetStock,
		Price:     s.Price,
		Volume:    s.Volume,
		MarketCap: s.MarketCap,
	}
	pct := strings.TrimSuffix(strings.TrimSpace(s.ChangesPercentage), "%")
	if v, err := strconv.ParseFloat(pct, 64); err == nil && pct != "" {
		q.Change = v
		q.ChangeIsPercent = true
	} else {
		q.Change = s.Changes
		q.ChangeIsPercent = false
	}
	return q
}

// profile mirrors one entry of the /profile/{symbol} response.
type profile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Description string  `json:"description"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	Website     string  `json:"website"`
	Image       string  `json:"image"`
	MktCap      float64 `json:"mktCap"`
	Employees   string  `json:"fullTimeEmployees"`
	CEO         string  `json:"ceo"`
	Country     string  `json:"country"`
}

// FetchProfile returns the company profile for symbol, or nil when the
// provider has no data or the call failed.
func (c *Client) FetchProfile(ctx context.Context, symbol string) *models.CompanyProfile {
	var resp []profile
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/profile/" + strings.ToUpper(symbol),
		QueryParams: map[string][]string{"apikey": {c.apiKey}},
	}, &resp)
	if err != nil {
		c.metrics.RecordProviderRequest(providerName, "error")
		c.l.Error("fmp profile failed",
			applogger.String("symbol", symbol), applogger.Error(err))
		return nil
	}
	if len(resp) == 0 {
		c.metrics.RecordProviderRequest(providerName, "nodata")
		return nil
	}

	p := resp[0]
	c.metrics.RecordProviderRequest(providerName, "ok")
	return &models.CompanyProfile{
		Symbol:      strings.ToUpper(p.Symbol),
		CompanyName: p.CompanyName,
		Description: p.Description,
		Sector:      p.Sector,
		Industry:    p.Industry,
		Website:     p.Website,
		Logo:        p.Image,
		MarketCap:   p.MktCap,
		Employees:   p.Employees,
		CEO:         p.CEO,
		Country:     p.Country,
	}
}

var _ drepo.ProfileProvider = (*Client)(nil)
