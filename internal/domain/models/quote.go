package models

// AssetClass tags which provider chain produced a quote and which
// interpretation of Change applies.
type AssetClass string

const (
	AssetStock  AssetClass = "stock"
	AssetCrypto AssetClass = "crypto"
)

// Quote is the normalized snapshot of one instrument from one provider.
// Change carries a percent value when ChangeIsPercent is true, an absolute
// price delta otherwise; the two must not be compared across asset classes.
type Quote struct {
	Symbol          string     `json:"symbol"`
	Class           AssetClass `json:"asset_class"`
	Price           float64    `json:"price"`
	Change          float64    `json:"change"`
	ChangeIsPercent bool       `json:"change_is_percent"`
	Volume          float64    `json:"volume,omitempty"`
	MarketCap       float64    `json:"market_cap,omitempty"`
	Open            float64    `json:"open,omitempty"`
	High            float64    `json:"high,omitempty"`
	Low             float64    `json:"low,omitempty"`
	PrevClose       float64    `json:"previous_close,omitempty"`
	// AsOf is an opaque upstream timestamp token ("2024-10-10", "24h", ...).
	// Upstream semantics vary and are not reconciled.
	AsOf string `json:"as_of,omitempty"`
	// Name and Image are only populated by the trending-crypto provider.
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// MarketOverview aggregates concurrent per-symbol lookups across both asset
// classes. Missing symbols are simply absent; partial results are the
// expected steady state.
type MarketOverview struct {
	Stocks       []Quote `json:"stocks"`
	Cryptos      []Quote `json:"cryptocurrencies"`
	TotalStocks  int     `json:"total_stocks"`
	TotalCryptos int     `json:"total_cryptos"`
}

// CompanyProfile describes one company from the profile provider.
type CompanyProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	Description string  `json:"description,omitempty"`
	Sector      string  `json:"sector,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	Website     string  `json:"website,omitempty"`
	Logo        string  `json:"logo,omitempty"`
	MarketCap   float64 `json:"market_cap,omitempty"`
	Employees   string  `json:"employees,omitempty"`
	CEO         string  `json:"ceo,omitempty"`
	Country     string  `json:"country,omitempty"`
}
