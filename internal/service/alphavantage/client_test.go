package alphavantage

import (
	"testing"

	"MarketPulse/internal/domain/models"
)

func TestNormalizePercentChange(t *testing.T) {
	raw := &globalQuote{
		Symbol:        "aapl",
		Open:          "189.50",
		High:          "192.00",
		Low:           "188.10",
		Price:         "191.45",
		Volume:        "52341000",
		LatestDay:     "2024-05-01",
		PrevClose:     "189.12",
		Change:        "2.33",
		ChangePercent: "1.23%",
	}

	q := Normalize(raw)
	if q == nil {
		t.Fatalf("expected quote, got nil")
	}
	if q.Symbol != "AAPL" {
		t.Fatalf("expected symbol AAPL, got %q", q.Symbol)
	}
	if q.Class != models.AssetStock {
		t.Fatalf("expected stock class, got %q", q.Class)
	}
	if q.Price != 191.45 {
		t.Fatalf("expected price 191.45, got %v", q.Price)
	}
	if q.Change != 1.23 {
		t.Fatalf("expected change 1.23, got %v", q.Change)
	}
	if !q.ChangeIsPercent {
		t.Fatalf("expected percent change flag to be set")
	}
	if q.AsOf != "2024-05-01" {
		t.Fatalf("expected as_of 2024-05-01, got %q", q.AsOf)
	}
}

func TestNormalizeAbsoluteFallback(t *testing.T) {
	raw := &globalQuote{
		Symbol:        "TSLA",
		Price:         "180.00",
		Change:        "-4.50",
		ChangePercent: "n/a",
	}

	q := Normalize(raw)
	if q == nil {
		t.Fatalf("expected quote, got nil")
	}
	if q.Change != -4.50 {
		t.Fatalf("expected change -4.50, got %v", q.Change)
	}
	if q.ChangeIsPercent {
		t.Fatalf("expected absolute change flag")
	}
}

func TestNormalizeRejectsIncompletePayloads(t *testing.T) {
	if q := Normalize(nil); q != nil {
		t.Fatalf("expected nil for nil payload, got %+v", q)
	}
	if q := Normalize(&globalQuote{Price: "10.00"}); q != nil {
		t.Fatalf("expected nil for missing symbol, got %+v", q)
	}
	if q := Normalize(&globalQuote{Symbol: "AAPL"}); q != nil {
		t.Fatalf("expected nil for missing price, got %+v", q)
	}
	if q := Normalize(&globalQuote{Symbol: "AAPL", Price: "not-a-number"}); q != nil {
		t.Fatalf("expected nil for unparseable price, got %+v", q)
	}
}

func TestNormalizeSubstitutesZeroForBadOptionalFields(t *testing.T) {
	raw := &globalQuote{
		Symbol:        "NVDA",
		Price:         "900.00",
		Volume:        "garbage",
		Open:          "",
		ChangePercent: "2.00%",
	}

	q := Normalize(raw)
	if q == nil {
		t.Fatalf("expected quote, got nil")
	}
	if q.Volume != 0 {
		t.Fatalf("expected zero volume, got %v", q.Volume)
	}
	if q.Open != 0 {
		t.Fatalf("expected zero open, got %v", q.Open)
	}
	if q.Change != 2.00 || !q.ChangeIsPercent {
		t.Fatalf("expected percent change 2.00, got %v (percent=%v)", q.Change, q.ChangeIsPercent)
	}
}

func TestParseFloat(t *testing.T) {
	if v := parseFloat(" 12.5 "); v != 12.5 {
		t.Fatalf("expected 12.5, got %v", v)
	}
	if v := parseFloat(""); v != 0 {
		t.Fatalf("expected 0 for empty input, got %v", v)
	}
	if v := parseFloat("abc"); v != 0 {
		t.Fatalf("expected 0 for garbage input, got %v", v)
	}
}
