package fmp

import (
	"testing"

	"MarketPulse/internal/domain/models"
)

func TestNormalizeActivePercent(t *testing.T) {
	q := normalizeActive(activeStock{
		Ticker:            "nvda",
		Price:             905.25,
		Changes:           15.10,
		ChangesPercentage: "1.70%",
		Volume:            42_000_000,
		MarketCap:         2_200_000_000_000,
	})

	if q.Symbol != "NVDA" {
		t.Fatalf("expected symbol NVDA, got %q", q.Symbol)
	}
	if q.Class != models.AssetStock {
		t.Fatalf("expected stock class, got %q", q.Class)
	}
	if q.Change != 1.70 || !q.ChangeIsPercent {
		t.Fatalf("expected percent change 1.70, got %v (percent=%v)", q.Change, q.ChangeIsPercent)
	}
}

func TestNormalizeActiveAbsoluteFallback(t *testing.T) {
	q := normalizeActive(activeStock{
		Ticker:            "TSLA",
		Price:             180,
		Changes:           -4.5,
		ChangesPercentage: "",
	})
	if q.Change != -4.5 {
		t.Fatalf("expected change -4.5, got %v", q.Change)
	}
	if q.ChangeIsPercent {
		t.Fatalf("expected absolute change flag")
	}

	q = normalizeActive(activeStock{
		Ticker:            "TSLA",
		Price:             180,
		Changes:           -4.5,
		ChangesPercentage: "broken",
	})
	if q.Change != -4.5 || q.ChangeIsPercent {
		t.Fatalf("expected absolute fallback for malformed percent, got %v (percent=%v)",
			q.Change, q.ChangeIsPercent)
	}
}
