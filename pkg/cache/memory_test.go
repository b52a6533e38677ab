package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Symbol string
	Price  float64
}

func TestMemoryCacheTypedGet(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "slice", []payload{{Symbol: "AAPL", Price: 191}}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got []payload
	if err := mc.Get(ctx, "slice", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Fatalf("unexpected value: %+v", got)
	}

	// A stored pointer satisfies a value-typed destination.
	if err := mc.Set(ctx, "ptr", &payload{Symbol: "BTC"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var single payload
	if err := mc.Get(ctx, "ptr", &single); err != nil {
		t.Fatalf("get: %v", err)
	}
	if single.Symbol != "BTC" {
		t.Fatalf("unexpected value: %+v", single)
	}
}

func TestMemoryCacheStringGet(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "k", &s); err != nil {
		t.Fatalf("get: %v", err)
	}
	if s != "v" {
		t.Fatalf("expected v, got %q", s)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := mc.Set(ctx, "short", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Get(ctx, "short", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryCacheTypeMismatch(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", 42, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var s []payload
	if err := mc.Get(ctx, "k", &s); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}
