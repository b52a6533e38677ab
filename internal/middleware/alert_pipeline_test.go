package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

type fakeProc struct {
	mu     sync.Mutex
	fail   bool
	seen   []string
	failed int
}

func (p *fakeProc) Process(_ context.Context, a *models.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		p.failed++
		return errors.New("sink down")
	}
	p.seen = append(p.seen, a.ID)
	return nil
}

func (p *fakeProc) setFail(v bool) {
	p.mu.Lock()
	p.fail = v
	p.mu.Unlock()
}

func (p *fakeProc) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen...)
}

type nopMetrics struct{}

func (nopMetrics) RecordProviderRequest(string, string) {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordLastPrice(string, float64)      {}
func (nopMetrics) RecordLatency(string, float64)        {}
func (nopMetrics) RecordAlert(string, string)           {}

func validTestAlert(id string) *models.Alert {
	return &models.Alert{
		ID:       id,
		Kind:     models.AlertPrice,
		Severity: models.SeverityMedium,
		Symbol:   "AAPL",
	}
}

func TestProcessForwardsValidAlert(t *testing.T) {
	proc := &fakeProc{}
	p := NewAlertPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), validTestAlert("price-AAPL")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := proc.processed(); len(got) != 1 || got[0] != "price-AAPL" {
		t.Fatalf("unexpected processed alerts: %v", got)
	}
}

func TestProcessRejectsInvalidAlerts(t *testing.T) {
	proc := &fakeProc{}
	p := NewAlertPipeline(proc, nopMetrics{})
	ctx := context.Background()

	bad := []*models.Alert{
		nil,
		{Kind: models.AlertPrice, Severity: models.SeverityHigh, Symbol: "AAPL"},
		{ID: "x", Kind: models.AlertPrice, Severity: models.SeverityHigh},
		{ID: "x", Symbol: "AAPL", Kind: "bogus", Severity: models.SeverityHigh},
		{ID: "x", Symbol: "AAPL", Kind: models.AlertPrice, Severity: "critical"},
	}
	for i, a := range bad {
		if err := p.Process(ctx, a); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if got := proc.processed(); len(got) != 0 {
		t.Fatalf("invalid alerts reached the sink: %v", got)
	}
}

func TestProcessBuffersOnDownstreamFailure(t *testing.T) {
	proc := &fakeProc{fail: true}
	p := NewAlertPipeline(proc, nopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validTestAlert("price-AAPL")); err == nil {
		t.Fatalf("expected downstream error")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected one buffered alert, got %d", len(p.bufCh))
	}
}

func TestStartFlushesBufferAfterRecovery(t *testing.T) {
	proc := &fakeProc{fail: true}
	p := NewAlertPipeline(proc, nopMetrics{}, WithBufferSize(4))
	ctx := context.Background()

	_ = p.Process(ctx, validTestAlert("price-AAPL"))
	_ = p.Process(ctx, validTestAlert("sentiment-AAPL"))
	if len(p.bufCh) != 2 {
		t.Fatalf("expected two buffered alerts, got %d", len(p.bufCh))
	}

	proc.setFail(false)
	p.Start(ctx)
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if len(proc.processed()) == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("buffer not flushed, processed=%v", proc.processed())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestProcessDropsWhenBufferFull(t *testing.T) {
	proc := &fakeProc{fail: true}
	p := NewAlertPipeline(proc, nopMetrics{}, WithBufferSize(1))
	ctx := context.Background()

	_ = p.Process(ctx, validTestAlert("a"))
	_ = p.Process(ctx, validTestAlert("b"))
	if len(p.bufCh) != 1 {
		t.Fatalf("buffer should stay at capacity, got %d", len(p.bufCh))
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := NewAlertPipeline(&fakeProc{}, nopMetrics{})
	p.Start(context.Background())
	p.Stop()
	p.Stop()
}
