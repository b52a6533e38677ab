package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	mid "MarketPulse/internal/middleware"
	"MarketPulse/pkg/cache"
)

type fakePublisher struct {
	mu      sync.Mutex
	err     error
	singles []models.Alert
	batches [][]models.Alert
}

func (p *fakePublisher) Publish(_ context.Context, a *models.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.singles = append(p.singles, *a)
	return nil
}

func (p *fakePublisher) PublishBatch(_ context.Context, alerts []models.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, append([]models.Alert(nil), alerts...))
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []models.Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Alert(nil), p.singles...)
}

type fakeHub struct {
	mu      sync.Mutex
	batches [][]models.Alert
}

func (h *fakeHub) Broadcast(alerts []models.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches = append(h.batches, append([]models.Alert(nil), alerts...))
}

func triggeringAlertUC(t *testing.T) *AlertUseCase {
	t.Helper()
	provider := &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191, 6.2)},
	}
	return newAlertUC(t, alertCfg("AAPL"), provider, &fakeClassifier{}, nil)
}

func TestRunOncePublishesThroughPipeline(t *testing.T) {
	pub := &fakePublisher{}
	proc := NewAlertProcessor(pub, nopMetrics{}, "log")
	pipe := mid.NewAlertPipeline(proc, nopMetrics{})
	hub := &fakeHub{}

	s := NewAlertSweeper(triggeringAlertUC(t), proc, pipe, hub, nil, time.Minute, testLogger(t))
	s.RunOnce(context.Background())

	got := pub.published()
	if len(got) != 1 || got[0].ID != "price-AAPL" {
		t.Fatalf("expected one published alert, got %+v", got)
	}
	if len(hub.batches) != 1 || len(hub.batches[0]) != 1 {
		t.Fatalf("expected one broadcast batch, got %+v", hub.batches)
	}
}

func TestRunOnceWithoutPipelineUsesProcessor(t *testing.T) {
	pub := &fakePublisher{}
	proc := NewAlertProcessor(pub, nopMetrics{}, "log")

	s := NewAlertSweeper(triggeringAlertUC(t), proc, nil, nil, nil, time.Minute, testLogger(t))
	s.RunOnce(context.Background())

	if got := pub.published(); len(got) != 1 {
		t.Fatalf("expected one published alert, got %+v", got)
	}
}

func TestRunOnceQuietSweepPublishesNothing(t *testing.T) {
	provider := &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191, 0.5)},
	}
	eval := newAlertUC(t, alertCfg("AAPL"), provider, &fakeClassifier{}, nil)

	pub := &fakePublisher{}
	proc := NewAlertProcessor(pub, nopMetrics{}, "log")
	hub := &fakeHub{}

	s := NewAlertSweeper(eval, proc, nil, hub, nil, time.Minute, testLogger(t))
	s.RunOnce(context.Background())

	if len(pub.published()) != 0 || len(hub.batches) != 0 {
		t.Fatalf("quiet sweep must not publish or broadcast")
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	locks := cache.NewMemoryCache()
	ctx := context.Background()
	if ok, err := locks.TryLock(ctx, "alerts:sweep:lock", time.Minute); err != nil || !ok {
		t.Fatalf("seed lock: ok=%v err=%v", ok, err)
	}

	pub := &fakePublisher{}
	proc := NewAlertProcessor(pub, nopMetrics{}, "log")
	s := NewAlertSweeper(triggeringAlertUC(t), proc, nil, nil, locks, time.Minute, testLogger(t))
	s.RunOnce(ctx)

	if len(pub.published()) != 0 {
		t.Fatalf("sweep ran while another replica held the lock")
	}
}

func TestSweeperStartStop(t *testing.T) {
	pub := &fakePublisher{}
	proc := NewAlertProcessor(pub, nopMetrics{}, "log")
	s := NewAlertSweeper(triggeringAlertUC(t), proc, nil, nil, nil, time.Hour, testLogger(t))

	s.Start(context.Background())
	s.Start(context.Background()) // second start is a no-op
	s.Stop()
	s.Stop()
}

func TestSweeperRestartsAfterStop(t *testing.T) {
	pub := &fakePublisher{}
	proc := NewAlertProcessor(pub, nopMetrics{}, "log")
	s := NewAlertSweeper(triggeringAlertUC(t), proc, nil, nil, nil, 20*time.Millisecond, testLogger(t))
	ctx := context.Background()

	s.Start(ctx)
	s.Stop()
	before := len(pub.published())

	s.Start(ctx)
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for len(pub.published()) <= before {
		select {
		case <-deadline:
			t.Fatalf("restarted sweeper never swept")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestProcessorBatch(t *testing.T) {
	pub := &fakePublisher{}
	proc := NewAlertProcessor(pub, nopMetrics{}, "kafka")

	alerts := []models.Alert{
		{ID: "price-AAPL", Symbol: "AAPL", Kind: models.AlertPrice, Severity: models.SeverityHigh},
		{ID: "sentiment-AAPL", Symbol: "AAPL", Kind: models.AlertSentimentSpike, Severity: models.SeverityHigh},
	}
	if err := proc.ProcessBatch(context.Background(), alerts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("expected one batch of two, got %+v", pub.batches)
	}
	if err := proc.ProcessBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}
	if proc.Backend() != "kafka" {
		t.Fatalf("unexpected backend %q", proc.Backend())
	}
}
