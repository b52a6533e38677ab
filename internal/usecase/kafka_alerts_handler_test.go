package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

type fakeAlertStore struct {
	mu     sync.Mutex
	err    error
	stored []models.Alert
}

func (s *fakeAlertStore) Store(_ context.Context, a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, *a)
	return nil
}

func (s *fakeAlertStore) StoreBatch(ctx context.Context, alerts []models.Alert) error {
	for i := range alerts {
		if err := s.Store(ctx, &alerts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeAlertStore) Query(context.Context, string, time.Time, time.Time, int) ([]models.Alert, error) {
	return nil, nil
}

func (s *fakeAlertStore) Health(context.Context) error { return nil }
func (s *fakeAlertStore) Close() error                 { return nil }

func TestHandleArchivesAlert(t *testing.T) {
	store := &fakeAlertStore{}
	h := NewKafkaAlertsHandler("market.alerts", store, nopMetrics{})

	a := models.Alert{
		ID:        "price-AAPL",
		Kind:      models.AlertPrice,
		Severity:  models.SeverityHigh,
		Symbol:    "AAPL",
		Title:     "Price Movement Alert",
		CreatedAt: time.Now(),
	}
	b, _ := json.Marshal(a)

	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 1 || store.stored[0].ID != "price-AAPL" {
		t.Fatalf("alert not archived: %+v", store.stored)
	}
	if h.Topic() != "market.alerts" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}
}

func TestHandleRejectsGarbage(t *testing.T) {
	h := NewKafkaAlertsHandler("market.alerts", &fakeAlertStore{}, nopMetrics{})
	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestHandleSkipsInvalidAlertWithoutRetry(t *testing.T) {
	store := &fakeAlertStore{}
	h := NewKafkaAlertsHandler("market.alerts", store, nopMetrics{})

	b, _ := json.Marshal(models.Alert{Kind: models.AlertPrice})
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("invalid alerts must not be retried, got %v", err)
	}
	if len(store.stored) != 0 {
		t.Fatalf("invalid alert was archived: %+v", store.stored)
	}
}

func TestHandlePropagatesStoreFailure(t *testing.T) {
	store := &fakeAlertStore{err: errors.New("insert failed")}
	h := NewKafkaAlertsHandler("market.alerts", store, nopMetrics{})

	b, _ := json.Marshal(models.Alert{ID: "price-AAPL", Symbol: "AAPL"})
	if err := h.Handle(context.Background(), b); err == nil {
		t.Fatalf("store failure must propagate for redelivery")
	}
}
