package usecase

import (
	"context"
	"encoding/json"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	pkgkafka "MarketPulse/pkg/kafka"
)

// KafkaAlertsHandler consumes published alerts and archives them.
type KafkaAlertsHandler struct {
	topic   string
	store   drepo.AlertStore
	metrics drepo.Metrics
}

func NewKafkaAlertsHandler(topic string, store drepo.AlertStore, metrics drepo.Metrics) *KafkaAlertsHandler {
	return &KafkaAlertsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaAlertsHandler) Topic() string { return h.topic }

func (h *KafkaAlertsHandler) Handle(ctx context.Context, b []byte) error {
	var a models.Alert
	if err := json.Unmarshal(b, &a); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if a.ID == "" || a.Symbol == "" {
		h.metrics.RecordError("consumer_invalid_alert")
		return nil // malformed but not retryable
	}
	if !a.CreatedAt.IsZero() {
		h.metrics.RecordLatency("archive_e2e_seconds", time.Since(a.CreatedAt).Seconds())
	}

	start := time.Now()
	err := h.store.Store(ctx, &a)
	h.metrics.RecordLatency("archive_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaAlertsHandler)(nil)
