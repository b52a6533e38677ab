package usecase

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
)

// AlertProcessor routes emitted alerts to the configured sink backend.
type AlertProcessor struct {
	pub     drepo.AlertPublisher
	metrics drepo.Metrics
	backend string
}

// NewAlertProcessor creates a new AlertProcessor instance.
func NewAlertProcessor(pub drepo.AlertPublisher, metrics drepo.Metrics, backend string) *AlertProcessor {
	return &AlertProcessor{pub: pub, metrics: metrics, backend: backend}
}

// Process delivers a single alert to the sink.
func (p *AlertProcessor) Process(ctx context.Context, a *models.Alert) error {
	if a == nil {
		return fmt.Errorf("alert is nil")
	}

	start := time.Now()
	if err := p.pub.Publish(ctx, a); err != nil {
		p.metrics.RecordError("sink_publish")
		return fmt.Errorf("publish alert: %w", err)
	}
	p.metrics.RecordLatency("sink_publish", time.Since(start).Seconds())
	return nil
}

// ProcessBatch delivers one sweep's alerts in a single round-trip when the
// sink supports it.
func (p *AlertProcessor) ProcessBatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	start := time.Now()
	if err := p.pub.PublishBatch(ctx, alerts); err != nil {
		p.metrics.RecordError("sink_publish_batch")
		return fmt.Errorf("publish alert batch: %w", err)
	}
	p.metrics.RecordLatency("sink_publish_batch", time.Since(start).Seconds())
	return nil
}

// Backend reports which sink this processor routes to.
func (p *AlertProcessor) Backend() string { return p.backend }

// Close closes the underlying sink.
func (p *AlertProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
