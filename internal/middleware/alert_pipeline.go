package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, a *models.Alert) error
}

// AlertPipeline sits between the sweeper and the sink. It validates alerts
// and buffers them when the sink is unavailable, flushing with backoff.
type AlertPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan *models.Alert
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex

	bufDepthGauge func(int)
}

type PipelineOption func(*AlertPipeline)

// WithBufferSize sets the temporary buffer size when the sink is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *AlertPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewAlertPipeline creates a new pipeline.
func NewAlertPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *AlertPipeline {
	p := &AlertPipeline{
		proc:    proc,
		metrics: metrics,
		bufSize: 1000,
		bufCh:   make(chan *models.Alert, 1000),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.Alert, p.bufSize)
	}
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	return p
}

// Start launches background flushing of buffered alerts. A stopped
// pipeline can be started again.
func (p *AlertPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-stopCh:
				return
			case a := <-p.bufCh:
				if a == nil {
					continue
				}
				if err := p.proc.Process(ctx, a); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- a:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *AlertPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.stopCh)
	p.mu.Unlock()
}

// Process validates and forwards an alert to the sink, buffering on errors.
func (p *AlertPipeline) Process(ctx context.Context, a *models.Alert) error {
	start := time.Now()
	if err := validateAlert(a); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}

	if err := p.proc.Process(ctx, a); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- a:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateAlert(a *models.Alert) error {
	if a == nil {
		return fmt.Errorf("alert nil")
	}
	if a.ID == "" {
		return fmt.Errorf("id empty")
	}
	if a.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	switch a.Kind {
	case models.AlertPrice, models.AlertSentimentSpike:
	default:
		return fmt.Errorf("unknown kind %q", a.Kind)
	}
	switch a.Severity {
	case models.SeverityHigh, models.SeverityMedium:
	default:
		return fmt.Errorf("unknown severity %q", a.Severity)
	}
	return nil
}
