package usecase

import (
	"context"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	mid "MarketPulse/internal/middleware"
	"MarketPulse/pkg/cache"
	"MarketPulse/pkg/logger"
)

const sweepLockKey = "alerts:sweep:lock"

// AlertBroadcaster receives each sweep's alerts for live fan-out.
type AlertBroadcaster interface {
	Broadcast(alerts []models.Alert)
}

// AlertSweeper re-runs the evaluator on a fixed interval and routes the
// results through the pipeline to the sink. A redis lock ensures only one
// replica sweeps per tick; replicas that lose the lock skip the tick.
type AlertSweeper struct {
	eval     *AlertUseCase
	proc     *AlertProcessor
	pipe     *mid.AlertPipeline
	hub      AlertBroadcaster
	locks    cache.Service
	interval time.Duration
	l        *logger.Logger

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
}

// NewAlertSweeper creates a new AlertSweeper instance. hub may be nil when
// no live feed is mounted.
func NewAlertSweeper(
	eval *AlertUseCase,
	proc *AlertProcessor,
	pipe *mid.AlertPipeline,
	hub AlertBroadcaster,
	locks cache.Service,
	interval time.Duration,
	l *logger.Logger,
) *AlertSweeper {
	return &AlertSweeper{
		eval:     eval,
		proc:     proc,
		pipe:     pipe,
		hub:      hub,
		locks:    locks,
		interval: interval,
		l:        l,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the periodic sweep loop. A stopped sweeper can be
// started again.
func (s *AlertSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if s.pipe != nil {
		s.pipe.Start(ctx)
	}
	go s.loop(ctx, stopCh)
}

func (s *AlertSweeper) loop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one guarded sweep. Losing the lock race is not an
// error; another replica is already sweeping.
func (s *AlertSweeper) RunOnce(ctx context.Context) {
	if s.locks != nil {
		ok, err := s.locks.TryLock(ctx, sweepLockKey, s.interval)
		if err != nil {
			s.l.Warn("sweep lock unavailable", logger.Error(err))
		} else if !ok {
			return
		} else {
			defer func() { _ = s.locks.Unlock(ctx, sweepLockKey) }()
		}
	}

	alerts := s.eval.Sweep(ctx)
	if len(alerts) == 0 {
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(alerts)
	}

	for i := range alerts {
		if s.pipe != nil {
			if err := s.pipe.Process(ctx, &alerts[i]); err != nil {
				s.l.Error("alert pipeline rejected alert",
					logger.String("id", alerts[i].ID), logger.Error(err))
			}
			continue
		}
		if err := s.proc.Process(ctx, &alerts[i]); err != nil {
			s.l.Error("alert sink publish failed",
				logger.String("id", alerts[i].ID), logger.Error(err))
		}
	}
}

// Stop halts the sweep loop and drains the pipeline.
func (s *AlertSweeper) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()
	if s.pipe != nil {
		s.pipe.Stop()
	}
}
