package kafka

import (
    "context"
    "time"

    "github.com/segmentio/kafka-go"
)

// ConsumerHook defines lifecycle hooks around message handling.
// Hooks can mutate context, message, and payload.
// Returning a non-nil error from BeforeHandle will skip handler execution
// and trigger error processing (OnError, DLQ, and offset commit).
type ConsumerHook interface {
    BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error)
    AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
    OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
}

// NoopHook is a default hook that does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
    return ctx, km, data, nil
}

func (NoopHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {}

func (NoopHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {}

// MetricsRecorder is the slice of the metrics surface the hook needs.
type MetricsRecorder interface {
    RecordError(kind string)
    RecordLatency(op string, seconds float64)
}

// MetricsHook records per-message handling latency and failures.
type MetricsHook struct {
    m MetricsRecorder
}

func NewMetricsHook(m MetricsRecorder) *MetricsHook { return &MetricsHook{m: m} }

type ctxKey string

const ctxStartTime ctxKey = "kafka_handle_start"

func (h *MetricsHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
    return context.WithValue(ctx, ctxStartTime, time.Now()), km, data, nil
}

func (h *MetricsHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
    if start, ok := ctx.Value(ctxStartTime).(time.Time); ok {
        h.m.RecordLatency("consumer_handle", time.Since(start).Seconds())
    }
}

func (h *MetricsHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
    h.m.RecordError("consumer_handle")
}
