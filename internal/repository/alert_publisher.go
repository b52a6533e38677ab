package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	pkgkafka "MarketPulse/pkg/kafka"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/queue"
)

// KafkaAlertPublisher implements AlertPublisher over a Kafka topic. Messages
// are keyed by symbol so all alerts for one instrument land in one partition.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a Kafka-backed alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.Alert) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Symbol), a)
}

func (p *KafkaAlertPublisher) PublishBatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(alerts))
	for i := range alerts {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(alerts[i].Symbol),
			Value: alerts[i],
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// RedisAlertPublisher pushes alerts onto the shared Redis queue for
// deployments without a Kafka cluster.
type RedisAlertPublisher struct {
	q *queue.RedisQueue
}

// NewRedisAlertPublisher creates a Redis-queue-backed alert publisher.
func NewRedisAlertPublisher(q *queue.RedisQueue) repository.AlertPublisher {
	return &RedisAlertPublisher{q: q}
}

func (p *RedisAlertPublisher) Publish(ctx context.Context, a *models.Alert) error {
	return p.q.PublishMessage(ctx, "alert", a)
}

func (p *RedisAlertPublisher) PublishBatch(ctx context.Context, alerts []models.Alert) error {
	for i := range alerts {
		if err := p.q.PublishMessage(ctx, "alert", &alerts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *RedisAlertPublisher) Close() error {
	return nil
}

// LogAlertPublisher writes alerts to the application log. It is the sink of
// last resort when neither Kafka nor Redis is configured.
type LogAlertPublisher struct {
	l *logger.Logger
}

// NewLogAlertPublisher creates a log-only alert publisher.
func NewLogAlertPublisher(l *logger.Logger) repository.AlertPublisher {
	return &LogAlertPublisher{l: l}
}

func (p *LogAlertPublisher) Publish(ctx context.Context, a *models.Alert) error {
	p.l.Info(a.Title,
		logger.String("id", a.ID),
		logger.String("type", string(a.Kind)),
		logger.String("severity", string(a.Severity)),
		logger.String("symbol", a.Symbol),
	)
	return nil
}

func (p *LogAlertPublisher) PublishBatch(ctx context.Context, alerts []models.Alert) error {
	for i := range alerts {
		if err := p.Publish(ctx, &alerts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *LogAlertPublisher) Close() error {
	return nil
}
