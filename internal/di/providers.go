package di

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/handler/api"
	mid "MarketPulse/internal/middleware"
	internalrepo "MarketPulse/internal/repository"
	"MarketPulse/internal/service/alphavantage"
	"MarketPulse/internal/service/coingecko"
	"MarketPulse/internal/service/finbert"
	"MarketPulse/internal/service/fmp"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/service/twitterx"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/cache"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/queue"
	"MarketPulse/pkg/server"
)

// ProvideLogger creates the application logger. Development environments
// get console output; everything else logs JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	level := "info"
	if cfg.Environment == "development" || cfg.Environment == "test" {
		format = "console"
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRateLimiter creates the shared per-provider token bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideCache builds the cache service: a layered redis+memory cache when
// redis is configured, a process-local memory cache otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
	), nil
}

// ProvideRedisQueue creates the shared redis queue publisher when redis is
// configured. Returns nil otherwise; callers treat a nil queue as absent.
func ProvideRedisQueue(cfg *config.Config, l *applogger.Logger, c cache.Service) *queue.RedisQueue {
	lc, ok := c.(*cache.LayeredCache)
	if !ok {
		return nil
	}
	return queue.NewRedisPublisher(l, lc.Redis().Client())
}

// ProvideQuoteProviders assembles the provider chain in priority order.
func ProvideQuoteProviders(
	cfg *config.Config,
	l *applogger.Logger,
	m repository.Metrics,
	rl *ratelimit.Limiter,
) ([]repository.QuoteProvider, *fmp.Client) {
	av := alphavantage.New(cfg, l, m, rl)
	cg := coingecko.New(cfg, l, m, rl)
	fm := fmp.New(cfg, l, m)

	stock := internalrepo.NewStockProvider(av, fm)
	crypto := internalrepo.NewCryptoProvider(cg)
	return internalrepo.Providers(stock, crypto), fm
}

// ProvideSentimentClassifier creates the FinBERT inference client.
func ProvideSentimentClassifier(cfg *config.Config) repository.SentimentClassifier {
	return finbert.New(cfg)
}

// ProvideTextSource creates the social text source; nil when no bearer
// token is configured, which disables sentiment seeding and spike rules.
func ProvideTextSource(cfg *config.Config) repository.TextSource {
	if cfg.Social.BearerToken == "" {
		return nil
	}
	return twitterx.New(cfg)
}

// ProvideKafkaProducer creates a Kafka producer. Returns nil when neither
// the kafka sink nor archiving needs one.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Alerts.Sink != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher selects the alert sink backend from config.
func ProvideAlertPublisher(
	cfg *config.Config,
	producer *pkgkafka.Producer,
	q *queue.RedisQueue,
	l *applogger.Logger,
) (repository.AlertPublisher, error) {
	switch cfg.Alerts.Sink {
	case "kafka":
		if producer == nil {
			return nil, fmt.Errorf("kafka sink selected but no producer configured")
		}
		return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic), nil
	case "redis":
		if q == nil {
			return nil, fmt.Errorf("redis sink selected but redis is not enabled")
		}
		return internalrepo.NewRedisAlertPublisher(q), nil
	default:
		return internalrepo.NewLogAlertPublisher(l), nil
	}
}

// ProvideClickHouseClient creates a ClickHouse client for the alert
// archive. Returns nil when archiving is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Alerts.Archive {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".alert_history (" +
			"id String, kind String, severity String, title String, description String, " +
			"symbol String, change_percent Float64, sentiment Float64, created_at DateTime" +
			") ENGINE=MergeTree ORDER BY (symbol, created_at)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideAlertStore creates the ClickHouse alert archive; nil without a
// ClickHouse client.
func ProvideAlertStore(chClient *pkgch.Client, cfg *config.Config) repository.AlertStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseAlertStore(chClient.DB(), cfg.ClickHouse.Database+".alert_history")
}

// ProvideKafkaConsumer creates a Kafka consumer for the archive path;
// nil when archiving is disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Alerts.Archive {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaAlertsHandler registers the archive handler; nil without a
// store to write to.
func ProvideKafkaAlertsHandler(store repository.AlertStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaAlertsHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaAlertsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideMarketData creates the quote aggregation use case.
func ProvideMarketData(
	cfg *config.Config,
	providers []repository.QuoteProvider,
	profiles *fmp.Client,
	c cache.Service,
	m repository.Metrics,
) *usecase.MarketDataUseCase {
	return usecase.NewMarketDataUseCase(cfg, providers, profiles, c, m)
}

// ProvideSentiment creates the sentiment scoring use case.
func ProvideSentiment(classifier repository.SentimentClassifier, l *applogger.Logger, m repository.Metrics) *usecase.SentimentUseCase {
	return usecase.NewSentimentUseCase(classifier, l, m)
}

// ProvideRecommend creates the recommendation use case.
func ProvideRecommend(
	market *usecase.MarketDataUseCase,
	sentiment *usecase.SentimentUseCase,
	texts repository.TextSource,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.RecommendUseCase {
	return usecase.NewRecommendUseCase(market, sentiment, texts, l, m)
}

// ProvideAlerts creates the alert evaluation use case.
func ProvideAlerts(
	cfg *config.Config,
	market *usecase.MarketDataUseCase,
	sentiment *usecase.SentimentUseCase,
	texts repository.TextSource,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.AlertUseCase {
	return usecase.NewAlertUseCase(cfg, market, sentiment, texts, l, m)
}

// ProvideAlertsHub creates the websocket fan-out hub.
func ProvideAlertsHub(l *applogger.Logger) *api.AlertsHub {
	return api.NewAlertsHub(l)
}

// ProvideAlertSweeper creates the periodic sweeper with its sink pipeline.
func ProvideAlertSweeper(
	cfg *config.Config,
	eval *usecase.AlertUseCase,
	pub repository.AlertPublisher,
	hub *api.AlertsHub,
	c cache.Service,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.AlertSweeper {
	proc := usecase.NewAlertProcessor(pub, m, cfg.Alerts.Sink)
	pipe := mid.NewAlertPipeline(proc, m, mid.WithBufferSize(2000))

	var locks cache.Service
	if cfg.Redis.Enabled {
		locks = c
	}
	return usecase.NewAlertSweeper(eval, proc, pipe, hub, locks, cfg.Alerts.SweepInterval, l)
}

// ProvideMarketHandler creates the HTTP handler.
func ProvideMarketHandler(
	l *applogger.Logger,
	market *usecase.MarketDataUseCase,
	recommend *usecase.RecommendUseCase,
	alerts *usecase.AlertUseCase,
	archive repository.AlertStore,
) *api.MarketEchoHandler {
	return api.NewMarketEchoHandler(l, market, recommend, alerts, archive)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.MarketEchoHandler,
	hub *api.AlertsHub,
	sweeper *usecase.AlertSweeper,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaAlertsHandler,
	chClient *pkgch.Client,
	q *queue.RedisQueue,
	m repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NewMetricsHook(m))
	}
	return server.New(cfg, l, handler, hub, sweeper, consumer, kh, chClient, q)
}
