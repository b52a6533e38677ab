//go:build wireinject
// +build wireinject

package di

import (
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideRateLimiter,
		ProvideCache,
		ProvideRedisQueue,

		// Upstream collaborators
		ProvideQuoteProviders,
		ProvideSentimentClassifier,
		ProvideTextSource,

		// Sinks and archive
		ProvideKafkaProducer,
		ProvideAlertPublisher,
		ProvideClickHouseClient,
		ProvideAlertStore,
		ProvideKafkaConsumer,
		ProvideKafkaAlertsHandler,

		// Use cases
		ProvideMarketData,
		ProvideSentiment,
		ProvideRecommend,
		ProvideAlerts,
		ProvideAlertsHub,
		ProvideAlertSweeper,

		// HTTP and application server
		ProvideMarketHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
