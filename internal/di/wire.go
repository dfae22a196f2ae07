//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/neelpatelshah/swing-trader/pkg/config"
	"github.com/neelpatelshah/swing-trader/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideMarketStore,
		ProvideSemanticSource,
		ProvideResultSink,

		// Use cases and transports
		ProvidePipeline,
		ProvideHTTPHandler,
		ProvideTriggerHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
