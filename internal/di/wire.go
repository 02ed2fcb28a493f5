//go:build wireinject
// +build wireinject

package di

import (
	"NewsImpact/pkg/config"
	"NewsImpact/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegisterer,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideRedisClient,
		ProvideRemoteClient,

		// Use cases
		ProvideDependencies,
		ProvideRateLimiter,
		ProvideSessionRegistry,

		// Transport
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
