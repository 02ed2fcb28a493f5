package di

import (
	"context"
	"fmt"
	"time"

	"NewsImpact/internal/domain/models"
	"NewsImpact/internal/domain/repository"
	"NewsImpact/internal/handler/api"
	"NewsImpact/internal/service/ratelimit"
	"NewsImpact/internal/service/remote"
	"NewsImpact/internal/service/session"
	"NewsImpact/internal/usecase"
	"NewsImpact/pkg/config"
	xhttp "NewsImpact/pkg/http"
	pkgkafka "NewsImpact/pkg/kafka"
	applogger "NewsImpact/pkg/logger"
	"NewsImpact/pkg/metrics"
	"NewsImpact/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegisterer returns the registry scraped at /metrics.
func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg prometheus.Registerer) repository.Metrics {
	return metrics.New(reg)
}

// ProvideKafkaProducer creates the log collector's Kafka producer.
// It returns nil when log collection is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg prometheus.Registerer) (*pkgkafka.Producer, error) {
	if !cfg.Logging.Collector.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRemoteClient creates the client for the price, news and sentiment services.
func ProvideRemoteClient(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *remote.Client {
	return remote.New(cfg.Remote.BaseURL,
		remote.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Remote.Timeout))),
		remote.WithMetrics(m),
		remote.WithLogger(l.With(applogger.String("component", "remote"))),
	)
}

// ProvideDependencies exposes the remote client through the controller's ports.
func ProvideDependencies(client *remote.Client) usecase.Dependencies {
	return usecase.Dependencies{Prices: client, News: client, Sentiment: client}
}

// ProvideRedisClient connects to Redis when the shared rate limiter is enabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	rc := cfg.RateLimit.Redis
	if !rc.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProvideRateLimiter picks the Redis window limiter when Redis is configured,
// the in-process token bucket otherwise.
func ProvideRateLimiter(cfg *config.Config, rdb *redis.Client) ratelimit.Limiter {
	rl := cfg.RateLimit
	if rdb != nil {
		return ratelimit.NewRedisWindow(rdb, int64(rl.Capacity), rl.Redis.Window, rl.Redis.Prefix)
	}
	return ratelimit.NewTokenBucket(rl.Capacity, rl.RefillPerSec)
}

// ProvideSessionRegistry creates the in-memory session registry.
func ProvideSessionRegistry(
	cfg *config.Config,
	deps usecase.Dependencies,
	m repository.Metrics,
	l *applogger.Logger,
	limiter ratelimit.Limiter,
) *session.Registry {
	ctrlLogger := l.With(applogger.String("component", "controller"))
	factory := func() *usecase.Controller {
		return usecase.NewController(deps,
			usecase.WithControllerMetrics(m),
			usecase.WithControllerLogger(ctrlLogger),
			usecase.WithLocation(cfg.Location()),
			usecase.WithLookbackDays(cfg.Pipeline.PriceLookbackDays),
			usecase.WithDefaultRange(models.TimeRange(cfg.Pipeline.DefaultRange)),
		)
	}

	opts := []session.Option{
		session.WithMetrics(m),
		session.WithLogger(l.With(applogger.String("component", "sessions"))),
	}
	if tb, ok := limiter.(*ratelimit.TokenBucket); ok {
		opts = append(opts, session.WithEvictHook(tb.Forget))
	}
	return session.NewRegistry(factory, cfg.Session.TTL, opts...)
}

// ProvideHTTPHandler creates the dashboard routes.
func ProvideHTTPHandler(l *applogger.Logger, reg *session.Registry, limiter ratelimit.Limiter) xhttp.Handler {
	return api.NewDashboardEchoHandler(l.With(applogger.String("component", "api")), reg, limiter)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	sessions *session.Registry,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
) *server.App {
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.TimeInterval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return server.New(cfg, l, handler, sessions, producer, rdb)
}
