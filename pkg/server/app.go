package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"NewsImpact/internal/service/session"
	"NewsImpact/pkg/config"
	xhttp "NewsImpact/pkg/http"
	pkgkafka "NewsImpact/pkg/kafka"
	applogger "NewsImpact/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	sessions    *session.Registry
	producer    *pkgkafka.Producer
	redis       *redis.Client
}

// New creates a new App instance with all dependencies.
// producer and rdb may be nil when their features are disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	sessions *session.Registry,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
) *App {
	return &App{
		cfg:         cfg,
		logger:      l,
		httpHandler: handler,
		sessions:    sessions,
		producer:    producer,
		redis:       rdb,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler, a.logger,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithCORS(a.cfg.Server.CORS),
	)

	go a.sessions.Run(ctx, a.cfg.Session.CleanupInterval)
	a.logger.Info("session sweeper started",
		applogger.Duration("ttl_ms", a.cfg.Session.TTL),
		applogger.Duration("interval_ms", a.cfg.Session.CleanupInterval),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("dashboard api started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("remote", a.cfg.Remote.BaseURL),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.sessions.Close()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close error", applogger.Error(err))
		}
	}

	// flush aggregated logs before the producer goes away
	a.logger.RemoveCollector()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
