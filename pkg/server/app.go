package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	"github.com/neelpatelshah/swing-trader/internal/usecase"
	"github.com/neelpatelshah/swing-trader/pkg/config"
	xhttp "github.com/neelpatelshah/swing-trader/pkg/http"
	pkgkafka "github.com/neelpatelshah/swing-trader/pkg/kafka"
	applogger "github.com/neelpatelshah/swing-trader/pkg/logger"
	"github.com/neelpatelshah/swing-trader/pkg/util"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	pipeline   usecase.Runner
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	trigger    pkgkafka.MessageHandler
	checks     map[string]xhttp.HealthCheck
	closers    []namedCloser
	httpServer *xhttp.Server
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Option customises an App.
type Option func(*App)

// WithConsumer runs the pipeline for messages on the trigger topic.
func WithConsumer(consumer *pkgkafka.Consumer, trigger pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = consumer
		a.trigger = trigger
	}
}

// WithHealthCheck adds a dependency to /healthz.
func WithHealthCheck(name string, check xhttp.HealthCheck) Option {
	return func(a *App) {
		if check != nil {
			a.checks[name] = check
		}
	}
}

// WithCloser registers a resource closed on shutdown, in registration order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, namedCloser{name: name, c: c})
		}
	}
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, pipeline usecase.Runner, handler xhttp.Handler, opts ...Option) *App {
	a := &App{
		cfg:      cfg,
		log:      l,
		pipeline: pipeline,
		handler:  handler,
		checks:   make(map[string]xhttp.HealthCheck),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.log }

// RunOnce evaluates a single date and releases resources. An empty date means
// the latest weekday.
func (a *App) RunOnce(ctx context.Context, date string) (*models.RunResult, error) {
	defer a.closeAll()

	day, err := util.ResolveRunDate(date, time.Now())
	if err != nil {
		return nil, err
	}
	return a.pipeline.Run(ctx, day)
}

// Run serves the trigger endpoints and blocks until interrupted.
func (a *App) Run() error {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
		xhttp.WithServerLogger(a.log),
	}
	for name, check := range a.checks {
		opts = append(opts, xhttp.WithHealthCheck(name, check))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	if a.consumer != nil && a.trigger != nil {
		a.consumer.RegisterHandler(a.trigger)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("start trigger consumer: %w", err)
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("swing-trader ready",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then drains in-flight work, then closes clients.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kafka consumer stop: %w", err))
		}
	}
	a.closeAll()

	if err := errors.Join(errs...); err != nil {
		a.log.Error("shutdown finished with errors", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}

// closeAll flushes the error collector before closing the producer it uses.
func (a *App) closeAll() {
	a.log.RemoveCollector()
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close failed", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}
	a.closers = nil
}
