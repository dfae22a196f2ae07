package di

import (
	"context"
	"fmt"
	"time"

	drepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
	"github.com/neelpatelshah/swing-trader/internal/handler/api"
	"github.com/neelpatelshah/swing-trader/internal/repository"
	"github.com/neelpatelshah/swing-trader/internal/service/ratelimit"
	"github.com/neelpatelshah/swing-trader/internal/services/semantic"
	"github.com/neelpatelshah/swing-trader/internal/usecase"
	"github.com/neelpatelshah/swing-trader/pkg/cache"
	pkgch "github.com/neelpatelshah/swing-trader/pkg/clickhouse"
	"github.com/neelpatelshah/swing-trader/pkg/config"
	xhttp "github.com/neelpatelshah/swing-trader/pkg/http"
	pkgkafka "github.com/neelpatelshah/swing-trader/pkg/kafka"
	"github.com/neelpatelshah/swing-trader/pkg/logger"
	"github.com/neelpatelshah/swing-trader/pkg/metrics"
	"github.com/neelpatelshah/swing-trader/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideClickHouseClient creates a ClickHouse client and optionally applies the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(cfg.ClickHouse, pkgch.WithPool(cfg.Engine.Workers+2, cfg.Engine.Workers))
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, repository.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return client, nil
}

// ProvideMarketStore creates the ClickHouse-backed market data reader.
func ProvideMarketStore(ch *pkgch.Client, l *logger.Logger) *repository.CHMarketStore {
	store := repository.NewCHMarketStore(ch, ch.Database())
	store.SetLogger(l)
	return store
}

// ProvideCache returns a Redis-backed layered cache when Redis is enabled and
// an in-process cache otherwise. The run lock lives in the same cache.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	c, err := cache.New(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return c, nil
}

// ProvideSemanticSource picks the labeling service or the ClickHouse snapshot table.
func ProvideSemanticSource(cfg *config.Config, store *repository.CHMarketStore, c cache.Service, l *logger.Logger) (drepo.SemanticSource, error) {
	if cfg.Semantic.Source != config.SemanticSourceHTTP {
		return store, nil
	}
	src, err := semantic.NewHTTPSource(cfg.Semantic.HTTP, semantic.WithCache(c), semantic.WithLogger(l))
	if err != nil {
		return nil, fmt.Errorf("semantic source: %w", err)
	}
	return src, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultSink writes results to ClickHouse and, when enabled, Kafka.
func ProvideResultSink(ch *pkgch.Client, producer *pkgkafka.Producer, cfg *config.Config) drepo.ResultSink {
	sinks := []drepo.ResultSink{repository.NewCHResultStore(ch, ch.Database())}
	if producer != nil {
		sinks = append(sinks, repository.NewKafkaResultPublisher(producer, cfg.Kafka.ResultsTopic))
	}
	return repository.NewFanoutSink(sinks...)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvidePipeline wires the daily pipeline.
func ProvidePipeline(
	cfg *config.Config,
	store *repository.CHMarketStore,
	sem drepo.SemanticSource,
	c cache.Service,
	sink drepo.ResultSink,
	m drepo.Metrics,
	l *logger.Logger,
) (*usecase.DailyPipeline, error) {
	src := usecase.Sources{
		Bars:     store,
		Semantic: sem,
		Tickers:  store,
		Holdings: store,
	}
	return usecase.NewDailyPipeline(cfg.Engine, src, c,
		usecase.WithSink(sink),
		usecase.WithMetrics(m),
		usecase.WithLogger(l.With(logger.String("component", "pipeline"))),
	)
}

// ProvideHTTPHandler exposes the run trigger.
func ProvideHTTPHandler(cfg *config.Config, p *usecase.DailyPipeline, l *logger.Logger) xhttp.Handler {
	limiter := ratelimit.New(cfg.Server.TriggerPerMinute, cfg.Server.TriggerBurst)
	return api.NewPipelineHandler(l, p, limiter)
}

// ProvideKafkaConsumer creates the trigger topic consumer, or nil when no
// trigger topic is configured.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.TriggerTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.DLQTopic),
		pkgkafka.WithConsumerLogger(l.With(logger.String("component", "trigger"))),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideTriggerHandler runs the pipeline for trigger topic messages.
func ProvideTriggerHandler(cfg *config.Config, p *usecase.DailyPipeline, m drepo.Metrics, l *logger.Logger) *usecase.KafkaTriggerHandler {
	return usecase.NewKafkaTriggerHandler(cfg.Kafka.TriggerTopic, p, m, l)
}

// ProvideApp assembles the application and its shutdown order.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	p *usecase.DailyPipeline,
	h xhttp.Handler,
	ch *pkgch.Client,
	c cache.Service,
	producer *pkgkafka.Producer,
	sink drepo.ResultSink,
	consumer *pkgkafka.Consumer,
	trigger *usecase.KafkaTriggerHandler,
) *server.App {
	if producer != nil && cfg.Kafka.ErrorsTopic != "" {
		l.AddCollector(&logger.CollectionConfig{
			Topic:     cfg.Kafka.ErrorsTopic,
			Publisher: producer,
		})
	}

	opts := []server.Option{
		server.WithHealthCheck("clickhouse", ch.Health),
		server.WithHealthCheck("cache", func(ctx context.Context) error {
			_, err := c.Exists(ctx, "healthz")
			return err
		}),
		// The sink owns the producer.
		server.WithCloser("sink", sink),
		server.WithCloser("cache", c),
		server.WithCloser("clickhouse", ch),
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer, trigger))
	}
	return server.New(cfg, l, p, h, opts...)
}
