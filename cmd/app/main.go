package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/neelpatelshah/swing-trader/internal/di"
	"github.com/neelpatelshah/swing-trader/pkg/config"
	"github.com/neelpatelshah/swing-trader/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	once := flag.Bool("once", false, "run the pipeline for one date and exit")
	date := flag.String("date", "", "evaluation date (YYYY-MM-DD) for -once; defaults to the latest weekday")
	flag.Parse()

	boot := logger.NewWithWriter(os.Stderr, zerolog.InfoLevel)

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		boot.Error("config load failed", logger.String("path", *configPath), logger.Error(err))
		os.Exit(1)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		boot.Error("app initialization failed", logger.Error(err))
		os.Exit(1)
	}
	log := app.Logger()
	log.Info("initialized",
		logger.String("clickhouse_db", cfg.ClickHouse.Database),
		logger.Bool("kafka", cfg.Kafka.Enabled),
		logger.Bool("redis", cfg.Redis.Enabled),
		logger.String("semantic_source", cfg.Semantic.Source),
	)

	if *once {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := app.RunOnce(ctx, *date)
		if err != nil {
			log.Error("pipeline run failed", logger.Error(err))
			os.Exit(1)
		}
		fields := []logger.Field{
			logger.String("run_id", res.Summary.RunID),
			logger.Int("scored", len(res.Leaderboard)),
			logger.Int("failed", res.Summary.Failed),
		}
		if res.Signal != nil {
			fields = append(fields,
				logger.String("sell_level", string(res.Signal.SellSignalLevel)),
				logger.String("rotate", string(res.Signal.RotateRecommendation)),
			)
		}
		log.Info("pipeline run finished", fields...)
		return
	}

	if err := app.Run(); err != nil {
		log.Error("app error", logger.Error(err))
		os.Exit(1)
	}
}
