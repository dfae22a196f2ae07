package repository

import (
	"context"
	"time"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// BarSource provides read-only access to daily bar history.
type BarSource interface {
	// GetBars returns up to lookback bars for symbol dated on or before asOf, ascending by date.
	GetBars(ctx context.Context, symbol string, asOf time.Time, lookback int) ([]models.Bar, error)
}

// SemanticSource provides the news/LLM derived snapshot per symbol per date.
type SemanticSource interface {
	GetSnapshots(ctx context.Context, symbols []string, date time.Time) (map[string]models.SemanticSnapshot, error)
}

// TickerSource provides the authoritative ticker classification map.
type TickerSource interface {
	ListTickers(ctx context.Context) ([]models.TickerClass, error)
}

// HoldingSource returns the current holding, or nil when flat.
type HoldingSource interface {
	GetHolding(ctx context.Context) (*models.Holding, error)
}

// ResultSink persists or forwards the outputs of a run.
type ResultSink interface {
	StoreFeatures(ctx context.Context, features []models.FeatureSet) error
	StoreScores(ctx context.Context, scores []models.ScoreResult) error
	StoreSignal(ctx context.Context, signal *models.SignalResult) error
	Close() error
}

// RunLocker guards a pipeline run so that one date evaluates at most once at a time.
type RunLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Metrics interface {
	RecordRun(status string)
	RecordSymbol(stage, result string)
	RecordSwingScore(symbol string, score float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
