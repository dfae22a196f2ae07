package features

import (
	"fmt"
	"time"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Computed is the phase-1 output for one symbol: its feature set plus the raw
// return ratio that the cross-sectional ranking consumes.
type Computed struct {
	Features models.FeatureSet
	// Ratio is symbolReturn / benchmarkReturn over RelativeStrengthN bars.
	Ratio    float64
	HasRatio bool
}

// Engine computes per-symbol features against a fixed benchmark and evaluation date.
type Engine struct {
	asOf            time.Time
	benchmarkReturn float64
	hasBenchmark    bool
}

// NewEngine prepares the benchmark trailing return once for the whole universe.
func NewEngine(benchmark []models.Bar, asOf time.Time) *Engine {
	r, ok := TrailingReturn(models.BarsAsOf(benchmark, asOf), RelativeStrengthN)
	return &Engine{asOf: asOf, benchmarkReturn: r, hasBenchmark: ok}
}

// BenchmarkReturn returns the benchmark trailing return and whether it was computable.
func (e *Engine) BenchmarkReturn() (float64, bool) {
	return e.benchmarkReturn, e.hasBenchmark
}

// Compute runs the per-symbol phase. It never fails on short history: missing
// indicators stay nil and a warning is attached instead.
func (e *Engine) Compute(symbol string, history []models.Bar) Computed {
	bars := models.BarsAsOf(history, e.asOf)
	fs := models.FeatureSet{
		Symbol: symbol,
		Date:   e.asOf,
		SMA20:  SMA(bars, 20),
		SMA50:  SMA(bars, 50),
		SMA200: SMA(bars, 200),
		RSI14:  RSI(bars, RSIPeriod),
		ATR14:  ATR(bars, ATRPeriod),
	}
	if fs.Date.IsZero() && len(bars) > 0 {
		fs.Date = bars[len(bars)-1].Date
	}

	insufficient := func(name string, need int) {
		fs.Warnings = append(fs.Warnings,
			fmt.Sprintf("insufficient history for %s: need %d bars, have %d", name, need, len(bars)))
	}
	if fs.SMA20 == nil {
		insufficient("sma20", 20)
	}
	if fs.SMA50 == nil {
		insufficient("sma50", 50)
	}
	if fs.SMA200 == nil {
		insufficient("sma200", 200)
	}
	if fs.RSI14 == nil {
		insufficient("rsi14", RSIPeriod+1)
	}
	if fs.ATR14 == nil {
		insufficient("atr14", ATRPeriod+1)
	}

	r, ok := TrailingReturn(bars, RelativeStrengthN)
	switch {
	case !ok:
		insufficient("relative strength", RelativeStrengthN+1)
	case !e.hasBenchmark:
		fs.Warnings = append(fs.Warnings, "benchmark history unavailable for relative strength")
	default:
		return Computed{Features: fs, Ratio: returnRatio(r, e.benchmarkReturn), HasRatio: true}
	}
	return Computed{Features: fs}
}

// ComputeFeatures is the single-symbol entry point. RSVsSPY is left nil: it only
// exists once the whole universe has been ranked (see RankRelativeStrength).
func ComputeFeatures(symbol string, history, benchmark []models.Bar, asOf time.Time) models.FeatureSet {
	return NewEngine(benchmark, asOf).Compute(symbol, history).Features
}

// MergeSemantic copies the externally supplied semantic fields into fs.
func MergeSemantic(fs models.FeatureSet, snap models.SemanticSnapshot) models.FeatureSet {
	fs.NewsSentiment7d = snap.NewsSentiment7d
	fs.NewsSentiment30d = snap.NewsSentiment30d
	fs.TailRiskScore14d = snap.TailRiskScore14d
	fs.CatalystMomentum = snap.CatalystMomentum
	fs.EarningsWithin5d = snap.EarningsWithin5d
	fs.EarningsWithin10d = snap.EarningsWithin10d
	return fs
}

func returnRatio(symbolReturn, benchmarkReturn float64) float64 {
	if benchmarkReturn == 0 {
		return 1
	}
	return symbolReturn / benchmarkReturn
}
