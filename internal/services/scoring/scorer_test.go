package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

var scoreDate = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func fullFeatures(symbol string) models.FeatureSet {
	return models.FeatureSet{
		Symbol:           symbol,
		Date:             scoreDate,
		SMA20:            models.Float(101),
		SMA50:            models.Float(100),
		SMA200:           models.Float(90),
		RSI14:            models.Float(55),
		ATR14:            models.Float(2.8),
		RSVsSPY:          models.Float(75),
		CatalystMomentum: 0.3,
	}
}

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultConfig())
	require.NoError(t, err)
	return s
}

func sumComponents(r models.ScoreResult) float64 {
	total := 0.0
	for _, v := range r.Components {
		total += v
	}
	return total
}

func TestScore_FullFeatures(t *testing.T) {
	s := newTestScorer(t)

	res, err := s.Score(fullFeatures("AAPL"), nil)
	require.NoError(t, err)

	// trend 24 + rs 15 + vol 7.5 + drawdown 13.5 + liquidity 5 + catalyst 8
	assert.InDelta(t, 73.0, res.SwingScore, 1e-9)
	assert.InDelta(t, res.SwingScore, sumComponents(res), 1e-9)
	assert.InDelta(t, 24.0, res.Components[ComponentTrend], 1e-9)
	assert.InDelta(t, 15.0, res.Components[ComponentRelativeStrength], 1e-9)
	assert.InDelta(t, 13.5, res.Components[ComponentDrawdownRisk], 1e-9)
	assert.Len(t, res.Components, 6)
	assert.Len(t, res.TopReasons, 3)
	assert.Contains(t, res.TopReasons[0], "bullish trend")
	assert.Empty(t, res.Warnings)

	assert.Equal(t, 40, res.Projection.HorizonDays)
	assert.Equal(t, models.ConfidenceHigh, res.Projection.Confidence)
	assert.InDelta(t, 8.0, res.Projection.ExpectedMovePct, 1e-9)
	assert.InDelta(t, -4.0, res.Projection.ExpectedRangePct[0], 1e-9)
	assert.InDelta(t, 12.0, res.Projection.ExpectedRangePct[1], 1e-9)
}

func TestScore_MissingFeaturesFallBackWithWarnings(t *testing.T) {
	s := newTestScorer(t)
	fs := models.FeatureSet{
		Symbol:   "NEW",
		Date:     scoreDate,
		Warnings: []string{"insufficient history for sma200: need 200 bars, have 30"},
	}

	res, err := s.Score(fs, nil)
	require.NoError(t, err)

	// every component at its neutral half
	assert.InDelta(t, 50.0, res.SwingScore, 1e-9)
	assert.InDelta(t, res.SwingScore, sumComponents(res), 1e-9)
	assert.Contains(t, res.Warnings, "insufficient history for sma200: need 200 bars, have 30")
	assert.Len(t, res.Warnings, 4)
	assert.Equal(t, 20, res.Projection.HorizonDays)
	assert.Equal(t, models.ConfidenceLow, res.Projection.Confidence)
	assert.Zero(t, res.Projection.ExpectedMovePct)
}

func TestScore_DrawdownRSIBands(t *testing.T) {
	s := newTestScorer(t)
	tests := []struct {
		rsi  float64
		want float64
	}{
		{rsi: 10, want: 0.3 * 15},
		{rsi: 29.99, want: 0.3 * 15},
		{rsi: 30, want: 0.5 * 15},
		{rsi: 39.9, want: 0.5 * 15},
		{rsi: 40, want: 0.9 * 15},
		{rsi: 60, want: 0.9 * 15},
		{rsi: 65, want: 0.5 * 15},
		{rsi: 70, want: 0.5 * 15},
		{rsi: 70.01, want: 0.4 * 15},
		{rsi: 95, want: 0.4 * 15},
	}
	for _, tt := range tests {
		fs := fullFeatures("X")
		fs.RSI14 = models.Float(tt.rsi)
		res, err := s.Score(fs, nil)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, res.Components[ComponentDrawdownRisk], 1e-9, "rsi %.2f", tt.rsi)
	}
}

func TestScore_TrendTieIsNotBullish(t *testing.T) {
	s := newTestScorer(t)
	fs := fullFeatures("FLAT")
	fs.SMA50 = models.Float(90)

	res, err := s.Score(fs, nil)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, res.Components[ComponentTrend], 1e-9)
}

func TestScore_EventWarnings(t *testing.T) {
	s := newTestScorer(t)
	fs := fullFeatures("EVT")
	fs.EarningsWithin5d = true
	fs.EarningsWithin10d = true
	fs.TailRiskScore14d = 7

	res, err := s.Score(fs, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, "earnings within 5 days")
	assert.NotContains(t, res.Warnings, "earnings within 10 days")
	assert.Contains(t, res.Warnings, "elevated tail risk 7.0/10")
}

func TestScore_HardExclusion(t *testing.T) {
	s := newTestScorer(t)
	excluded := func(sym string) bool { return sym == "LMT" }

	_, err := s.Score(fullFeatures("LMT"), excluded)
	require.ErrorIs(t, err, models.ErrHardExclusion)

	_, err = s.Score(fullFeatures("AAPL"), excluded)
	require.NoError(t, err)
}

func TestScore_Idempotent(t *testing.T) {
	s := newTestScorer(t)
	fs := fullFeatures("MSFT")
	fs.TailRiskScore14d = 6

	a, err := s.Score(fs, nil)
	require.NoError(t, err)
	b, err := s.Score(fs, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScore_RangeUnderExtremes(t *testing.T) {
	s := newTestScorer(t)
	for _, rs := range []float64{0, 100} {
		for _, cat := range []float64{-1, 1} {
			fs := fullFeatures("EXT")
			fs.RSVsSPY = models.Float(rs)
			fs.CatalystMomentum = cat
			res, err := s.Score(fs, nil)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.SwingScore, 0.0)
			assert.LessOrEqual(t, res.SwingScore, 100.0)
			assert.InDelta(t, res.SwingScore, sumComponents(res), 1e-9)
		}
	}
}

func TestNewScorer_RejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Trend = 60
	_, err := NewScorer(cfg)
	require.ErrorIs(t, err, models.ErrConfiguration)

	cfg = DefaultConfig()
	cfg.Weights.Liquidity = -1
	_, err = NewScorer(cfg)
	require.ErrorIs(t, err, models.ErrConfiguration)
}

func TestProject_Cutoffs(t *testing.T) {
	atr := models.Float(1.4)
	tests := []struct {
		score   float64
		horizon int
		conf    models.Confidence
	}{
		{score: 70.01, horizon: 40, conf: models.ConfidenceHigh},
		{score: 70, horizon: 30, conf: models.ConfidenceMedium},
		{score: 50.01, horizon: 30, conf: models.ConfidenceMedium},
		{score: 50, horizon: 20, conf: models.ConfidenceLow},
	}
	for _, tt := range tests {
		p := Project(tt.score, atr)
		assert.Equal(t, tt.horizon, p.HorizonDays, "score %.2f", tt.score)
		assert.Equal(t, tt.conf, p.Confidence, "score %.2f", tt.score)
		assert.InDelta(t, 1.4*float64(tt.horizon)/14, p.ExpectedMovePct, 1e-9)
		assert.NotEmpty(t, p.Notes)
	}
}

func TestLeaderboard_OrdersByScoreThenSymbol(t *testing.T) {
	in := []models.ScoreResult{
		{Symbol: "CCC", SwingScore: 60},
		{Symbol: "BBB", SwingScore: 72},
		{Symbol: "AAA", SwingScore: 60},
	}

	out := Leaderboard(in)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"BBB", "AAA", "CCC"}, []string{out[0].Symbol, out[1].Symbol, out[2].Symbol})
	assert.Equal(t, "CCC", in[0].Symbol)
}
