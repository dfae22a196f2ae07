// Package scoring turns a feature set into a 0-100 swing score built from six
// independently capped components, with an explanation and a price projection.
package scoring

import (
	"fmt"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	domsvc "github.com/neelpatelshah/swing-trader/internal/domain/service"
)

const maxTopReasons = 3

// component is one capped sub-score with its explanation.
type component struct {
	name    string
	points  float64
	max     float64
	reason  string
	warning string
}

// Scorer implements domain Scorer. It holds no mutable state.
type Scorer struct {
	cfg Config
}

// NewScorer validates cfg and builds a scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score computes the ScoreResult for fs. A symbol that hardExcluded reports as
// DEFENSE_PRIMARY is refused with ErrHardExclusion rather than scored.
func (s *Scorer) Score(fs models.FeatureSet, hardExcluded func(string) bool) (models.ScoreResult, error) {
	if hardExcluded != nil && hardExcluded(fs.Symbol) {
		return models.ScoreResult{}, fmt.Errorf("score %s: %w", fs.Symbol, models.ErrHardExclusion)
	}

	w := s.cfg.Weights
	comps := []component{
		trendComponent(fs, w.Trend),
		relativeStrengthComponent(fs, w.RelativeStrength),
		volatilityComponent(fs, w.Volatility),
		drawdownRiskComponent(fs, w.DrawdownRisk),
		liquidityComponent(fs, w.Liquidity),
		catalystComponent(fs, w.Catalyst),
	}

	res := models.ScoreResult{
		Symbol:     fs.Symbol,
		Date:       fs.Date,
		Components: make(map[string]float64, len(comps)),
		TopReasons: []string{},
		Warnings:   append([]string{}, fs.Warnings...),
	}
	total := 0.0
	for _, c := range comps {
		p := clamp(c.points, 0, c.max)
		res.Components[c.name] = p
		total += p
		if c.warning != "" {
			res.Warnings = append(res.Warnings, c.warning)
		}
	}
	res.SwingScore = clamp(total, 0, 100)
	res.TopReasons = topReasons(comps)
	res.Warnings = append(res.Warnings, s.eventWarnings(fs)...)
	res.Projection = Project(res.SwingScore, fs.ATR14)
	return res, nil
}

var _ domsvc.Scorer = (*Scorer)(nil)

func trendComponent(fs models.FeatureSet, max float64) component {
	c := component{name: ComponentTrend, max: max}
	switch {
	case fs.SMA50 == nil || fs.SMA200 == nil:
		c.points = 0.5 * max
		c.reason = "trend neutral: moving averages unavailable"
		c.warning = "trend scored at neutral default (sma50/sma200 missing)"
	case *fs.SMA50 > *fs.SMA200:
		c.points = 0.8 * max
		c.reason = fmt.Sprintf("bullish trend: sma50 %.2f above sma200 %.2f", *fs.SMA50, *fs.SMA200)
	default:
		c.points = 0.3 * max
		c.reason = fmt.Sprintf("weak trend: sma50 %.2f at or below sma200 %.2f", *fs.SMA50, *fs.SMA200)
	}
	return c
}

func relativeStrengthComponent(fs models.FeatureSet, max float64) component {
	c := component{name: ComponentRelativeStrength, max: max}
	if fs.RSVsSPY == nil {
		c.points = 0.5 * max
		c.reason = "relative strength neutral: percentile unavailable"
		c.warning = "relative strength scored at neutral default (rsVsSpy missing)"
		return c
	}
	c.points = max * (*fs.RSVsSPY / 100)
	c.reason = fmt.Sprintf("relative strength at %.0fth percentile vs benchmark", *fs.RSVsSPY)
	return c
}

// volatilityComponent is a static band pending calibration.
func volatilityComponent(fs models.FeatureSet, max float64) component {
	c := component{name: ComponentVolatility, max: max, points: 0.5 * max}
	if fs.ATR14 == nil {
		c.reason = "volatility suitability neutral: atr unavailable"
		return c
	}
	c.reason = fmt.Sprintf("volatility suitability mid-band (atr14 %.2f, uncalibrated)", *fs.ATR14)
	return c
}

func drawdownRiskComponent(fs models.FeatureSet, max float64) component {
	c := component{name: ComponentDrawdownRisk, max: max}
	if fs.RSI14 == nil {
		c.points = 0.5 * max
		c.reason = "drawdown risk neutral: rsi unavailable"
		c.warning = "drawdown risk scored at neutral default (rsi14 missing)"
		return c
	}
	rsi := *fs.RSI14
	switch {
	case rsi < 30:
		c.points = 0.3 * max
		c.reason = fmt.Sprintf("oversold rsi %.1f carries latent risk", rsi)
	case rsi > 70:
		c.points = 0.4 * max
		c.reason = fmt.Sprintf("overbought rsi %.1f risks a pullback", rsi)
	case rsi >= 40 && rsi <= 60:
		c.points = 0.9 * max
		c.reason = fmt.Sprintf("healthy rsi %.1f", rsi)
	default:
		c.points = 0.5 * max
		c.reason = fmt.Sprintf("rsi %.1f in transition zone", rsi)
	}
	return c
}

// liquidityComponent is a static band pending calibration.
func liquidityComponent(_ models.FeatureSet, max float64) component {
	return component{
		name:   ComponentLiquidity,
		max:    max,
		points: 0.5 * max,
		reason: "liquidity mid-band (uncalibrated)",
	}
}

func catalystComponent(fs models.FeatureSet, max float64) component {
	c := component{name: ComponentCatalyst, max: max}
	if fs.CatalystMomentum > 0 {
		c.points = 0.8 * max
		c.reason = fmt.Sprintf("positive catalyst momentum %.2f", fs.CatalystMomentum)
		return c
	}
	c.points = 0.5 * max
	c.reason = "no positive catalyst momentum"
	return c
}

func (s *Scorer) eventWarnings(fs models.FeatureSet) []string {
	var out []string
	switch {
	case fs.EarningsWithin5d:
		out = append(out, "earnings within 5 days")
	case fs.EarningsWithin10d:
		out = append(out, "earnings within 10 days")
	}
	if fs.TailRiskScore14d >= s.cfg.TailRiskWarnAt && fs.TailRiskScore14d > 0 {
		out = append(out, fmt.Sprintf("elevated tail risk %.1f/10", fs.TailRiskScore14d))
	}
	return out
}

// topReasons returns the first three component reasons in component order.
func topReasons(comps []component) []string {
	out := make([]string, 0, maxTopReasons)
	for _, c := range comps {
		if c.reason == "" {
			continue
		}
		out = append(out, c.reason)
		if len(out) == maxTopReasons {
			break
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
