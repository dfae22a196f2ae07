package scoring

import (
	"fmt"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Component names as they appear in ScoreResult.Components.
const (
	ComponentTrend            = "trend"
	ComponentRelativeStrength = "relative_strength"
	ComponentVolatility       = "volatility"
	ComponentDrawdownRisk     = "drawdown_risk"
	ComponentLiquidity        = "liquidity"
	ComponentCatalyst         = "catalyst"
)

// Weights are the maximum points of each component. They sum to at most 100.
// The defaults are placeholders awaiting backtest calibration.
type Weights struct {
	Trend            float64 `yaml:"trend" default:"30" validate:"gte=0"`
	RelativeStrength float64 `yaml:"relative_strength" default:"20" validate:"gte=0"`
	Volatility       float64 `yaml:"volatility" default:"15" validate:"gte=0"`
	DrawdownRisk     float64 `yaml:"drawdown_risk" default:"15" validate:"gte=0"`
	Liquidity        float64 `yaml:"liquidity" default:"10" validate:"gte=0"`
	Catalyst         float64 `yaml:"catalyst" default:"10" validate:"gte=0"`
}

// Config is the scoring engine configuration.
type Config struct {
	Weights Weights `yaml:"weights"`
	// TailRiskWarnAt is the tailRiskScore14d at or above which a warning is attached.
	TailRiskWarnAt float64 `yaml:"tail_risk_warn_at" default:"5" validate:"gte=0,lte=10"`
}

// DefaultConfig returns the reference weights.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Trend:            30,
			RelativeStrength: 20,
			Volatility:       15,
			DrawdownRisk:     15,
			Liquidity:        10,
			Catalyst:         10,
		},
		TailRiskWarnAt: 5,
	}
}

// Sum returns the total of all component maxima.
func (w Weights) Sum() float64 {
	return w.Trend + w.RelativeStrength + w.Volatility + w.DrawdownRisk + w.Liquidity + w.Catalyst
}

// Validate checks the weights can only produce scores in [0,100].
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		ComponentTrend:            w.Trend,
		ComponentRelativeStrength: w.RelativeStrength,
		ComponentVolatility:       w.Volatility,
		ComponentDrawdownRisk:     w.DrawdownRisk,
		ComponentLiquidity:        w.Liquidity,
		ComponentCatalyst:         w.Catalyst,
	} {
		if v < 0 {
			return fmt.Errorf("%w: weight %s is negative", models.ErrConfiguration, name)
		}
	}
	if s := w.Sum(); s <= 0 || s > 100 {
		return fmt.Errorf("%w: weights must sum to (0,100], got %.2f", models.ErrConfiguration, s)
	}
	return nil
}
