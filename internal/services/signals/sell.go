// Package signals derives the sell urgency and the rotation recommendation for the held position.
package signals

import (
	"fmt"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

const (
	defaultATRFraction = 0.02
	upsideATRMultiple   = 3
	downsideATRMultiple = 2
	// favorableAsymmetry is used when there is no measurable downside.
	favorableAsymmetry = 10
)

// SellSignal is the risk asymmetry reading for a holding.
type SellSignal struct {
	Level              models.SellSignalLevel
	Asymmetry          float64
	UpsideRemainingPct float64
	DownsideTailPct    float64
	Reason             string
}

// EvaluateSell maps the remaining upside against the tail-adjusted downside onto a sell level.
func EvaluateSell(fs models.FeatureSet, currentPrice float64, cfg Config) SellSignal {
	if currentPrice <= 0 {
		return SellSignal{
			Level:  models.SellStrongSell,
			Reason: fmt.Sprintf("no valid price for %s", fs.Symbol),
		}
	}

	atr := defaultATRFraction * currentPrice
	if fs.ATR14 != nil {
		atr = *fs.ATR14
	}

	upside := atr * upsideATRMultiple / currentPrice
	downside := atr * downsideATRMultiple / currentPrice
	if fs.TailRiskScore14d > 0 {
		downside *= 1 + fs.TailRiskScore14d*0.1
	}
	switch {
	case fs.EarningsWithin5d:
		downside *= 1.5
	case fs.EarningsWithin10d:
		downside *= 1.2
	}

	asymmetry := float64(favorableAsymmetry)
	if downside != 0 {
		asymmetry = upside / downside
	}

	level := LevelForAsymmetry(asymmetry, cfg)
	return SellSignal{
		Level:              level,
		Asymmetry:          asymmetry,
		UpsideRemainingPct: upside,
		DownsideTailPct:    downside,
		Reason:             levelReason(level, asymmetry),
	}
}

// LevelForAsymmetry applies the cutoffs to an already computed asymmetry.
func LevelForAsymmetry(asymmetry float64, cfg Config) models.SellSignalLevel {
	switch {
	case asymmetry > cfg.AsymmetryNone:
		return models.SellNone
	case asymmetry > cfg.AsymmetryWatch:
		return models.SellWatch
	case asymmetry > cfg.AsymmetrySell:
		return models.SellSell
	default:
		return models.SellStrongSell
	}
}

func levelReason(level models.SellSignalLevel, asymmetry float64) string {
	switch level {
	case models.SellNone:
		return fmt.Sprintf("favorable risk/reward: asymmetry %.2f", asymmetry)
	case models.SellWatch:
		return fmt.Sprintf("risk/reward narrowing: asymmetry %.2f, watch closely", asymmetry)
	case models.SellSell:
		return fmt.Sprintf("unfavorable risk/reward: asymmetry %.2f", asymmetry)
	default:
		return fmt.Sprintf("downside dominates: asymmetry %.2f, exit advised", asymmetry)
	}
}
