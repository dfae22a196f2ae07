package signals

import (
	"fmt"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	domsvc "github.com/neelpatelshah/swing-trader/internal/domain/service"
	"github.com/neelpatelshah/swing-trader/internal/services/tax"
)

// Engine composes the sell signal, tax impact and rotation decision.
type Engine struct {
	cfg Config
	tax *tax.Calculator
}

// NewEngine validates cfg and builds an engine.
func NewEngine(cfg Config, calc *tax.Calculator) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if calc == nil {
		calc = tax.NewCalculator(tax.DefaultRates())
	}
	return &Engine{cfg: cfg, tax: calc}, nil
}

// Evaluate produces the SignalResult for the holding on in.Date.
func (e *Engine) Evaluate(in domsvc.SignalInput) (models.SignalResult, error) {
	h := in.Holding
	if in.HardExcluded != nil && in.HardExcluded(h.Symbol) {
		return models.SignalResult{}, fmt.Errorf("signal %s: %w", h.Symbol, models.ErrHardExclusion)
	}
	if in.CurrentPrice <= 0 {
		return models.SignalResult{}, fmt.Errorf("signal %s: no current price: %w", h.Symbol, models.ErrUpstreamUnavailable)
	}

	sell := EvaluateSell(in.Features, in.CurrentPrice, e.cfg)
	impact := e.tax.CalculateTaxDrag(h.EntryDate, h.EntryPrice, in.CurrentPrice, in.Date)
	rot := RecommendRotation(h, in.CurrentScore, in.Candidates, impact, in.HardExcluded, e.cfg)

	reasons := append([]string{sell.Reason}, rot.Reasons...)
	if rot.Recommendation == models.RecommendRotate && e.tax.ShouldWaitForLongTerm(impact, rot.ScoreDiff/100) {
		reasons = append(reasons, "long-term tax savings may outweigh the rotation edge; consider waiting")
	}

	return models.SignalResult{
		Date:                 in.Date,
		CurrentSymbol:        h.Symbol,
		SellSignalLevel:      sell.Level,
		RotateRecommendation: rot.Recommendation,
		RotateToSymbol:       rot.ToSymbol,
		Explain: models.SignalExplain{
			Asymmetry:          sell.Asymmetry,
			UpsideRemainingPct: sell.UpsideRemainingPct,
			DownsideTailPct:    sell.DownsideTailPct,
			Reasons:            reasons,
		},
		TaxImpact: impact,
	}, nil
}

var _ domsvc.SignalEvaluator = (*Engine)(nil)
