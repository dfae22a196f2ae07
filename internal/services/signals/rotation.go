package signals

import (
	"fmt"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

const longTermProximityDays = 30

// Rotation is the HOLD/ROTATE decision with its supporting numbers.
type Rotation struct {
	Recommendation     models.RotateRecommendation
	ToSymbol           string
	BestScore          float64
	ScoreDiff          float64
	EffectiveThreshold float64
	Reasons            []string
}

// RecommendRotation compares the best alternative candidate with the holding's current score.
// The held symbol and hard-excluded symbols are never rotation targets.
func RecommendRotation(
	holding models.Holding,
	currentScore float64,
	candidates []models.ScoreResult,
	impact models.TaxImpact,
	hardExcluded func(string) bool,
	cfg Config,
) Rotation {
	r := Rotation{
		Recommendation:     models.RecommendHold,
		EffectiveThreshold: cfg.RotateThreshold + impact.RequiredEdgeToRotate*100,
	}

	best, ok := bestAlternative(holding.Symbol, candidates, hardExcluded)
	if !ok {
		r.Reasons = append(r.Reasons, "no alternative candidate available; holding")
		return r
	}

	r.BestScore = best.SwingScore
	r.ScoreDiff = best.SwingScore - currentScore
	r.Reasons = append(r.Reasons,
		fmt.Sprintf("best alternative %s scores %.1f vs %s %.1f (delta %+.1f, threshold %.1f)",
			best.Symbol, best.SwingScore, holding.Symbol, currentScore, r.ScoreDiff, r.EffectiveThreshold),
		fmt.Sprintf("tax cost: drag %.2f%%, required edge %.2f%%",
			impact.TaxDragPct*100, impact.RequiredEdgeToRotate*100),
	)
	if !impact.IsLongTerm && impact.DaysToLongTerm < longTermProximityDays {
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("%d days until long-term treatment", impact.DaysToLongTerm))
	}

	if r.ScoreDiff >= r.EffectiveThreshold {
		r.Recommendation = models.RecommendRotate
		r.ToSymbol = best.Symbol
		r.Reasons = append(r.Reasons, fmt.Sprintf("rotate into %s", best.Symbol))
		return r
	}
	r.Reasons = append(r.Reasons, "score gap below threshold; holding")
	return r
}

// bestAlternative picks the highest score, first seen winning ties.
func bestAlternative(held string, candidates []models.ScoreResult, hardExcluded func(string) bool) (models.ScoreResult, bool) {
	var (
		best  models.ScoreResult
		found bool
	)
	for _, c := range candidates {
		if c.Symbol == held {
			continue
		}
		if hardExcluded != nil && hardExcluded(c.Symbol) {
			continue
		}
		if !found || c.SwingScore > best.SwingScore {
			best, found = c, true
		}
	}
	return best, found
}
