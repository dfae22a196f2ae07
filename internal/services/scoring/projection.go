package scoring

import (
	"fmt"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Project derives the forward move estimate from the swing score and ATR.
// The range is skewed to the upside: [-0.5, +1.5] times the expected move.
func Project(swingScore float64, atr14 *float64) models.Projection {
	p := models.Projection{HorizonDays: 20, Confidence: models.ConfidenceLow}
	switch {
	case swingScore > 70:
		p.HorizonDays, p.Confidence = 40, models.ConfidenceHigh
	case swingScore > 50:
		p.HorizonDays, p.Confidence = 30, models.ConfidenceMedium
	}

	if atr14 == nil {
		p.Notes = fmt.Sprintf("%d-day horizon; no atr14, expected move unknown", p.HorizonDays)
		return p
	}
	p.ExpectedMovePct = *atr14 * float64(p.HorizonDays) / 14
	p.ExpectedRangePct = [2]float64{-0.5 * p.ExpectedMovePct, 1.5 * p.ExpectedMovePct}
	p.Notes = fmt.Sprintf("%d-day horizon scaled from atr14 %.2f; range skewed for momentum", p.HorizonDays, *atr14)
	return p
}
