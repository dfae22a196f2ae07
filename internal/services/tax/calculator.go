// Package tax estimates the tax cost of closing the held position and the edge a
// replacement must offer to be worth that cost.
package tax

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Rates holds the tax assumptions. All fractions, not percents.
type Rates struct {
	ShortTerm         float64 `yaml:"short_term" default:"0.37" validate:"gte=0,lte=1"`
	LongTerm          float64 `yaml:"long_term" default:"0.15" validate:"gte=0,lte=1"`
	TransactionBuffer float64 `yaml:"transaction_buffer" default:"0.02" validate:"gte=0,lte=1"`
	LongTermDays      int     `yaml:"long_term_days" default:"365" validate:"gt=0"`
	// NearTermDays is the window before long-term status in which waiting is rewarded.
	NearTermDays    int     `yaml:"near_term_days" default:"30" validate:"gte=0"`
	NearTermMinGain float64 `yaml:"near_term_min_gain" default:"0.10" validate:"gte=0"`
	WaitHorizonDays int     `yaml:"wait_horizon_days" default:"60" validate:"gte=0"`
}

// DefaultRates returns the US federal assumptions the strategy was designed around.
func DefaultRates() Rates {
	return Rates{
		ShortTerm:         0.37,
		LongTerm:          0.15,
		TransactionBuffer: 0.02,
		LongTermDays:      365,
		NearTermDays:      30,
		NearTermMinGain:   0.10,
		WaitHorizonDays:   60,
	}
}

// Validate rejects rate sets the calculator cannot use.
func (r Rates) Validate() error {
	if r.ShortTerm < 0 || r.ShortTerm > 1 || r.LongTerm < 0 || r.LongTerm > 1 {
		return fmt.Errorf("%w: tax rates must be within [0,1]", models.ErrConfiguration)
	}
	if r.LongTerm > r.ShortTerm {
		return fmt.Errorf("%w: long-term rate %.2f exceeds short-term rate %.2f", models.ErrConfiguration, r.LongTerm, r.ShortTerm)
	}
	if r.LongTermDays <= 0 {
		return fmt.Errorf("%w: long_term_days must be positive", models.ErrConfiguration)
	}
	if r.TransactionBuffer < 0 {
		return fmt.Errorf("%w: transaction buffer is negative", models.ErrConfiguration)
	}
	return nil
}

// Calculator turns entry data into a TaxImpact. It is stateless and safe for concurrent use.
type Calculator struct {
	rates Rates
}

func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// CalculateTaxDrag uses the default rates.
func CalculateTaxDrag(entryDate time.Time, entryPrice, currentPrice float64, now time.Time) models.TaxImpact {
	return NewCalculator(DefaultRates()).CalculateTaxDrag(entryDate, entryPrice, currentPrice, now)
}

// CalculateTaxDrag evaluates the tax cost of selling at currentPrice on now.
// A position at a loss never carries drag: the required edge is the transaction buffer alone.
func (c *Calculator) CalculateTaxDrag(entryDate time.Time, entryPrice, currentPrice float64, now time.Time) models.TaxImpact {
	days := HoldingDays(entryDate, now)
	impact := models.TaxImpact{
		HoldingDays:    days,
		IsLongTerm:     days >= c.rates.LongTermDays,
		DaysToLongTerm: max(0, c.rates.LongTermDays-days),
	}

	buffer := decimal.NewFromFloat(c.rates.TransactionBuffer)
	if entryPrice <= 0 {
		impact.RequiredEdgeToRotate = buffer.InexactFloat64()
		return impact
	}

	entry := decimal.NewFromFloat(entryPrice)
	gain := decimal.NewFromFloat(currentPrice).Sub(entry).Div(entry)
	impact.EstimatedGainPct = gain.InexactFloat64()

	if !gain.IsPositive() {
		impact.RequiredEdgeToRotate = buffer.InexactFloat64()
		return impact
	}

	rate := decimal.NewFromFloat(c.rates.ShortTerm)
	if impact.IsLongTerm {
		rate = decimal.NewFromFloat(c.rates.LongTerm)
	}
	drag := gain.Mul(rate)
	edge := drag.Add(buffer)

	if !impact.IsLongTerm &&
		impact.DaysToLongTerm <= c.rates.NearTermDays &&
		gain.GreaterThan(decimal.NewFromFloat(c.rates.NearTermMinGain)) {
		edge = edge.Add(c.potentialSavings(gain).Mul(decimal.NewFromFloat(0.5)))
	}

	impact.EstimatedTaxRate = rate.InexactFloat64()
	impact.TaxDragPct = drag.InexactFloat64()
	impact.RequiredEdgeToRotate = edge.InexactFloat64()
	return impact
}

// ShouldWaitForLongTerm reports whether holding until long-term status is worth more than
// bestCandidateEdge (a fraction). It only applies to profitable short-term positions within
// the wait horizon; the closer the boundary, the smaller the edge needed to justify waiting.
func (c *Calculator) ShouldWaitForLongTerm(impact models.TaxImpact, bestCandidateEdge float64) bool {
	if impact.IsLongTerm || impact.EstimatedGainPct <= 0 {
		return false
	}

	var multiplier decimal.Decimal
	switch {
	case impact.DaysToLongTerm <= c.rates.NearTermDays:
		multiplier = decimal.NewFromFloat(1.5)
	case impact.DaysToLongTerm <= c.rates.WaitHorizonDays:
		multiplier = decimal.NewFromFloat(2.0)
	default:
		return false
	}

	savings := c.potentialSavings(decimal.NewFromFloat(impact.EstimatedGainPct))
	hurdle := savings.Mul(multiplier).Add(decimal.NewFromFloat(c.rates.TransactionBuffer))
	return decimal.NewFromFloat(bestCandidateEdge).LessThan(hurdle)
}

// potentialSavings is the tax saved on gain by reaching long-term status.
func (c *Calculator) potentialSavings(gain decimal.Decimal) decimal.Decimal {
	spread := decimal.NewFromFloat(c.rates.ShortTerm).Sub(decimal.NewFromFloat(c.rates.LongTerm))
	return gain.Mul(spread)
}

// HoldingDays is the number of whole days between entry and now. An entry dated after
// now counts as zero days.
func HoldingDays(entryDate, now time.Time) int {
	d := math.Floor(now.Sub(entryDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return int(d)
}
