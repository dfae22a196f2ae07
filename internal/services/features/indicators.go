package features

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

const (
	RSIPeriod          = 14
	ATRPeriod          = 14
	RelativeStrengthN  = 20
	DefaultBarLookback = 260
)

// SMA returns the arithmetic mean of the last period closes, or nil if fewer than period bars exist.
func SMA(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period {
		return nil
	}
	closes := closes(bars[len(bars)-period:])
	out := helper.ChanToSlice(trend.NewSmaWithPeriod[float64](period).Compute(helper.SliceToChan(closes)))
	if len(out) == 0 {
		return nil
	}
	return models.Float(out[len(out)-1])
}

// RSI computes the relative strength index from simple averages of the last period
// close-to-close gains and losses. Needs period+1 bars.
func RSI(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}
	var gains, losses float64
	window := bars[len(bars)-period-1:]
	for i := 1; i < len(window); i++ {
		change := window[i].Close - window[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return models.Float(100)
	}
	rs := avgGain / avgLoss
	return models.Float(clamp(100-100/(1+rs), 0, 100))
}

// ATR computes the mean true range over the last period bars. Needs period+1 bars so that
// every true range has a previous close.
func ATR(bars []models.Bar, period int) *float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}
	window := bars[len(bars)-period-1:]
	sum := 0.0
	for i := 1; i < len(window); i++ {
		sum += TrueRange(window[i], window[i-1].Close)
	}
	return models.Float(sum / float64(period))
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(b models.Bar, prevClose float64) float64 {
	return math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
}

// TrailingReturn returns the simple return over the last n bars: C_t / C_{t-n} - 1.
// ok is false if the series is too short or the base close is not positive.
func TrailingReturn(bars []models.Bar, n int) (float64, bool) {
	if n <= 0 || len(bars) < n+1 {
		return 0, false
	}
	base := bars[len(bars)-n-1].Close
	if base <= 0 {
		return 0, false
	}
	return bars[len(bars)-1].Close/base - 1, true
}

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
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
