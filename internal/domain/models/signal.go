package models

import "time"

// SellSignalLevel is the sell urgency for the held position.
type SellSignalLevel string

const (
	SellNone       SellSignalLevel = "NONE"
	SellWatch      SellSignalLevel = "WATCH"
	SellSell       SellSignalLevel = "SELL"
	SellStrongSell SellSignalLevel = "STRONG_SELL"
)

// RotateRecommendation tells whether to keep the holding or switch.
type RotateRecommendation string

const (
	RecommendHold   RotateRecommendation = "HOLD"
	RecommendRotate RotateRecommendation = "ROTATE"
)

// SignalExplain carries the numbers behind a signal.
type SignalExplain struct {
	Asymmetry          float64  `json:"asymmetry"`
	UpsideRemainingPct float64  `json:"upsideRemainingPct"`
	DownsideTailPct    float64  `json:"downsideTailPct"`
	Reasons            []string `json:"reasons"`
}

// SignalResult is the daily evaluation of the held position.
type SignalResult struct {
	Date                 time.Time            `json:"date"`
	CurrentSymbol        string               `json:"currentSymbol"`
	SellSignalLevel      SellSignalLevel      `json:"sellSignalLevel"`
	RotateRecommendation RotateRecommendation `json:"rotateRecommendation"`
	RotateToSymbol       string               `json:"rotateToSymbol,omitempty"`
	Explain              SignalExplain        `json:"explain"`
	TaxImpact            TaxImpact            `json:"taxImpact"`
}
