package models

import "time"

// Confidence grades a price projection.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Projection is a forward price-move estimate attached to a score.
type Projection struct {
	HorizonDays      int        `json:"horizonDays"`
	ExpectedMovePct  float64    `json:"expectedMovePct"`
	ExpectedRangePct [2]float64 `json:"expectedRangePct"` // [low, high]
	Confidence       Confidence `json:"confidence"`
	Notes            string     `json:"notes"`
}

// ScoreResult is the composite swing score of one candidate.
type ScoreResult struct {
	Symbol     string             `json:"symbol"`
	Date       time.Time          `json:"date"`
	SwingScore float64            `json:"swingScore"` // 0..100
	Components map[string]float64 `json:"components"`
	TopReasons []string           `json:"topReasons"`
	Warnings   []string           `json:"warnings"`
	Projection Projection         `json:"projection"`
}
