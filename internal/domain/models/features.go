package models

import "time"

// FeatureSet is the technical and semantic feature record for one symbol on one date.
// Nil pointer fields mean the history was too short to compute them.
type FeatureSet struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`

	SMA20   *float64 `json:"sma20,omitempty"`
	SMA50   *float64 `json:"sma50,omitempty"`
	SMA200  *float64 `json:"sma200,omitempty"`
	RSI14   *float64 `json:"rsi14,omitempty"`   // 0..100
	ATR14   *float64 `json:"atr14,omitempty"`   // price units
	RSVsSPY *float64 `json:"rsVsSpy,omitempty"` // 0..100 percentile

	// Supplied by the semantic aggregation service.
	NewsSentiment7d   float64 `json:"newsSentiment7d"`
	NewsSentiment30d  float64 `json:"newsSentiment30d"`
	TailRiskScore14d  float64 `json:"tailRiskScore14d"`
	CatalystMomentum  float64 `json:"catalystMomentum"`
	EarningsWithin5d  bool    `json:"earningsWithin5d"`
	EarningsWithin10d bool    `json:"earningsWithin10d"`

	Warnings []string `json:"warnings,omitempty"`
}

// SemanticSnapshot is the news/LLM derived signal set for a symbol on a date.
type SemanticSnapshot struct {
	Symbol            string    `json:"symbol"`
	Date              time.Time `json:"date"`
	NewsSentiment7d   float64   `json:"news_sentiment_7d"`
	NewsSentiment30d  float64   `json:"news_sentiment_30d"`
	TailRiskScore14d  float64   `json:"tail_risk_score_14d"`
	CatalystMomentum  float64   `json:"catalyst_momentum"`
	EarningsWithin5d  bool      `json:"earnings_within_5d"`
	EarningsWithin10d bool      `json:"earnings_within_10d"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
