package models

import "time"

// Bar represents a daily OHLCV record for feature engineering.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BarsAsOf returns the prefix of an ascending bar series dated on or before asOf.
func BarsAsOf(bars []Bar, asOf time.Time) []Bar {
	if asOf.IsZero() {
		return bars
	}
	n := len(bars)
	for n > 0 && bars[n-1].Date.After(asOf) {
		n--
	}
	return bars[:n]
}

// LastClose returns the most recent close, or 0 for an empty series.
func LastClose(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}
