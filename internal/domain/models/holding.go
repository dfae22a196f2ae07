package models

import "time"

// Holding is the single open position, owned by the settings flow.
type Holding struct {
	Symbol     string    `json:"symbol"`
	EntryDate  time.Time `json:"entryDate"`
	EntryPrice float64   `json:"entryPrice"`
	Shares     float64   `json:"shares"`
}

// TaxImpact describes the tax cost of closing a holding now.
type TaxImpact struct {
	HoldingDays          int     `json:"holdingDays"`
	IsLongTerm           bool    `json:"isLongTerm"`
	EstimatedGainPct     float64 `json:"estimatedGainPct"`
	EstimatedTaxRate     float64 `json:"estimatedTaxRate"`
	TaxDragPct           float64 `json:"taxDragPct"`
	DaysToLongTerm       int     `json:"daysToLongTerm"`
	RequiredEdgeToRotate float64 `json:"requiredEdgeToRotate"`
}
