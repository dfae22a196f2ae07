package models

import "time"

// SymbolFailure is the recorded reason a symbol was excluded from a run's outputs.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// RunSummary reports what happened during one pipeline run.
type RunSummary struct {
	RunID      string          `json:"runId"`
	Date       time.Time       `json:"date"`
	Skipped    bool            `json:"skipped"`
	SkipReason string          `json:"skipReason,omitempty"`
	Universe   int             `json:"universe"`
	Excluded   int             `json:"excluded"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Failures   []SymbolFailure `json:"failures,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

// RunResult is everything a pipeline run produced, ready for persistence.
type RunResult struct {
	Summary     RunSummary    `json:"summary"`
	Features    []FeatureSet  `json:"features"`
	Leaderboard []ScoreResult `json:"leaderboard"` // descending swingScore
	Signal      *SignalResult `json:"signal,omitempty"`
}
