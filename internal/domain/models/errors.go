package models

import (
	"errors"
	"fmt"
)

var (
	// ErrHardExclusion is returned when a DEFENSE_PRIMARY symbol reaches scoring or signaling.
	ErrHardExclusion = errors.New("hard-excluded symbol")
	// ErrUpstreamUnavailable marks missing bars or semantic data for a symbol.
	ErrUpstreamUnavailable = errors.New("upstream data unavailable")
	// ErrConfiguration marks an invalid or incomplete engine configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrRunInProgress is returned when another run for the same date holds the lock.
	ErrRunInProgress = errors.New("run already in progress")
)

// Pipeline stages used in failure records.
const (
	StageFeatures = "features"
	StageRanking  = "ranking"
	StageScoring  = "scoring"
	StageSignal   = "signal"
	StagePublish  = "publish"
)

// SymbolError records why a single symbol dropped out of a run.
type SymbolError struct {
	Symbol string
	Stage  string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Symbol, e.Stage, e.Err)
}

// Unwrap returns underlying error.
func (e *SymbolError) Unwrap() error {
	return e.Err
}

// NewSymbolError wraps err for symbol at stage.
func NewSymbolError(symbol, stage string, err error) *SymbolError {
	return &SymbolError{Symbol: symbol, Stage: stage, Err: err}
}
