package service

import (
	"time"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Scorer turns a feature set into a composite swing score.
type Scorer interface {
	Score(fs models.FeatureSet, hardExcluded func(string) bool) (models.ScoreResult, error)
}

// SignalEvaluator derives the sell signal and rotation recommendation for the holding.
type SignalEvaluator interface {
	Evaluate(in SignalInput) (models.SignalResult, error)
}

// SignalInput bundles everything the signal engine needs for one evaluation date.
type SignalInput struct {
	Date         time.Time
	Holding      models.Holding
	Features     models.FeatureSet
	CurrentPrice float64
	CurrentScore float64
	Candidates   []models.ScoreResult
	HardExcluded func(string) bool
}
