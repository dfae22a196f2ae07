package repository

import (
	"context"
	"errors"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	domrepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
)

// FanoutSink writes to every sink in order. A failing sink does not stop the others;
// their errors are joined.
type FanoutSink struct {
	sinks []domrepo.ResultSink
}

func NewFanoutSink(sinks ...domrepo.ResultSink) *FanoutSink {
	out := make([]domrepo.ResultSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &FanoutSink{sinks: out}
}

func (f *FanoutSink) StoreFeatures(ctx context.Context, features []models.FeatureSet) error {
	return f.each(func(s domrepo.ResultSink) error { return s.StoreFeatures(ctx, features) })
}

func (f *FanoutSink) StoreScores(ctx context.Context, scores []models.ScoreResult) error {
	return f.each(func(s domrepo.ResultSink) error { return s.StoreScores(ctx, scores) })
}

func (f *FanoutSink) StoreSignal(ctx context.Context, signal *models.SignalResult) error {
	return f.each(func(s domrepo.ResultSink) error { return s.StoreSignal(ctx, signal) })
}

func (f *FanoutSink) Close() error {
	return f.each(func(s domrepo.ResultSink) error { return s.Close() })
}

// Len returns the number of wrapped sinks.
func (f *FanoutSink) Len() int { return len(f.sinks) }

func (f *FanoutSink) each(fn func(domrepo.ResultSink) error) error {
	var errs []error
	for _, s := range f.sinks {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ domrepo.ResultSink = (*FanoutSink)(nil)
