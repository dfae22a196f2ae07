package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

func TestScoreMessages_CarryRankAndKey(t *testing.T) {
	msgs := ScoreMessages([]models.ScoreResult{
		{Symbol: "NVDA", Date: day, SwingScore: 80},
		{Symbol: "AAPL", Date: day, SwingScore: 70},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("AAPL"), msgs[1].Key)
	ev := msgs[1].Value.(ResultEvent)
	assert.Equal(t, EventScore, ev.Type)
	assert.Equal(t, 2, ev.Rank)
	assert.Equal(t, "2024-06-03", ev.Date)
}

func TestSignalMessage(t *testing.T) {
	m := SignalMessage(models.SignalResult{Date: day, CurrentSymbol: "AAPL"})

	assert.Equal(t, []byte("AAPL"), m.Key)
	assert.Equal(t, EventSignal, m.Value.(ResultEvent).Type)
}

type stubSink struct {
	calls int
	err   error
}

func (s *stubSink) StoreFeatures(context.Context, []models.FeatureSet) error {
	s.calls++
	return s.err
}

func (s *stubSink) StoreScores(context.Context, []models.ScoreResult) error {
	s.calls++
	return s.err
}

func (s *stubSink) StoreSignal(context.Context, *models.SignalResult) error {
	s.calls++
	return s.err
}

func (s *stubSink) Close() error { return nil }

func TestFanoutSink_ContinuesPastFailures(t *testing.T) {
	broken := &stubSink{err: errors.New("broker unavailable")}
	ok := &stubSink{}
	f := NewFanoutSink(broken, nil, ok)

	err := f.StoreScores(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, ok.calls)
	assert.NoError(t, NewFanoutSink(ok).StoreSignal(context.Background(), nil))
}
