package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	"github.com/neelpatelshah/swing-trader/internal/service/ratelimit"
	xlogger "github.com/neelpatelshah/swing-trader/pkg/logger"
)

type fakeRunner struct {
	got time.Time
	res *models.RunResult
	err error
}

func (f *fakeRunner) Run(_ context.Context, date time.Time) (*models.RunResult, error) {
	f.got = date
	return f.res, f.err
}

func serve(t *testing.T, h *PipelineHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodPost, runRoute, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPipelineHandler_Run(t *testing.T) {
	runner := &fakeRunner{res: &models.RunResult{
		Summary:     models.RunSummary{RunID: "run-1", Universe: 3, Succeeded: 3},
		Leaderboard: []models.ScoreResult{{Symbol: "NVDA", SwingScore: 81}},
	}}
	h := NewPipelineHandler(xlogger.NewNop(), runner, nil)

	rec := serve(t, h, `{"date":"2024-06-03"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), runner.got)

	var body struct {
		Status int                        `json:"status"`
		Data   models.RunPipelineResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, "run-1", body.Data.Summary.RunID)
	require.Len(t, body.Data.Leaderboard, 1)
	assert.Equal(t, "NVDA", body.Data.Leaderboard[0].Symbol)
}

func TestPipelineHandler_DefaultsToLastWeekday(t *testing.T) {
	runner := &fakeRunner{res: &models.RunResult{}}
	h := NewPipelineHandler(xlogger.NewNop(), runner, nil)
	h.now = func() time.Time { return time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC) }

	rec := serve(t, h, `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Friday, runner.got.Weekday())
}

func TestPipelineHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		res      *models.RunResult
		err      error
		wantCode int
	}{
		{name: "bad date", body: `{"date":"03-06-2024"}`, wantCode: http.StatusBadRequest},
		{name: "in progress", body: `{"date":"2024-06-03"}`, res: &models.RunResult{Summary: models.RunSummary{RunID: "r", Skipped: true}}, err: models.ErrRunInProgress, wantCode: http.StatusConflict},
		{name: "upstream", body: `{"date":"2024-06-03"}`, err: models.ErrUpstreamUnavailable, wantCode: http.StatusServiceUnavailable},
		{name: "config", body: `{"date":"2024-06-03"}`, err: models.ErrConfiguration, wantCode: http.StatusInternalServerError},
		{name: "other", body: `{"date":"2024-06-03"}`, err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPipelineHandler(xlogger.NewNop(), &fakeRunner{res: tt.res, err: tt.err}, nil)
			rec := serve(t, h, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestPipelineHandler_RateLimited(t *testing.T) {
	h := NewPipelineHandler(xlogger.NewNop(), &fakeRunner{res: &models.RunResult{}}, ratelimit.New(1, 1))

	assert.Equal(t, http.StatusOK, serve(t, h, `{"date":"2024-06-03"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(t, h, `{"date":"2024-06-03"}`).Code)
}
