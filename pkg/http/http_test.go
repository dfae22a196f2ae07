package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Mode string `json:"mode" default:"full" validate:"oneof=full dry"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name      string
		body      string
		wantCodes []string
		wantField string
	}{
		{name: "valid", body: `{"date":"2024-06-03"}`},
		{name: "missing date", body: `{}`, wantCodes: []string{"ERR_REQUIRED"}, wantField: "date"},
		{name: "bad layout", body: `{"date":"06/03/2024"}`, wantCodes: []string{"ERR_DATETIME"}, wantField: "date"},
		{name: "bad mode", body: `{"date":"2024-06-03","mode":"x"}`, wantCodes: []string{"ERR_ONEOF"}, wantField: "mode"},
		{name: "malformed", body: `{`, wantCodes: []string{"ERR_BIND"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())

			var r runRequest
			errs := ReadAndValidateRequest(c, &r)
			if len(tt.wantCodes) == 0 {
				require.Empty(t, errs)
				assert.Equal(t, "full", r.Mode)
				return
			}
			require.Len(t, errs, len(tt.wantCodes))
			assert.Equal(t, tt.wantCodes[0], errs[0].Code)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, errs[0].Field)
			}
		})
	}
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, ConflictError("run in progress")))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_CONFLICT")

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method: MethodPost,
		URL:    srv.URL,
		Body:   map[string]string{"date": "2024-06-03"},
	}, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "slow down", se.Body)
	assert.True(t, se.Retryable())
	assert.False(t, (&StatusError{Code: http.StatusNotFound}).Retryable())
}

func TestHealthz(t *testing.T) {
	srv := NewServer(nil,
		WithHealthCheck("redis", func(context.Context) error { return nil }),
		WithHealthCheck("clickhouse", func(context.Context) error { return errors.New("down") }),
		WithMetricsPath(""),
	)

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"clickhouse":"down"`)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)
}
