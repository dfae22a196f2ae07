// Package semantic fetches per-symbol news/LLM snapshots from the labeling service.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	domrepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
	"github.com/neelpatelshah/swing-trader/pkg/cache"
	xhttp "github.com/neelpatelshah/swing-trader/pkg/http"
	applogger "github.com/neelpatelshah/swing-trader/pkg/logger"
)

const snapshotsPath = "/v1/snapshots"

// Config configures the labeling service client.
type Config struct {
	BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout           time.Duration `yaml:"timeout" default:"5s"`
	Attempts          int           `yaml:"attempts" default:"3" validate:"gte=1"`
	Backoff           time.Duration `yaml:"backoff" default:"200ms"`
	RequestsPerSecond int           `yaml:"requests_per_second" default:"5" validate:"gte=1"`
	CacheTTL          time.Duration `yaml:"cache_ttl" default:"6h"`
}

type snapshotsRequest struct {
	Symbols []string `json:"symbols"`
	Date    string   `json:"date"`
}

type snapshotsResponse struct {
	Snapshots []models.SemanticSnapshot `json:"snapshots"`
}

// HTTPSource implements SemanticSource over the labeling service's JSON API.
type HTTPSource struct {
	baseURL  string
	client   *xhttp.Client
	limiter  *rate.Limiter
	attempts int
	backoff  time.Duration
	cache    cache.Service
	ttl      time.Duration
	l        *applogger.Logger
}

// Option customises an HTTPSource.
type Option func(*HTTPSource)

// WithCache serves repeated lookups for the same date from c.
func WithCache(c cache.Service) Option {
	return func(s *HTTPSource) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(s *HTTPSource) { s.l = l }
}

func NewHTTPSource(cfg Config, opts ...Option) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: semantic base_url is required", models.ErrConfiguration)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}

	s := &HTTPSource{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
		attempts: cfg.Attempts,
		backoff:  cfg.Backoff,
		ttl:      cfg.CacheTTL,
		l:        applogger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetSnapshots returns the snapshot of every symbol the service knows for date.
func (s *HTTPSource) GetSnapshots(ctx context.Context, symbols []string, date time.Time) (map[string]models.SemanticSnapshot, error) {
	out := make(map[string]models.SemanticSnapshot, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}
	day := date.Format(time.DateOnly)

	missing := s.fromCache(ctx, symbols, day, out)
	if len(missing) == 0 {
		return out, nil
	}

	var resp snapshotsResponse
	req := snapshotsRequest{Symbols: missing, Date: day}
	if err := s.postJSONWithRetry(ctx, snapshotsPath, req, &resp); err != nil {
		return nil, fmt.Errorf("fetch snapshots: %w", err)
	}

	fresh := make(map[string]any, len(resp.Snapshots))
	for _, snap := range resp.Snapshots {
		snap.Symbol = strings.ToUpper(strings.TrimSpace(snap.Symbol))
		out[snap.Symbol] = snap
		fresh[cacheKey(day, snap.Symbol)] = snap
	}
	if s.cache != nil && len(fresh) > 0 {
		if err := s.cache.MSet(ctx, fresh, s.ttl); err != nil {
			s.l.Warn("semantic cache write failed", applogger.Error(err))
		}
	}
	return out, nil
}

// fromCache fills out with cached snapshots and returns the symbols still missing.
func (s *HTTPSource) fromCache(ctx context.Context, symbols []string, day string, out map[string]models.SemanticSnapshot) []string {
	if s.cache == nil {
		return symbols
	}
	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = cacheKey(day, sym)
	}
	cached, err := cache.MGetTyped[models.SemanticSnapshot](ctx, s.cache, keys...)
	if err != nil {
		s.l.Warn("semantic cache read failed", applogger.Error(err))
		return symbols
	}

	missing := make([]string, 0, len(symbols))
	for i, sym := range symbols {
		if snap, ok := cached[keys[i]]; ok {
			out[sym] = snap
			continue
		}
		missing = append(missing, sym)
	}
	return missing
}

func (s *HTTPSource) postJSON(ctx context.Context, path string, payload, dest any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     s.baseURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// postJSONWithRetry retries transport errors, 429 and 5xx with a linear backoff.
// Any final failure surfaces as ErrUpstreamUnavailable.
func (s *HTTPSource) postJSONWithRetry(ctx context.Context, path string, payload, dest any) error {
	var err error
	for i := 1; i <= s.attempts; i++ {
		if err = s.postJSON(ctx, path, payload, dest); err == nil {
			return nil
		}
		s.l.Warn("semantic request failed",
			applogger.String("path", path),
			applogger.Int("attempt", i),
			applogger.Error(err))
		var se *xhttp.StatusError
		if i == s.attempts || (errors.As(err, &se) && !se.Retryable()) {
			break
		}
		select {
		case <-time.After(time.Duration(i) * s.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
}

func cacheKey(day, symbol string) string {
	return cache.GenerateKeyWithParams("semantic", day, symbol)
}

var _ domrepo.SemanticSource = (*HTTPSource)(nil)
