package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	domrepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
	pkgch "github.com/neelpatelshah/swing-trader/pkg/clickhouse"
	applogger "github.com/neelpatelshah/swing-trader/pkg/logger"
)

// CHMarketStore reads bars, semantic snapshots, ticker classes and the holding from ClickHouse.
type CHMarketStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHMarketStore(ch *pkgch.Client, database string) *CHMarketStore {
	return &CHMarketStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketStore) table(name string) string {
	return s.database + "." + name
}

// GetBars returns the latest lookback bars dated on or before asOf, ascending.
func (s *CHMarketStore) GetBars(ctx context.Context, symbol string, asOf time.Time, lookback int) ([]models.Bar, error) {
	start := time.Now()
	const qtpl = `
        SELECT symbol, date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND date <= ?
        ORDER BY date DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table(TableDailyBars)), symbol, asOf, lookback)
	if err != nil {
		s.logError("get_bars query error", symbol, err)
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, lookback)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logError("get_bars scan error", symbol, err)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		s.logError("get_bars rows error", symbol, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	reverseBars(out)

	if s.l != nil {
		s.l.Debug("clickhouse get_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// GetSnapshots returns the snapshot of each symbol for date. Symbols without a row are absent.
func (s *CHMarketStore) GetSnapshots(ctx context.Context, symbols []string, date time.Time) (map[string]models.SemanticSnapshot, error) {
	out := make(map[string]models.SemanticSnapshot, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	q := fmt.Sprintf(`
        SELECT symbol, date, news_sentiment_7d, news_sentiment_30d, tail_risk_score_14d,
               catalyst_momentum, earnings_within_5d, earnings_within_10d
        FROM %s FINAL
        WHERE date = ? AND symbol IN (%s)
    `, s.table(TableSemantic), placeholders(len(symbols)))

	args := make([]interface{}, 0, len(symbols)+1)
	args = append(args, date)
	for _, sym := range symbols {
		args = append(args, sym)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.logError("get_snapshots query error", "", err)
		return nil, fmt.Errorf("get snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			snap      models.SemanticSnapshot
			e5d, e10d uint8
		)
		if err := rows.Scan(&snap.Symbol, &snap.Date, &snap.NewsSentiment7d, &snap.NewsSentiment30d,
			&snap.TailRiskScore14d, &snap.CatalystMomentum, &e5d, &e10d); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.EarningsWithin5d = e5d == 1
		snap.EarningsWithin10d = e10d == 1
		out[snap.Symbol] = snap
	}
	return out, rows.Err()
}

// ListTickers returns the latest classification row of every ticker.
func (s *CHMarketStore) ListTickers(ctx context.Context) ([]models.TickerClass, error) {
	q := fmt.Sprintf(`
        SELECT symbol, classification, manual_override, enabled
        FROM %s FINAL
        ORDER BY symbol
    `, s.table(TableTickers))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logError("list_tickers query error", "", err)
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()

	var out []models.TickerClass
	for rows.Next() {
		var (
			tc           models.TickerClass
			class        string
			override, on uint8
		)
		if err := rows.Scan(&tc.Symbol, &class, &override, &on); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		c, err := ParseClassification(class)
		if err != nil {
			return nil, fmt.Errorf("ticker %s: %w", tc.Symbol, err)
		}
		tc.Classification = c
		tc.ManualOverride = override == 1
		tc.Enabled = on == 1
		out = append(out, tc)
	}
	return out, rows.Err()
}

// GetHolding returns the most recently written holding, or nil when there is none.
func (s *CHMarketStore) GetHolding(ctx context.Context) (*models.Holding, error) {
	q := fmt.Sprintf(`
        SELECT symbol, entry_date, entry_price, shares
        FROM %s
        ORDER BY updated_at DESC
        LIMIT 1
    `, s.table(TableHoldings))

	var h models.Holding
	err := s.db.QueryRowContext(ctx, q).Scan(&h.Symbol, &h.EntryDate, &h.EntryPrice, &h.Shares)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logError("get_holding query error", "", err)
		return nil, fmt.Errorf("get holding: %w", err)
	}
	if h.Symbol == "" || h.Shares <= 0 {
		return nil, nil
	}
	return &h, nil
}

func (s *CHMarketStore) logError(msg, symbol string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse "+msg, applogger.String("symbol", symbol), applogger.Error(err))
}

// ParseClassification maps a stored classification onto the model constant.
func ParseClassification(v string) (models.Classification, error) {
	switch c := models.Classification(strings.ToUpper(strings.TrimSpace(v))); c {
	case models.NonDefense, models.DefenseSecondary, models.DefensePrimary:
		return c, nil
	default:
		return "", fmt.Errorf("unknown classification %q", v)
	}
}

func reverseBars(b []models.Bar) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var (
	_ domrepo.BarSource      = (*CHMarketStore)(nil)
	_ domrepo.SemanticSource = (*CHMarketStore)(nil)
	_ domrepo.TickerSource   = (*CHMarketStore)(nil)
	_ domrepo.HoldingSource  = (*CHMarketStore)(nil)
)
