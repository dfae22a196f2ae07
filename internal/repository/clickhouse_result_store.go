package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	domrepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
	pkgch "github.com/neelpatelshah/swing-trader/pkg/clickhouse"
)

// insertChunk caps rows per multi-row INSERT.
const insertChunk = 2000

var (
	featureColumns = []string{
		"symbol", "date", "sma20", "sma50", "sma200", "rsi14", "atr14", "rs_vs_spy",
		"news_sentiment_7d", "news_sentiment_30d", "tail_risk_score_14d", "catalyst_momentum",
		"earnings_within_5d", "earnings_within_10d", "warnings",
	}
	scoreColumns = []string{
		"symbol", "date", "rank", "swing_score", "components", "top_reasons", "warnings", "projection",
	}
	signalColumns = []string{
		"date", "current_symbol", "sell_signal_level", "rotate_recommendation", "rotate_to_symbol",
		"asymmetry", "explain", "tax_impact",
	}
)

// CHResultStore writes run outputs to ClickHouse. Rows are keyed by (symbol, date) so re-runs replace.
type CHResultStore struct {
	db       *sql.DB
	database string
}

func NewCHResultStore(ch *pkgch.Client, database string) *CHResultStore {
	return &CHResultStore{db: ch.DB(), database: database}
}

func (s *CHResultStore) StoreFeatures(ctx context.Context, features []models.FeatureSet) error {
	rows := make([][]interface{}, 0, len(features))
	for _, f := range features {
		rows = append(rows, FeatureRow(f))
	}
	return s.insert(ctx, TableFeatures, featureColumns, rows)
}

// StoreScores expects leaderboard order; the position is stored as rank starting at 1.
func (s *CHResultStore) StoreScores(ctx context.Context, scores []models.ScoreResult) error {
	rows := make([][]interface{}, 0, len(scores))
	for i, r := range scores {
		row, err := ScoreRow(r, i+1)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return s.insert(ctx, TableScores, scoreColumns, rows)
}

func (s *CHResultStore) StoreSignal(ctx context.Context, signal *models.SignalResult) error {
	if signal == nil {
		return nil
	}
	row, err := SignalRow(*signal)
	if err != nil {
		return err
	}
	return s.insert(ctx, TableSignals, signalColumns, [][]interface{}{row})
}

func (s *CHResultStore) Close() error {
	return nil // connection pool is owned by pkg/clickhouse
}

func (s *CHResultStore) insert(ctx context.Context, table string, cols []string, rows [][]interface{}) error {
	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		q, args := BuildInsert(s.database+"."+table, cols, rows[start:end])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

// BuildInsert renders a multi-row INSERT with positional placeholders. It returns an
// empty query when rows is empty.
func BuildInsert(table string, cols []string, rows [][]interface{}) (string, []interface{}) {
	if len(rows) == 0 {
		return "", nil
	}
	tuple := "(" + placeholders(len(cols)) + ")"
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*len(cols))
	for _, r := range rows {
		values = append(values, tuple)
		args = append(args, r...)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), strings.Join(values, ","))
	return q, args
}

// FeatureRow flattens a feature set in featureColumns order. Nil indicators stay NULL.
func FeatureRow(f models.FeatureSet) []interface{} {
	warnings := f.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return []interface{}{
		f.Symbol, f.Date,
		nullable(f.SMA20), nullable(f.SMA50), nullable(f.SMA200),
		nullable(f.RSI14), nullable(f.ATR14), nullable(f.RSVsSPY),
		f.NewsSentiment7d, f.NewsSentiment30d, f.TailRiskScore14d, f.CatalystMomentum,
		boolToUInt8(f.EarningsWithin5d), boolToUInt8(f.EarningsWithin10d),
		warnings,
	}
}

// ScoreRow flattens a score in scoreColumns order; nested values are stored as JSON.
func ScoreRow(r models.ScoreResult, rank int) ([]interface{}, error) {
	components, err := json.Marshal(r.Components)
	if err != nil {
		return nil, fmt.Errorf("marshal components %s: %w", r.Symbol, err)
	}
	projection, err := json.Marshal(r.Projection)
	if err != nil {
		return nil, fmt.Errorf("marshal projection %s: %w", r.Symbol, err)
	}
	return []interface{}{
		r.Symbol, r.Date, uint32(rank), r.SwingScore, string(components),
		nonNil(r.TopReasons), nonNil(r.Warnings), string(projection),
	}, nil
}

// SignalRow flattens a signal in signalColumns order.
func SignalRow(s models.SignalResult) ([]interface{}, error) {
	explain, err := json.Marshal(s.Explain)
	if err != nil {
		return nil, fmt.Errorf("marshal explain: %w", err)
	}
	impact, err := json.Marshal(s.TaxImpact)
	if err != nil {
		return nil, fmt.Errorf("marshal tax impact: %w", err)
	}
	return []interface{}{
		s.Date, s.CurrentSymbol, string(s.SellSignalLevel), string(s.RotateRecommendation),
		s.RotateToSymbol, s.Explain.Asymmetry, string(explain), string(impact),
	}, nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

var _ domrepo.ResultSink = (*CHResultStore)(nil)
