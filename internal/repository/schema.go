package repository

import "fmt"

// Table names inside the configured database.
const (
	TableDailyBars = "daily_bars"
	TableSemantic  = "semantic_snapshots"
	TableTickers   = "tickers"
	TableHoldings  = "holdings"
	TableFeatures  = "feature_sets"
	TableScores    = "score_results"
	TableSignals   = "signal_results"
)

// SchemaStatements returns the idempotent DDL for database.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            symbol LowCardinality(String),
            date   Date,
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume Float64
        ) ENGINE = ReplacingMergeTree ORDER BY (symbol, date)`, database, TableDailyBars),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            symbol               LowCardinality(String),
            date                 Date,
            news_sentiment_7d    Float64,
            news_sentiment_30d   Float64,
            tail_risk_score_14d  Float64,
            catalyst_momentum    Float64,
            earnings_within_5d   UInt8,
            earnings_within_10d  UInt8
        ) ENGINE = ReplacingMergeTree ORDER BY (symbol, date)`, database, TableSemantic),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            symbol          String,
            classification  LowCardinality(String),
            manual_override UInt8,
            enabled         UInt8,
            updated_at      DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(updated_at) ORDER BY symbol`, database, TableTickers),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            symbol      String,
            entry_date  Date,
            entry_price Float64,
            shares      Float64,
            updated_at  DateTime DEFAULT now()
        ) ENGINE = MergeTree ORDER BY updated_at`, database, TableHoldings),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            symbol              LowCardinality(String),
            date                Date,
            sma20               Nullable(Float64),
            sma50               Nullable(Float64),
            sma200              Nullable(Float64),
            rsi14               Nullable(Float64),
            atr14               Nullable(Float64),
            rs_vs_spy           Nullable(Float64),
            news_sentiment_7d   Float64,
            news_sentiment_30d  Float64,
            tail_risk_score_14d Float64,
            catalyst_momentum   Float64,
            earnings_within_5d  UInt8,
            earnings_within_10d UInt8,
            warnings            Array(String)
        ) ENGINE = ReplacingMergeTree ORDER BY (symbol, date)`, database, TableFeatures),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            symbol      LowCardinality(String),
            date        Date,
            rank        UInt32,
            swing_score Float64,
            components  String,
            top_reasons Array(String),
            warnings    Array(String),
            projection  String
        ) ENGINE = ReplacingMergeTree ORDER BY (date, symbol)`, database, TableScores),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            date                  Date,
            current_symbol        String,
            sell_signal_level     LowCardinality(String),
            rotate_recommendation LowCardinality(String),
            rotate_to_symbol      String,
            asymmetry             Float64,
            explain               String,
            tax_impact            String
        ) ENGINE = ReplacingMergeTree ORDER BY date`, database, TableSignals),
	}
}
