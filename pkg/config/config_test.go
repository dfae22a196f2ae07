package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimal = `
clickhouse:
  host: ch.local
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 5*time.Minute, c.Server.WriteTimeout)
	assert.Equal(t, "swing", c.ClickHouse.Database)
	assert.Equal(t, "clickhouse", c.Semantic.Source)
	assert.Equal(t, "info", c.Logger.Level)
	assert.Equal(t, "swing.results", c.Kafka.ResultsTopic)
	assert.False(t, c.Kafka.Enabled)

	assert.Equal(t, "SPY", c.Engine.Benchmark)
	assert.Equal(t, 8, c.Engine.Workers)
	assert.Equal(t, 30.0, c.Engine.Scoring.Weights.Trend)
	assert.Equal(t, 8.0, c.Engine.Signals.RotateThreshold)
	assert.Equal(t, 0.37, c.Engine.Tax.ShortTerm)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	c, err := Load(writeConfig(t, minimal+`
engine:
  workers: 2
  signals:
    rotate_threshold: 0
  scoring:
    weights:
      trend: 40
      relative_strength: 20
      volatility: 15
      drawdown_risk: 15
      liquidity: 0
      catalyst: 10
`))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Engine.Workers)
	assert.Equal(t, 0.0, c.Engine.Signals.RotateThreshold)
	assert.Equal(t, 0.0, c.Engine.Scoring.Weights.Liquidity)
	assert.Equal(t, 40.0, c.Engine.Scoring.Weights.Trend)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing clickhouse host": `environment: development`,
		"bad environment":         minimal + "environment: qa\n",
		"http semantic without url": minimal + `
semantic:
  source: http
`,
		"kafka enabled without brokers": minimal + `
kafka:
  enabled: true
`,
		"trigger without kafka": minimal + `
kafka:
  trigger_topic: swing.trigger
`,
		"weights above 100": minimal + `
engine:
  scoring:
    weights:
      trend: 90
`,
		"asymmetry bands out of order": minimal + `
engine:
  signals:
    asymmetry_watch: 3
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestSemanticHTTPRequiresURLIsConfigurationError(t *testing.T) {
	_, err := Load(writeConfig(t, minimal+`
semantic:
  source: http
`))
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestApplyEnv(t *testing.T) {
	c, err := read(writeConfig(t, minimal))
	require.NoError(t, err)

	env := map[string]string{
		"SWING_ENV":         "production",
		"KAFKA_BROKERS":     "k1:9092, k2:9092",
		"REDIS_HOST":        "redis.internal",
		"REDIS_PORT":        "6380",
		"SEMANTIC_BASE_URL": "http://labels:8700",
		"ENGINE_WORKERS":    "16",
	}
	c.applyEnv(func(k string) string { return env[k] })
	require.NoError(t, c.Validate())

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, 6380, c.Redis.Port)
	assert.Equal(t, SemanticSourceHTTP, c.Semantic.Source)
	assert.Equal(t, 16, c.Engine.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
