package clickhouse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(Config{
		Host:             "ch.local",
		Port:             9000,
		Database:         "swing",
		User:             "trader",
		Password:         "p@ss:word",
		DialTimeout:      5 * time.Second,
		MaxExecutionTime: 90 * time.Second,
		AsyncInsert:      true,
		WaitForAsync:     true,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch.local:9000", u.Host)
	assert.Equal(t, "/swing", u.Path)
	assert.Equal(t, "trader", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss:word", pw)
	assert.Equal(t, "5s", u.Query().Get("dial_timeout"))
	assert.Equal(t, "90", u.Query().Get("max_execution_time"))
	assert.Equal(t, "1", u.Query().Get("async_insert"))
	assert.Equal(t, "1", u.Query().Get("wait_for_async_insert"))
}

func TestBuildDSNHTTPWithoutCredentials(t *testing.T) {
	u, err := url.Parse(buildDSN(Config{Host: "ch", Port: 8123, Database: "default", UseHTTP: true}))
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Nil(t, u.User)
	assert.Empty(t, u.RawQuery)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(Config{}, WithDatabase("swing"))
	assert.Error(t, err)
}

func TestConfigFallbacksAndOptions(t *testing.T) {
	cfg := Config{Host: "ch"}
	for _, opt := range []ClientOption{WithPool(12, 0), WithDatabase("swing")} {
		opt(&cfg)
	}
	cfg = cfg.withFallbacks()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "swing", cfg.Database)
	assert.Equal(t, 12, cfg.MaxOpenConns)
	assert.Equal(t, 6, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}
