package clickhouse

import "time"

// Config describes the ClickHouse database holding bars, snapshots and run results.
// It is embedded as the clickhouse section of the application config.
type Config struct {
	Host             string        `yaml:"host" validate:"required"`
	Port             int           `yaml:"port" default:"9000" validate:"gt=0,lte=65535"`
	Database         string        `yaml:"database" default:"swing" validate:"required"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
	MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
	ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime" default:"5m"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	InitSchema       bool          `yaml:"init_schema"`
}

// withFallbacks fills the pool and timeout settings left at zero by callers
// that build a Config by hand.
func (c Config) withFallbacks() Config {
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.Database == "" {
		c.Database = "default"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = c.MaxOpenConns / 2
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	return c
}

// ClientOption adjusts a Config after it is loaded.
type ClientOption func(*Config)

// WithPool sizes the connection pool, typically to the pipeline worker count.
func WithPool(maxOpen, maxIdle int) ClientOption {
	return func(c *Config) {
		if maxOpen > 0 {
			c.MaxOpenConns = maxOpen
		}
		if maxIdle > 0 {
			c.MaxIdleConns = maxIdle
		}
	}
}

// WithDatabase overrides the database name.
func WithDatabase(database string) ClientOption {
	return func(c *Config) {
		c.Database = database
	}
}
