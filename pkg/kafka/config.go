package kafka

import "time"

// Config is the kafka section of the service configuration.
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
	ResultsTopic string        `yaml:"results_topic" default:"swing.results"`
	TriggerTopic string        `yaml:"trigger_topic"`
	ErrorsTopic  string        `yaml:"errors_topic"`
	DLQTopic     string        `yaml:"dlq_topic"`
	GroupID      string        `yaml:"group_id" default:"swing-trader"`
	RequiredAcks int           `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd none"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
	BatchSize    int           `yaml:"batch_size" default:"100" validate:"gte=1"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"200ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

// withFallbacks fills writer settings left at zero by callers that build a
// Config by hand instead of loading it.
func (c Config) withFallbacks() Config {
	if c.Compression == "" {
		c.Compression = "gzip"
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 200 * time.Millisecond
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}
