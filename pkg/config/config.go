package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	"github.com/neelpatelshah/swing-trader/internal/services/semantic"
	"github.com/neelpatelshah/swing-trader/internal/usecase"
	"github.com/neelpatelshah/swing-trader/pkg/cache"
	pkgch "github.com/neelpatelshah/swing-trader/pkg/clickhouse"
	pkgkafka "github.com/neelpatelshah/swing-trader/pkg/kafka"
	"github.com/neelpatelshah/swing-trader/pkg/logger"
	"github.com/neelpatelshah/swing-trader/pkg/util"
)

// Semantic snapshot sources.
const (
	SemanticSourceClickHouse = "clickhouse"
	SemanticSourceHTTP       = "http"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production"`
	Server      struct {
		Port             int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"5m"`
		ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" default:"30s"`
		TriggerPerMinute float64       `yaml:"trigger_per_minute" default:"6" validate:"gt=0"`
		TriggerBurst     int           `yaml:"trigger_burst" default:"2" validate:"gte=1"`
	} `yaml:"server"`
	Metrics struct {
		Path string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger     logger.Config   `yaml:"logger"`
	ClickHouse pkgch.Config    `yaml:"clickhouse"`
	Kafka      pkgkafka.Config `yaml:"kafka"`
	Redis      cache.Config    `yaml:"redis"`
	Semantic   struct {
		Source string          `yaml:"source" default:"clickhouse" validate:"oneof=clickhouse http"`
		HTTP   semantic.Config `yaml:"http"`
	} `yaml:"semantic"`
	Engine usecase.PipelineConfig `yaml:"engine"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file. Defaults are applied first
// so that values set explicitly in the file, zero included, win.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := &Config{Engine: usecase.DefaultPipelineConfig()}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SWING_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = len(c.Kafka.Brokers) > 0
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := getenv("REDIS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = p
		}
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("SEMANTIC_BASE_URL"); v != "" {
		c.Semantic.HTTP.BaseURL = v
		c.Semantic.Source = SemanticSourceHTTP
	}
	if v := getenv("ENGINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.Workers = n
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Semantic.Source == SemanticSourceHTTP && c.Semantic.HTTP.BaseURL == "" {
		return fmt.Errorf("%w: semantic.http.base_url is required when semantic.source is http", models.ErrConfiguration)
	}
	if c.Kafka.TriggerTopic != "" && !c.Kafka.Enabled {
		return fmt.Errorf("%w: kafka.trigger_topic needs kafka.enabled", models.ErrConfiguration)
	}
	return c.Engine.Validate()
}
