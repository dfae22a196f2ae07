package usecase

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	"github.com/neelpatelshah/swing-trader/internal/services/features"
	"github.com/neelpatelshah/swing-trader/internal/services/scoring"
	"github.com/neelpatelshah/swing-trader/internal/services/signals"
	"github.com/neelpatelshah/swing-trader/internal/services/tax"
)

// PipelineConfig is the engine section of the application config.
type PipelineConfig struct {
	Benchmark string `yaml:"benchmark" default:"SPY" validate:"required"`
	Workers   int    `yaml:"workers" default:"8" validate:"gte=1,lte=256"`
	// SymbolTimeout bounds phase-1 work per symbol; zero disables the deadline.
	SymbolTimeout time.Duration `yaml:"symbol_timeout"`
	LockTTL       time.Duration `yaml:"lock_ttl" default:"30m" validate:"gt=0"`
	BarLookback   int           `yaml:"bar_lookback" default:"260" validate:"gte=21"`

	Scoring scoring.Config `yaml:"scoring"`
	Signals signals.Config `yaml:"signals"`
	Tax     tax.Rates      `yaml:"tax"`
}

// DefaultPipelineConfig returns the reference configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Benchmark:   "SPY",
		Workers:     8,
		LockTTL:     30 * time.Minute,
		BarLookback: features.DefaultBarLookback,
		Scoring:     scoring.DefaultConfig(),
		Signals:     signals.DefaultConfig(),
		Tax:         tax.DefaultRates(),
	}
}

var configValidator = validator.New()

// Validate checks field constraints and then each engine's own rules.
func (c PipelineConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if err := c.Signals.Validate(); err != nil {
		return err
	}
	return c.Tax.Validate()
}
