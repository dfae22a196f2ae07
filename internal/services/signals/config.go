package signals

import (
	"fmt"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Config holds the rotation threshold and the asymmetry cutoffs.
type Config struct {
	// RotateThreshold is the score gap, in points, required before tax costs are added.
	RotateThreshold float64 `yaml:"rotate_threshold" default:"8" validate:"gte=0"`
	AsymmetryNone   float64 `yaml:"asymmetry_none" default:"2.0" validate:"gt=0"`
	AsymmetryWatch  float64 `yaml:"asymmetry_watch" default:"1.2" validate:"gt=0"`
	AsymmetrySell   float64 `yaml:"asymmetry_sell" default:"0.8" validate:"gt=0"`
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		RotateThreshold: 8,
		AsymmetryNone:   2.0,
		AsymmetryWatch:  1.2,
		AsymmetrySell:   0.8,
	}
}

// Validate requires positive, strictly descending cutoffs.
func (c Config) Validate() error {
	if c.RotateThreshold < 0 {
		return fmt.Errorf("%w: rotate threshold is negative", models.ErrConfiguration)
	}
	if c.AsymmetrySell <= 0 {
		return fmt.Errorf("%w: asymmetry sell cutoff must be positive", models.ErrConfiguration)
	}
	if !(c.AsymmetryNone > c.AsymmetryWatch && c.AsymmetryWatch > c.AsymmetrySell) {
		return fmt.Errorf("%w: asymmetry cutoffs must descend none > watch > sell, got %.2f/%.2f/%.2f",
			models.ErrConfiguration, c.AsymmetryNone, c.AsymmetryWatch, c.AsymmetrySell)
	}
	return nil
}
