// Package universe builds the set of symbols eligible for a pipeline run.
package universe

import (
	"sort"
	"strings"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Exclusion reasons recorded in Universe.Excluded.
const (
	ReasonDisabled     = "disabled"
	ReasonHardExcluded = "hard-excluded: DEFENSE_PRIMARY"
)

// Filter returns the enabled, non DEFENSE_PRIMARY symbols of classes, sorted.
// A symbol listed more than once is hard-excluded if any of its rows is DEFENSE_PRIMARY.
func Filter(classes []models.TickerClass) models.Universe {
	u := models.Universe{
		Symbols:      []string{},
		Excluded:     make(map[string]string),
		HardExcluded: make(map[string]struct{}),
	}

	enabled := make(map[string]bool, len(classes))
	for _, c := range classes {
		sym := Normalize(c.Symbol)
		if sym == "" {
			continue
		}
		if c.Classification == models.DefensePrimary {
			u.HardExcluded[sym] = struct{}{}
		}
		if c.Enabled {
			enabled[sym] = true
		} else if _, seen := enabled[sym]; !seen {
			enabled[sym] = false
		}
	}

	for sym, on := range enabled {
		switch {
		case u.IsHardExcluded(sym):
			u.Excluded[sym] = ReasonHardExcluded
		case !on:
			u.Excluded[sym] = ReasonDisabled
		default:
			u.Symbols = append(u.Symbols, sym)
		}
	}
	sort.Strings(u.Symbols)
	return u
}

// Normalize upper-cases and trims a ticker symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
