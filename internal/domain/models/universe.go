package models

// Classification is the defense-sector category of a ticker.
type Classification string

const (
	NonDefense       Classification = "NON_DEFENSE"
	DefenseSecondary Classification = "DEFENSE_SECONDARY"
	DefensePrimary   Classification = "DEFENSE_PRIMARY"
)

// TickerClass is one row of the ticker classification map.
type TickerClass struct {
	Symbol         string         `json:"symbol"`
	Classification Classification `json:"classification"`
	ManualOverride bool           `json:"manualOverride"`
	Enabled        bool           `json:"enabled"`
}

// Universe is the set of symbols eligible for evaluation on a date.
type Universe struct {
	Symbols  []string          `json:"symbols"`
	Excluded map[string]string `json:"excluded"` // symbol -> reason
	// HardExcluded holds every DEFENSE_PRIMARY symbol, enabled or not.
	HardExcluded map[string]struct{} `json:"-"`
}

// Contains reports whether symbol is eligible.
func (u *Universe) Contains(symbol string) bool {
	for _, s := range u.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// IsHardExcluded reports whether symbol is classified DEFENSE_PRIMARY.
func (u *Universe) IsHardExcluded(symbol string) bool {
	_, ok := u.HardExcluded[symbol]
	return ok
}

// Count returns the number of eligible symbols.
func (u *Universe) Count() int {
	return len(u.Symbols)
}
