package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

func TestFilter(t *testing.T) {
	classes := []models.TickerClass{
		{Symbol: "MSFT", Classification: models.NonDefense, Enabled: true},
		{Symbol: "aapl ", Classification: models.NonDefense, Enabled: true},
		{Symbol: "LMT", Classification: models.DefensePrimary, Enabled: true, ManualOverride: true},
		{Symbol: "HON", Classification: models.DefenseSecondary, Enabled: true},
		{Symbol: "GE", Classification: models.NonDefense, Enabled: false},
		{Symbol: "NOC", Classification: models.DefensePrimary, Enabled: false},
		{Symbol: "", Classification: models.NonDefense, Enabled: true},
	}

	u := Filter(classes)

	assert.Equal(t, []string{"AAPL", "HON", "MSFT"}, u.Symbols)
	assert.Equal(t, map[string]string{
		"LMT": ReasonHardExcluded,
		"NOC": ReasonHardExcluded,
		"GE":  ReasonDisabled,
	}, u.Excluded)
	assert.True(t, u.IsHardExcluded("LMT"))
	assert.True(t, u.IsHardExcluded("NOC"))
	assert.False(t, u.IsHardExcluded("HON"))
	assert.True(t, u.Contains("HON"))
	assert.False(t, u.Contains("LMT"))
	assert.Equal(t, 3, u.Count())
}

func TestFilter_DuplicateRowsStayHardExcluded(t *testing.T) {
	u := Filter([]models.TickerClass{
		{Symbol: "RTX", Classification: models.DefensePrimary, Enabled: true},
		{Symbol: "RTX", Classification: models.NonDefense, Enabled: true},
	})

	assert.Empty(t, u.Symbols)
	assert.Equal(t, ReasonHardExcluded, u.Excluded["RTX"])
}

func TestFilter_Empty(t *testing.T) {
	u := Filter(nil)

	assert.Empty(t, u.Symbols)
	assert.NotNil(t, u.Symbols)
	assert.Empty(t, u.Excluded)
}
