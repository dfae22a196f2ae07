package features

import (
	"sort"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// RankRelativeStrength is the synchronization step of the feature pass. It must run
// after every symbol's phase-1 result is known, on a single goroutine.
//
// Ratios are ranked ascending with a stable sort, so equal ratios keep their input
// order, and each percentile rank/(count-1)*100 is written to RSVsSPY. Entries
// without a ratio are left untouched. A lone ranked entry gets 50.
func RankRelativeStrength(items []Computed) {
	idx := make([]int, 0, len(items))
	for i := range items {
		if items[i].HasRatio {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return
	}
	if len(idx) == 1 {
		items[idx[0]].Features.RSVsSPY = models.Float(50)
		return
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].Ratio < items[idx[b]].Ratio
	})
	denom := float64(len(idx) - 1)
	for rank, i := range idx {
		items[i].Features.RSVsSPY = models.Float(float64(rank) / denom * 100)
	}
}
