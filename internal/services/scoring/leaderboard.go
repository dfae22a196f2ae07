package scoring

import (
	"sort"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
)

// Leaderboard sorts scores descending by swing score, ties by symbol. The input is not modified.
func Leaderboard(scores []models.ScoreResult) []models.ScoreResult {
	out := make([]models.ScoreResult, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SwingScore != out[j].SwingScore {
			return out[i].SwingScore > out[j].SwingScore
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
