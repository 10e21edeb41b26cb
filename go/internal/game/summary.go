package game

import (
	"sort"

	"github.com/mcdev12/botornot/go/internal/models"
)

// summary builds the leaderboard and awards from the current scores and
// stats. Ties keep the order in which players first scored.
func (g *gameState) summary() Summary {
	if len(g.scoreOrder) == 0 {
		return Summary{Empty: true}
	}

	leaderboard := make([]models.LeaderboardEntry, 0, len(g.scoreOrder))
	for _, playerID := range g.scoreOrder {
		leaderboard = append(leaderboard, models.LeaderboardEntry{PlayerID: playerID, Score: g.scores[playerID]})
	}
	sort.SliceStable(leaderboard, func(i, j int) bool {
		return leaderboard[i].Score > leaderboard[j].Score
	})

	high := leaderboard[0].Score
	low := leaderboard[len(leaderboard)-1].Score

	top := models.TopDetectiveAward{Players: []string{}}
	fooled := models.MostFooledAward{Players: []string{}, WrongGuesses: make(map[string]int)}
	for _, playerID := range g.scoreOrder {
		score := g.scores[playerID]
		stats := g.stats[playerID]
		if stats == nil {
			stats = &models.PlayerStats{}
		}
		if score == high {
			top.Players = append(top.Players, playerID)
			top.MaxStreak = max(top.MaxStreak, stats.MaxStreak)
		}
		if score == low {
			fooled.Players = append(fooled.Players, playerID)
			fooled.WrongGuesses[playerID] = stats.Wrong
		}
	}

	return Summary{
		Leaderboard: leaderboard,
		Awards:      models.Awards{TopDetective: top, MostFooled: fooled},
	}
}
