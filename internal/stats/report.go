// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/boomero/internal/model"
	"github.com/verte-zerg/boomero/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Games   []model.GameRecord
	Turns   []model.TurnRecord
	Players [2]PlayerSummary
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	games, err := st.ListGames(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	turns, err := st.ListTurns(ctx, gameIDs(games))
	if err != nil {
		return Report{}, err
	}
	return Report{
		Games:   games,
		Turns:   turns,
		Players: SummarizePlayers(games, turns),
	}, nil
}

func gameIDs(games []model.GameRecord) []int64 {
	ids := make([]int64, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}
