// Package filter selects close games from a day's game records.
//
// A game is close when it is final and the absolute difference between the
// two scores is strictly below the margin threshold. Records that cannot be
// evaluated (missing or non-numeric scores, missing team names) are skipped
// one at a time and never abort the whole selection.
//
// Example usage:
//
//	f := filter.New(10)
//	matchups := f.FindCloseGames(records)
//	// ["Los Angeles Lakers v Boston Celtics"]
package filter

import (
	"fmt"

	"github.com/pfrederiksen/close-games/internal/game"
	"github.com/pfrederiksen/close-games/internal/logger"
)

// DefaultThreshold is the margin, in points, below which a final game is close
const DefaultThreshold = 10

// Filter holds the selection criteria
type Filter struct {
	// Threshold is exclusive: a game decided by exactly Threshold points is not close
	Threshold int
}

// New creates a filter with the given margin threshold.
// Non-positive values fall back to DefaultThreshold.
func New(threshold int) *Filter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Filter{Threshold: threshold}
}

// Matches reports whether a record is a close, completed game.
// It returns an error when the record cannot be evaluated.
func (f *Filter) Matches(r game.Record) (bool, error) {
	if r.Status() != game.StatusFinal {
		return false, nil
	}

	margin, err := r.Margin()
	if err != nil {
		return false, err
	}
	return margin < f.Threshold, nil
}

// FindCloseGames returns the matchups of all close games, in input order.
// The result is never nil.
func (f *Filter) FindCloseGames(records []game.Record) []game.Matchup {
	matchups := make([]game.Matchup, 0)

	for i, r := range records {
		ok, err := f.Matches(r)
		if err != nil {
			logger.IncrCounter("filter.skipped")
			logger.Debug("Skipping malformed game record", logger.Fields{
				"index":   i,
				"game_id": r.ID,
				"reason":  err.Error(),
			})
			continue
		}
		if !ok {
			continue
		}

		matchup, err := r.Matchup()
		if err != nil {
			logger.IncrCounter("filter.skipped")
			logger.Debug("Skipping game record without team names", logger.Fields{
				"index":   i,
				"game_id": r.ID,
			})
			continue
		}

		matchups = append(matchups, matchup)
	}

	logger.SetGauge("games.close", float64(len(matchups)))
	return matchups
}

// String returns a human-readable description of the criteria
func (f *Filter) String() string {
	return fmt.Sprintf("Final games decided by fewer than %d points", f.Threshold)
}
