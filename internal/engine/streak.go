package engine

import (
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

// RecomputeStreak derives the streak from the latest entry and the previously
// recorded streak day. Deleting the newest entry shrinks the streak on the
// next call instead of needing an explicit decrement.
func RecomputeStreak(prev model.Streak, entries []model.IntakeEntry, loc *time.Location) model.Streak {
	last, ok := latestEntry(entries)
	if !ok {
		return model.Streak{Longest: prev.Longest}
	}
	lastDay := DayKey(last.At, loc)

	next := prev
	switch {
	case prev.LastDay == "" || prev.Count <= 0:
		next.Count = 1
	case lastDay == prev.LastDay:
		// same day re-entry
	case prev.LastDay == previousDay(lastDay):
		next.Count = prev.Count + 1
	default:
		next.Count = 1
	}
	next.LastDay = lastDay
	if next.Count > next.Longest {
		next.Longest = next.Count
	}
	return next
}
