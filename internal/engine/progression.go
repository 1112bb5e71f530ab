package engine

import (
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

// ApplyIntake advances quests for one new entry, then recomputes streak and
// achievements from the full history. It returns the achievements this call
// unlocked.
func ApplyIntake(state *model.GamificationState, entry model.IntakeEntry, todayTotal, goalML int, allEntries []model.IntakeEntry, now time.Time) []model.Achievement {
	loc := now.Location()
	if DayKey(entry.At, loc) == state.QuestDay {
		applyQuestProgress(state.Quests, entry.At.In(loc).Hour(), todayTotal, goalML)
	}
	return RecomputeHistory(state, todayTotal, goalML, allEntries, now)
}

// RecomputeHistory is the shared path for new, edited, deleted and synced
// entries.
func RecomputeHistory(state *model.GamificationState, todayTotal, goalML int, allEntries []model.IntakeEntry, now time.Time) []model.Achievement {
	loc := now.Location()
	state.Streak = RecomputeStreak(state.Streak, allEntries, loc)
	stats := NewStats(allEntries, todayTotal, goalML, state.Streak.Count, loc)
	var unlocked []model.Achievement
	state.Achievements, unlocked = EvaluateAchievements(state.Achievements, stats, now)
	return unlocked
}

func cloneState(s model.GamificationState) model.GamificationState {
	out := s
	out.Quests = make([]model.Quest, len(s.Quests))
	for i, q := range s.Quests {
		out.Quests[i] = q
		if q.DeadlineHour != nil {
			h := *q.DeadlineHour
			out.Quests[i].DeadlineHour = &h
		}
	}
	out.Achievements = make([]model.Achievement, len(s.Achievements))
	for i, a := range s.Achievements {
		out.Achievements[i] = a
		if a.UnlockedAt != nil {
			at := *a.UnlockedAt
			out.Achievements[i].UnlockedAt = &at
		}
	}
	return out
}
