package engine_test

import (
	"testing"
	"time"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
)

func TestStreakConsecutiveDaysAndReset(t *testing.T) {
	t.Parallel()
	var s model.Streak
	var entries []model.IntakeEntry
	for i, day := range []int{10, 11, 12} {
		entries = append(entries, entry(string(rune('a'+i)), at(day, 9, 0), 250))
		s = engine.RecomputeStreak(s, entries, time.UTC)
	}
	if s.Count != 3 || s.Longest != 3 || s.LastDay != "2026-03-12" {
		t.Fatalf("expected 3 day streak, got %+v", s)
	}

	entries = append(entries, entry("same-day", at(12, 18, 0), 300))
	s = engine.RecomputeStreak(s, entries, time.UTC)
	if s.Count != 3 {
		t.Fatalf("expected same-day entry to keep streak, got %+v", s)
	}

	entries = append(entries, entry("gap", at(14, 9, 0), 250))
	s = engine.RecomputeStreak(s, entries, time.UTC)
	if s.Count != 1 || s.Longest != 3 {
		t.Fatalf("expected reset to 1 after gap with longest 3, got %+v", s)
	}
}

func TestStreakClearsWithoutEntries(t *testing.T) {
	t.Parallel()
	s := engine.RecomputeStreak(model.Streak{Count: 4, Longest: 6, LastDay: "2026-03-10"}, nil, time.UTC)
	if s.Count != 0 || s.Longest != 6 || s.LastDay != "" {
		t.Fatalf("expected cleared streak keeping longest, got %+v", s)
	}
}

func TestRefreshDailyQuestsIdempotent(t *testing.T) {
	t.Parallel()
	var state model.GamificationState
	now := at(10, 8, 0)
	if !engine.RefreshDailyQuests(&state, 2400, now) {
		t.Fatalf("expected first refresh to build quests")
	}
	if len(state.Quests) != 3 || state.Quests[0].TargetML != 480 {
		t.Fatalf("unexpected quest list: %+v", state.Quests)
	}
	state.Quests[1].ProgressML = 900

	if engine.RefreshDailyQuests(&state, 3000, at(10, 20, 0)) {
		t.Fatalf("expected second refresh on same day to be a no-op")
	}
	if state.Quests[1].ProgressML != 900 || state.Quests[2].TargetML != 2400 {
		t.Fatalf("expected quests untouched, got %+v", state.Quests)
	}

	if !engine.RefreshDailyQuests(&state, 3000, at(11, 6, 0)) {
		t.Fatalf("expected new day to rebuild quests")
	}
	if state.QuestDay != "2026-03-11" || state.Quests[1].ProgressML != 0 || state.Quests[2].TargetML != 3000 {
		t.Fatalf("unexpected rebuilt quests: %+v", state)
	}
}

func TestQuestDeadlineFreezesProgress(t *testing.T) {
	t.Parallel()
	var state model.GamificationState
	now := at(10, 17, 0)
	engine.RefreshDailyQuests(&state, 2000, now)
	entries := []model.IntakeEntry{
		entry("a", at(10, 9, 0), 500),
		entry("b", at(10, 16, 30), 1200),
	}
	engine.ReplayQuests(&state, 2000, entries, now)

	early, midday, finish := state.Quests[0], state.Quests[1], state.Quests[2]
	if !early.Completed || early.ProgressML != 500 {
		t.Fatalf("expected early quest complete at 500, got %+v", early)
	}
	if midday.Completed || midday.ProgressML != 500 {
		t.Fatalf("expected midday quest frozen at 500, got %+v", midday)
	}
	if finish.Completed || finish.ProgressML != 1700 {
		t.Fatalf("expected finish-line at 1700, got %+v", finish)
	}
	if got := engine.QuestStatusAt(midday, state.QuestDay, now); got != model.QuestExpired {
		t.Fatalf("expected midday expired, got %s", got)
	}
	if got := engine.QuestStatusAt(finish, state.QuestDay, now); got != model.QuestPending {
		t.Fatalf("expected finish-line pending, got %s", got)
	}
}

func TestFinishLineCompletesAfterGoalDrops(t *testing.T) {
	t.Parallel()
	var state model.GamificationState
	now := at(10, 18, 0)
	engine.RefreshDailyQuests(&state, 2900, at(10, 7, 0))
	entries := []model.IntakeEntry{
		entry("a", at(10, 9, 0), 1500),
		entry("b", at(10, 17, 0), 1800),
	}
	unlocked := engine.ApplyIntake(&state, entries[0], 1500, 2400, entries[:1], at(10, 9, 0))
	if len(unlocked) == 0 {
		t.Fatalf("expected first intake to unlock achievements")
	}
	engine.ApplyIntake(&state, entries[1], 3300, 2400, entries, now)

	finish := state.Quests[2]
	if finish.TargetML != 2900 || !finish.Completed || finish.ProgressML != 2900 {
		t.Fatalf("expected finish-line complete at its own target, got %+v", finish)
	}
}

func TestAchievementsNeverRelock(t *testing.T) {
	t.Parallel()
	now := at(10, 9, 0)
	entries := []model.IntakeEntry{entry("a", at(10, 6, 30), 300)}
	stats := engine.NewStats(entries, 300, 2000, 1, time.UTC)
	list, unlocked := engine.EvaluateAchievements(nil, stats, now)
	if len(unlocked) != 2 || unlocked[0].ID != "first-sip" || unlocked[1].ID != "early-bird" {
		t.Fatalf("expected first-sip then early-bird, got %+v", unlocked)
	}

	empty := engine.NewStats(nil, 0, 2000, 0, time.UTC)
	list, unlocked = engine.EvaluateAchievements(list, empty, now.Add(time.Hour))
	if len(unlocked) != 0 {
		t.Fatalf("expected nothing newly unlocked, got %+v", unlocked)
	}
	for _, a := range list {
		if a.ID == "first-sip" && (!a.Unlocked || a.UnlockedAt == nil || !a.UnlockedAt.Equal(now)) {
			t.Fatalf("expected first-sip to stay unlocked at original time, got %+v", a)
		}
	}
}

func TestMergeCatalogKeepsUnknownIDs(t *testing.T) {
	t.Parallel()
	unlockedAt := at(1, 12, 0)
	persisted := []model.Achievement{
		{ID: "retired-badge", Title: "Old", Unlocked: true, UnlockedAt: &unlockedAt},
		{ID: "first-sip", Title: "stale title", Unlocked: true, UnlockedAt: &unlockedAt},
	}
	merged := engine.MergeCatalog(persisted)
	catalog := engine.Catalog()
	if len(merged) != len(catalog)+1 {
		t.Fatalf("expected %d achievements, got %d", len(catalog)+1, len(merged))
	}
	if merged[0].ID != "first-sip" || !merged[0].Unlocked || merged[0].Title != catalog[0].Title {
		t.Fatalf("expected first-sip unlocked with catalog title, got %+v", merged[0])
	}
	last := merged[len(merged)-1]
	if last.ID != "retired-badge" || !last.Unlocked {
		t.Fatalf("expected retired badge preserved at the end, got %+v", last)
	}
	for _, a := range merged[1:len(catalog)] {
		if a.Unlocked {
			t.Fatalf("expected %s locked", a.ID)
		}
	}
}

func TestGoalMetDaysUsesCurrentGoal(t *testing.T) {
	t.Parallel()
	entries := []model.IntakeEntry{
		entry("a", at(8, 9, 0), 1800),
		entry("b", at(9, 9, 0), 2200),
		entry("c", at(10, 9, 0), 2500),
	}
	if got := engine.NewStats(entries, 2500, 2000, 3, time.UTC).GoalMetDays(); got != 2 {
		t.Fatalf("expected 2 goal days at 2000 ml, got %d", got)
	}
	if got := engine.NewStats(entries, 2500, 2400, 3, time.UTC).GoalMetDays(); got != 1 {
		t.Fatalf("expected 1 goal day at 2400 ml, got %d", got)
	}
}
