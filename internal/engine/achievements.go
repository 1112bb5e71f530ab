package engine

import (
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

// Stats is the aggregate view every achievement predicate reads. Goal-met
// days are judged against the current goal, not the goal that applied on
// that day.
type Stats struct {
	Entries      []model.IntakeEntry
	TodayTotalML int
	GoalML       int
	Streak       int

	loc       *time.Location
	dayTotals map[string]int
	totalML   int
}

func NewStats(entries []model.IntakeEntry, todayTotalML, goalML, streak int, loc *time.Location) Stats {
	if loc == nil {
		loc = time.Local
	}
	s := Stats{
		Entries:      entries,
		TodayTotalML: todayTotalML,
		GoalML:       goalML,
		Streak:       streak,
		loc:          loc,
		dayTotals:    make(map[string]int),
	}
	for _, e := range entries {
		s.dayTotals[DayKey(e.At, loc)] += e.VolumeML
		s.totalML += e.VolumeML
	}
	return s
}

func (s Stats) EntryCount() int { return len(s.Entries) }

func (s Stats) TotalVolumeML() int { return s.totalML }

func (s Stats) DistinctDays() int { return len(s.dayTotals) }

func (s Stats) GoalMetDays() int {
	if s.GoalML <= 0 {
		return 0
	}
	n := 0
	for _, total := range s.dayTotals {
		if total >= s.GoalML {
			n++
		}
	}
	return n
}

func (s Stats) anyEntryHour(match func(hour int) bool) bool {
	for _, e := range s.Entries {
		if match(e.At.In(s.loc).Hour()) {
			return true
		}
	}
	return false
}

type AchievementDef struct {
	ID          string
	Title       string
	Description string
	Unlocked    func(Stats) bool
}

const (
	earlyBirdBeforeHour = 7
	nightOwlFromHour    = 22
)

var catalog = []AchievementDef{
	{ID: "first-sip", Title: "First sip", Description: "Log your first drink",
		Unlocked: func(s Stats) bool { return s.EntryCount() > 0 }},
	{ID: "early-bird", Title: "Early bird", Description: "Log a drink before 7:00",
		Unlocked: func(s Stats) bool { return s.anyEntryHour(func(h int) bool { return h < earlyBirdBeforeHour }) }},
	{ID: "night-owl", Title: "Night owl", Description: "Log a drink at or after 22:00",
		Unlocked: func(s Stats) bool { return s.anyEntryHour(func(h int) bool { return h >= nightOwlFromHour }) }},
	{ID: "streak-3", Title: "Three in a row", Description: "Reach a 3 day streak", Unlocked: streakAtLeast(3)},
	{ID: "streak-7", Title: "Week of water", Description: "Reach a 7 day streak", Unlocked: streakAtLeast(7)},
	{ID: "streak-30", Title: "Monthly habit", Description: "Reach a 30 day streak", Unlocked: streakAtLeast(30)},
	{ID: "days-7", Title: "Regular", Description: "Log drinks on 7 different days",
		Unlocked: func(s Stats) bool { return s.DistinctDays() >= 7 }},
	{ID: "days-30", Title: "Devoted", Description: "Log drinks on 30 different days",
		Unlocked: func(s Stats) bool { return s.DistinctDays() >= 30 }},
	{ID: "goal-day", Title: "Goal getter", Description: "Meet your daily goal", Unlocked: goalDaysAtLeast(1)},
	{ID: "goal-days-7", Title: "Consistent", Description: "Meet your daily goal on 7 days", Unlocked: goalDaysAtLeast(7)},
	{ID: "goal-days-30", Title: "Well of willpower", Description: "Meet your daily goal on 30 days", Unlocked: goalDaysAtLeast(30)},
	{ID: "entries-10", Title: "Ten pours", Description: "Log 10 drinks",
		Unlocked: func(s Stats) bool { return s.EntryCount() >= 10 }},
	{ID: "entries-100", Title: "Century", Description: "Log 100 drinks",
		Unlocked: func(s Stats) bool { return s.EntryCount() >= 100 }},
	{ID: "volume-10l", Title: "Ten liters", Description: "Drink 10 liters in total",
		Unlocked: func(s Stats) bool { return s.TotalVolumeML() >= 10_000 }},
	{ID: "volume-100l", Title: "Reservoir", Description: "Drink 100 liters in total",
		Unlocked: func(s Stats) bool { return s.TotalVolumeML() >= 100_000 }},
}

func streakAtLeast(n int) func(Stats) bool {
	return func(s Stats) bool { return s.Streak >= n }
}

func goalDaysAtLeast(n int) func(Stats) bool {
	return func(s Stats) bool { return s.GoalMetDays() >= n }
}

func Catalog() []AchievementDef {
	out := make([]AchievementDef, len(catalog))
	copy(out, catalog)
	return out
}

// MergeCatalog lays persisted unlock state over the current catalog. Ids the
// catalog no longer knows are kept as-is after the catalog entries.
func MergeCatalog(persisted []model.Achievement) []model.Achievement {
	byID := make(map[string]model.Achievement, len(persisted))
	for _, a := range persisted {
		byID[a.ID] = a
	}
	known := make(map[string]struct{}, len(catalog))
	out := make([]model.Achievement, 0, len(catalog)+len(persisted))
	for _, def := range catalog {
		known[def.ID] = struct{}{}
		a := model.Achievement{ID: def.ID, Title: def.Title, Description: def.Description}
		if prev, ok := byID[def.ID]; ok && prev.Unlocked {
			a.Unlocked = true
			a.UnlockedAt = prev.UnlockedAt
		}
		out = append(out, a)
	}
	for _, a := range persisted {
		if _, ok := known[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

// EvaluateAchievements unlocks every catalog entry whose predicate holds and
// returns the updated list plus the newly unlocked ones in catalog order.
// Flags are never cleared.
func EvaluateAchievements(current []model.Achievement, stats Stats, now time.Time) ([]model.Achievement, []model.Achievement) {
	list := MergeCatalog(current)
	index := make(map[string]int, len(list))
	for i, a := range list {
		index[a.ID] = i
	}
	unlocked := make([]model.Achievement, 0)
	for _, def := range catalog {
		i := index[def.ID]
		if list[i].Unlocked || !def.Unlocked(stats) {
			continue
		}
		at := now
		list[i].Unlocked = true
		list[i].UnlockedAt = &at
		unlocked = append(unlocked, list[i])
	}
	return list, unlocked
}
