package engine

import (
	"sort"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

const dayLayout = "2006-01-02"

// DayKey is the calendar day of t in loc. All day comparisons in the engine
// go through it so exact times never leak into same-day checks.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

func previousDay(day string) string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dayLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func atMinute(day time.Time, minute int) time.Time {
	start := startOfDay(day)
	return time.Date(start.Year(), start.Month(), start.Day(), minute/60, minute%60, 0, 0, start.Location())
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// TodayTotal sums entries on now's calendar day.
func TodayTotal(entries []model.IntakeEntry, now time.Time) int {
	today := DayKey(now, now.Location())
	total := 0
	for _, e := range entries {
		if DayKey(e.At, now.Location()) == today {
			total += e.VolumeML
		}
	}
	return total
}

func entriesOnDay(entries []model.IntakeEntry, day string, loc *time.Location) []model.IntakeEntry {
	out := make([]model.IntakeEntry, 0)
	for _, e := range entries {
		if DayKey(e.At, loc) == day {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []model.IntakeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})
}

func latestEntry(entries []model.IntakeEntry) (model.IntakeEntry, bool) {
	if len(entries) == 0 {
		return model.IntakeEntry{}, false
	}
	last := entries[0]
	for _, e := range entries[1:] {
		if e.At.After(last.At) {
			last = e
		}
	}
	return last, true
}

func cloneEntries(entries []model.IntakeEntry) []model.IntakeEntry {
	out := make([]model.IntakeEntry, len(entries))
	copy(out, entries)
	return out
}
