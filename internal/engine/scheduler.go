package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

const (
	// DefaultNamespace prefixes every reminder id this engine produces so a
	// pass can cancel its own previous batch and nothing else.
	DefaultNamespace = "hydrate.reminder"

	remindersPerDay     = 8
	minInterval         = 60 * time.Minute
	maxInterval         = 150 * time.Minute
	maxRemindersPerPass = 12
	fixedSlotsPerDay    = 8
	minutesPerDay       = 24 * 60
)

// PassInput is everything a scheduling pass depends on. Two passes over equal
// inputs produce equal reminders.
type PassInput struct {
	Profile   model.Profile
	Entries   []model.IntakeEntry
	GoalML    int
	Now       time.Time
	Namespace string
}

// nominal is the clock time a slot was planned for. A catch-up slot fires
// now but keeps its nominal time, so repeated passes over the same anchor
// produce the same reminder id.
type slot struct {
	at       time.Time
	nominal  time.Time
	imminent bool
}

// awakeWindow returns wake and sleep as minutes since midnight. A sleep time
// at or before wake is read as midnight.
func awakeWindow(p model.Profile) (int, int) {
	wake := p.WakeMinute
	if wake < 0 || wake >= minutesPerDay {
		wake = 0
	}
	sleep := p.SleepMinute
	if sleep <= wake || sleep > minutesPerDay {
		sleep = minutesPerDay
	}
	return wake, sleep
}

// BaseInterval spreads roughly eight reminders over the awake window, clamped
// so very short or very long days keep a sane cadence.
func BaseInterval(p model.Profile) time.Duration {
	wake, sleep := awakeWindow(p)
	interval := time.Duration(sleep-wake) * time.Minute / remindersPerDay
	if interval < minInterval {
		return minInterval
	}
	if interval > maxInterval {
		return maxInterval
	}
	return interval
}

// lastAnchor is the most recent entry today, or today's wake time.
func lastAnchor(in PassInput) time.Time {
	wake, _ := awakeWindow(in.Profile)
	anchor := atMinute(in.Now, wake)
	today := DayKey(in.Now, in.Now.Location())
	found := false
	var latest time.Time
	for _, e := range in.Entries {
		if DayKey(e.At, in.Now.Location()) != today {
			continue
		}
		at := e.At.In(in.Now.Location())
		if !found || at.After(latest) {
			latest = at
			found = true
		}
	}
	if found {
		return latest
	}
	return anchor
}

// QuietFor is how long the user has gone without logging today.
func QuietFor(in PassInput) time.Duration {
	d := in.Now.Sub(lastAnchor(in))
	if d < 0 {
		return 0
	}
	return d
}

func adaptiveSlots(in PassInput) []slot {
	if !in.Profile.RemindersEnabled {
		return nil
	}
	wake, sleep := awakeWindow(in.Profile)
	if minuteOfDay(in.Now) >= sleep {
		return nil
	}
	if TodayTotal(in.Entries, in.Now) >= in.GoalML {
		return nil
	}
	interval := BaseInterval(in.Profile)
	wakeAt := atMinute(in.Now, wake)
	sleepAt := atMinute(in.Now, 0).Add(time.Duration(sleep) * time.Minute)

	next := lastAnchor(in).Add(interval)
	if next.Before(wakeAt) {
		next = wakeAt
	}
	out := make([]slot, 0, maxRemindersPerPass)
	if !next.After(in.Now) {
		out = append(out, slot{at: in.Now, nominal: next, imminent: true})
		next = in.Now.Add(interval)
	}
	for len(out) < maxRemindersPerPass && next.Before(sleepAt) {
		out = append(out, slot{at: next, nominal: next})
		next = next.Add(interval)
	}
	return out
}

// SchedulePass computes the adaptive batch for the rest of today. A first
// candidate that is already overdue is collapsed to now and marked imminent
// rather than skipped. The text source is asked once per pass and its answer
// shared by every slot.
func SchedulePass(ctx context.Context, in PassInput, picker *MessagePicker) []model.Reminder {
	slots := adaptiveSlots(in)
	if len(slots) == 0 {
		return nil
	}
	if picker == nil {
		picker = NewMessagePicker(nil, 0)
	}
	today := TodayTotal(in.Entries, in.Now)
	band := BandFor(today, in.GoalML)
	generated := picker.generate(ctx, promptFor(in, today, band, 0, false))
	out := make([]model.Reminder, 0, len(slots))
	for i, s := range slots {
		title, body := picker.compose(promptFor(in, today, band, i, false), generated)
		out = append(out, model.Reminder{
			ID:       slotID(in, s),
			FireAt:   s.at,
			Imminent: s.imminent,
			Title:    title,
			Body:     body,
			Band:     band,
			Mode:     model.ReminderAdaptive,
		})
	}
	return out
}

// FixedSchedule is the clock-driven mode: the awake window split into evenly
// spaced times starting at wake, regardless of intake.
func FixedSchedule(p model.Profile) []int {
	wake, sleep := awakeWindow(p)
	step := (sleep - wake) / fixedSlotsPerDay
	if step <= 0 {
		step = 1
	}
	out := make([]int, 0, fixedSlotsPerDay)
	for i := 0; i < fixedSlotsPerDay; i++ {
		minute := wake + i*step
		if minute >= sleep {
			break
		}
		out = append(out, minute)
	}
	return out
}

// FixedPass emits today's fixed slots still ahead of now.
func FixedPass(in PassInput, picker *MessagePicker) []model.Reminder {
	return fixedFrom(in, picker, in.Now)
}

func fixedFrom(in PassInput, picker *MessagePicker, after time.Time) []model.Reminder {
	if !in.Profile.RemindersEnabled {
		return nil
	}
	out := make([]model.Reminder, 0, fixedSlotsPerDay)
	for i, minute := range FixedSchedule(in.Profile) {
		at := atMinute(in.Now, minute)
		if !at.After(after) {
			continue
		}
		title, body := picker.PickFixed(i)
		out = append(out, model.Reminder{
			ID:     reminderID(in, i),
			FireAt: at,
			Title:  title,
			Body:   body,
			Mode:   model.ReminderFixed,
		})
	}
	return out
}

// Plan dispatches to the profile's reminder mode.
func Plan(ctx context.Context, in PassInput, picker *MessagePicker) []model.Reminder {
	if in.Profile.AdaptiveReminders {
		return SchedulePass(ctx, in, picker)
	}
	return FixedPass(in, picker)
}

func promptFor(in PassInput, today int, band model.ProgressBand, index int, escalation bool) Prompt {
	remaining := in.GoalML - today
	if remaining < 0 {
		remaining = 0
	}
	return Prompt{
		Band:        band,
		TodayML:     today,
		GoalML:      in.GoalML,
		RemainingML: remaining,
		Escalation:  escalation,
		Index:       index,
	}
}

func namespaceFor(in PassInput) string {
	if in.Namespace == "" {
		return DefaultNamespace
	}
	return in.Namespace
}

// reminderID names fixed-mode slots by their index in the day.
func reminderID(in PassInput, index int) string {
	return fmt.Sprintf("%s.%s.%02d", namespaceFor(in), DayKey(in.Now, in.Now.Location()), index)
}

// slotID names adaptive slots by their planned HHMM. Slots are at least an
// hour apart, so the minute is unique within a day.
func slotID(in PassInput, s slot) string {
	t := s.nominal.In(in.Now.Location())
	return fmt.Sprintf("%s.%s.%02d%02d", namespaceFor(in), DayKey(in.Now, in.Now.Location()), t.Hour(), t.Minute())
}
