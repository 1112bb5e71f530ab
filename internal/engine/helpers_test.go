package engine_test

import (
	"context"
	"sync"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu      sync.Mutex
	calls   []string
	batches [][]model.Reminder
}

func (n *recordingNotifier) CancelReminders(_ context.Context, namespace string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, "cancel:"+namespace)
	return nil
}

func (n *recordingNotifier) ScheduleReminders(_ context.Context, reminders []model.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, "schedule")
	n.batches = append(n.batches, reminders)
	return nil
}

type recordingDeliverer struct {
	mu  sync.Mutex
	got []model.Reminder
}

func (d *recordingDeliverer) Deliver(_ context.Context, r model.Reminder) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, r)
	return nil
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func testProfile() model.Profile {
	return model.Profile{
		WeightKg:          75,
		Activity:          model.ActivityLow,
		Units:             model.UnitsMetric,
		RemindersEnabled:  true,
		WakeMinute:        7 * 60,
		SleepMinute:       22 * 60,
		AdaptiveReminders: true,
	}
}

func entry(id string, when time.Time, ml int) model.IntakeEntry {
	return model.IntakeEntry{ID: id, At: when, VolumeML: ml, Source: model.SourceManual}
}

func unlockedIDs(list []model.Achievement) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, a := range list {
		out[a.ID] = true
	}
	return out
}
