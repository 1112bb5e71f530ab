// Package engine computes hydration goals, advances quests, streaks and
// achievements as intake arrives, and decides when to remind the user.
//
// The Engine type is the only mutator of profile inputs, entries and
// gamification state. Every mutating call finishes its recomputation before
// the reminder pass runs, so reminders never see a stale total.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saadjs/hydrate-cli/internal/model"
)

var (
	// ErrInvalidVolume indicates an intake volume that is not positive.
	ErrInvalidVolume = errors.New("volume must be > 0")
	// ErrEntryNotFound indicates an entry id unknown to the engine.
	ErrEntryNotFound = errors.New("intake entry not found")
	// ErrDuplicateEntry indicates an entry id that is already logged.
	ErrDuplicateEntry = errors.New("intake entry already exists")
)

// Notifier is the pre-scheduled delivery boundary. CancelReminders must drop
// every pending reminder under namespace.
type Notifier interface {
	CancelReminders(ctx context.Context, namespace string) error
	ScheduleReminders(ctx context.Context, reminders []model.Reminder) error
}

type nopNotifier struct{}

func (nopNotifier) CancelReminders(context.Context, string) error            { return nil }
func (nopNotifier) ScheduleReminders(context.Context, []model.Reminder) error { return nil }

type Config struct {
	Profile   model.Profile
	Weather   *model.Weather
	Workout   *model.Workout
	Snapshot  model.Snapshot
	Clock     func() time.Time
	Notifier  Notifier
	Messages  *MessagePicker
	Namespace string
	Logf      func(format string, args ...any)
}

type Engine struct {
	mu sync.Mutex

	profile model.Profile
	weather *model.Weather
	workout *model.Workout
	entries []model.IntakeEntry
	state   model.GamificationState

	clock     func() time.Time
	notifier  Notifier
	messages  *MessagePicker
	namespace string
	logf      func(format string, args ...any)
	live      *LiveScheduler
}

type IntakeInput struct {
	ID       string
	At       time.Time
	VolumeML int
	Source   model.EntrySource
	Note     string
}

type IntakeResult struct {
	Entry        model.IntakeEntry
	Goal         model.GoalBreakdown
	TodayTotalML int
	State        model.GamificationState
	// Unlocked is in presentation order; the caller shows one at a time.
	Unlocked  []model.Achievement
	Reminders []model.Reminder
}

func New(cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	messages := cfg.Messages
	if messages == nil {
		messages = NewMessagePicker(nil, 0)
	}
	namespace := strings.TrimSpace(cfg.Namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	state := cloneState(cfg.Snapshot.State)
	state.Achievements = MergeCatalog(state.Achievements)
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = cfg.Snapshot.UpdatedAt
	}
	return &Engine{
		profile:   cfg.Profile,
		weather:   cfg.Weather,
		workout:   cfg.Workout,
		entries:   cloneEntries(cfg.Snapshot.Entries),
		state:     state,
		clock:     clock,
		notifier:  notifier,
		messages:  messages,
		namespace: namespace,
		logf:      logf,
	}
}

// AttachLive lets intake events interrupt a running live scheduler.
func (e *Engine) AttachLive(l *LiveScheduler) {
	e.mu.Lock()
	e.live = l
	e.mu.Unlock()
}

func (e *Engine) LogIntake(ctx context.Context, in IntakeInput) (IntakeResult, error) {
	if in.VolumeML <= 0 {
		return IntakeResult{}, ErrInvalidVolume
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	entry := model.IntakeEntry{
		ID:       strings.TrimSpace(in.ID),
		At:       in.At,
		VolumeML: in.VolumeML,
		Source:   in.Source,
		Note:     strings.TrimSpace(in.Note),
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if e.indexOf(entry.ID) >= 0 {
		return IntakeResult{}, fmt.Errorf("log intake %s: %w", entry.ID, ErrDuplicateEntry)
	}
	if entry.At.IsZero() {
		entry.At = now
	}
	if entry.Source == "" {
		entry.Source = model.SourceManual
	}

	goal := e.goalLocked()
	if RefreshDailyQuests(&e.state, goal.TotalML, now) {
		ReplayQuests(&e.state, goal.TotalML, e.entries, now)
	}
	e.entries = append(e.entries, entry)
	today := TodayTotal(e.entries, now)
	unlocked := ApplyIntake(&e.state, entry, today, goal.TotalML, e.entries, now)
	e.state.UpdatedAt = now

	if e.live != nil {
		e.live.ResetEscalation()
	}
	reminders := e.rescheduleLocked(ctx, now)
	return IntakeResult{
		Entry:        entry,
		Goal:         goal,
		TodayTotalML: today,
		State:        cloneState(e.state),
		Unlocked:     unlocked,
		Reminders:    reminders,
	}, nil
}

// UpdateIntake corrects an entry's volume and note. It goes through the same
// recompute path as a fresh entry.
func (e *Engine) UpdateIntake(ctx context.Context, id string, volumeML int, note string) (IntakeResult, error) {
	if volumeML <= 0 {
		return IntakeResult{}, ErrInvalidVolume
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return IntakeResult{}, fmt.Errorf("update intake %s: %w", id, ErrEntryNotFound)
	}
	e.entries[i].VolumeML = volumeML
	e.entries[i].Note = strings.TrimSpace(note)
	entry := e.entries[i]
	res := e.recomputeLocked(ctx)
	res.Entry = entry
	return res, nil
}

func (e *Engine) DeleteIntake(ctx context.Context, id string) (IntakeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return IntakeResult{}, fmt.Errorf("delete intake %s: %w", id, ErrEntryNotFound)
	}
	entry := e.entries[i]
	e.entries = append(e.entries[:i], e.entries[i+1:]...)
	res := e.recomputeLocked(ctx)
	res.Entry = entry
	return res, nil
}

// SyncExternal replaces every entry from source with a timestamp in
// [from, to) by the supplied list. Supplied entries outside the range are
// ignored.
func (e *Engine) SyncExternal(ctx context.Context, source model.EntrySource, from, to time.Time, incoming []model.IntakeEntry) (IntakeResult, error) {
	if !from.Before(to) {
		return IntakeResult{}, fmt.Errorf("sync range start must be before end")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	inRange := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }
	kept := make([]model.IntakeEntry, 0, len(e.entries)+len(incoming))
	for _, entry := range e.entries {
		if entry.Source == source && inRange(entry.At) {
			continue
		}
		kept = append(kept, entry)
	}
	seen := make(map[string]struct{}, len(kept))
	for _, entry := range kept {
		seen[entry.ID] = struct{}{}
	}
	for _, entry := range incoming {
		if entry.VolumeML <= 0 || !inRange(entry.At) {
			continue
		}
		entry.Source = source
		if strings.TrimSpace(entry.ID) == "" {
			entry.ID = uuid.NewString()
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		kept = append(kept, entry)
	}
	e.entries = kept
	return e.recomputeLocked(ctx), nil
}

// RefreshDay instantiates today's quests if the day has turned, replays
// today's entries into them and runs a full scheduling pass. Achievements the
// refresh unlocks come back in Unlocked like they do for an intake.
func (e *Engine) RefreshDay(ctx context.Context) IntakeResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	unlocked := e.refreshDayLocked(now)
	return e.dayResultLocked(ctx, now, unlocked)
}

// ApplyExternalState replaces local entries and state with a remote snapshot
// when it is strictly newer. It reports whether the snapshot was applied.
func (e *Engine) ApplyExternalState(ctx context.Context, snap model.Snapshot) (IntakeResult, bool, error) {
	for _, entry := range snap.Entries {
		if entry.VolumeML <= 0 {
			return IntakeResult{}, false, fmt.Errorf("apply snapshot entry %s: %w", entry.ID, ErrInvalidVolume)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	incoming := snap.UpdatedAt
	if incoming.IsZero() {
		incoming = snap.State.UpdatedAt
	}
	if !incoming.After(e.state.UpdatedAt) {
		return IntakeResult{}, false, nil
	}
	e.entries = cloneEntries(snap.Entries)
	e.state = cloneState(snap.State)
	e.state.Achievements = MergeCatalog(e.state.Achievements)
	now := e.clock()
	unlocked := e.refreshDayLocked(now)
	e.state.UpdatedAt = incoming
	if e.live != nil {
		e.live.ResetEscalation()
	}
	return e.dayResultLocked(ctx, now, unlocked), true, nil
}

func (e *Engine) dayResultLocked(ctx context.Context, now time.Time, unlocked []model.Achievement) IntakeResult {
	reminders := e.rescheduleLocked(ctx, now)
	return IntakeResult{
		Goal:         e.goalLocked(),
		TodayTotalML: TodayTotal(e.entries, now),
		State:        cloneState(e.state),
		Unlocked:     unlocked,
		Reminders:    reminders,
	}
}

func (e *Engine) SetProfile(ctx context.Context, p model.Profile) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = p
	e.rescheduleLocked(ctx, e.clock())
}

// SetConditions replaces the weather reading and workout summary used for
// the goal. Nil clears an input.
func (e *Engine) SetConditions(ctx context.Context, weather *model.Weather, workout *model.Workout) model.GoalBreakdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weather = weather
	e.workout = workout
	e.rescheduleLocked(ctx, e.clock())
	return e.goalLocked()
}

// Reschedule clears the namespace and schedules a fresh batch.
func (e *Engine) Reschedule(ctx context.Context) []model.Reminder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rescheduleLocked(ctx, e.clock())
}

// Plan computes the current batch without touching the notifier.
func (e *Engine) Plan(ctx context.Context) []model.Reminder {
	in := e.LiveInputs()
	return Plan(ctx, in, e.messages)
}

// LiveInputs is the read-only view the live scheduler evaluates.
func (e *Engine) LiveInputs() PassInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passInputLocked(e.clock())
}

func (e *Engine) Goal() model.GoalBreakdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.goalLocked()
}

func (e *Engine) TodayTotal() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TodayTotal(e.entries, e.clock())
}

func (e *Engine) State() model.GamificationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

func (e *Engine) Entries() []model.IntakeEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := cloneEntries(e.entries)
	sortEntries(out)
	return out
}

func (e *Engine) Profile() model.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := cloneEntries(e.entries)
	sortEntries(entries)
	return model.Snapshot{
		UpdatedAt: e.state.UpdatedAt,
		Entries:   entries,
		State:     cloneState(e.state),
	}
}

func (e *Engine) Messages() *MessagePicker {
	return e.messages
}

func (e *Engine) goalLocked() model.GoalBreakdown {
	return ComputeGoal(e.profile, e.weather, e.workout)
}

func (e *Engine) passInputLocked(now time.Time) PassInput {
	return PassInput{
		Profile:   e.profile,
		Entries:   cloneEntries(e.entries),
		GoalML:    e.goalLocked().TotalML,
		Now:       now,
		Namespace: e.namespace,
	}
}

func (e *Engine) refreshDayLocked(now time.Time) []model.Achievement {
	goal := e.goalLocked().TotalML
	if RefreshDailyQuests(&e.state, goal, now) {
		ReplayQuests(&e.state, goal, e.entries, now)
	}
	return RecomputeHistory(&e.state, TodayTotal(e.entries, now), goal, e.entries, now)
}

func (e *Engine) recomputeLocked(ctx context.Context) IntakeResult {
	now := e.clock()
	goal := e.goalLocked()
	RefreshDailyQuests(&e.state, goal.TotalML, now)
	ReplayQuests(&e.state, goal.TotalML, e.entries, now)
	today := TodayTotal(e.entries, now)
	unlocked := RecomputeHistory(&e.state, today, goal.TotalML, e.entries, now)
	e.state.UpdatedAt = now
	reminders := e.rescheduleLocked(ctx, now)
	return IntakeResult{
		Goal:         goal,
		TodayTotalML: today,
		State:        cloneState(e.state),
		Unlocked:     unlocked,
		Reminders:    reminders,
	}
}

// rescheduleLocked always cancels first; delivery errors are logged and
// dropped because the next pass re-derives everything anyway.
func (e *Engine) rescheduleLocked(ctx context.Context, now time.Time) []model.Reminder {
	if err := e.notifier.CancelReminders(ctx, e.namespace); err != nil {
		e.logf("cancel reminders %s: %v", e.namespace, err)
	}
	reminders := Plan(ctx, e.passInputLocked(now), e.messages)
	if len(reminders) > 0 {
		if err := e.notifier.ScheduleReminders(ctx, reminders); err != nil {
			e.logf("schedule %d reminders: %v", len(reminders), err)
		}
	}
	if e.live != nil {
		e.live.Poke()
	}
	return reminders
}

func (e *Engine) indexOf(id string) int {
	for i, entry := range e.entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}
