package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/hydrate-cli/internal/engine"
)

type EngineOptions struct {
	Now       func() time.Time
	Messages  *engine.MessagePicker
	Namespace string
	Logf      func(format string, args ...any)
	// Notifier defaults to the database outbox.
	Notifier engine.Notifier
}

// OpenEngine builds an engine from stored profile, today's conditions and
// the last saved snapshot.
func OpenEngine(db *sql.DB, opts EngineOptions) (*engine.Engine, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	profile, err := GetProfile(db)
	if err != nil {
		return nil, err
	}
	date := now().Format(dateLayout)
	weather, err := LatestWeather(db, date)
	if err != nil {
		return nil, err
	}
	workout, err := WorkoutForDay(db, date)
	if err != nil {
		return nil, err
	}
	snap, err := LoadSnapshot(db)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewReminderOutbox(db, now)
	}
	return engine.New(engine.Config{
		Profile:   profile,
		Weather:   weather,
		Workout:   workout,
		Snapshot:  snap,
		Clock:     now,
		Notifier:  notifier,
		Messages:  opts.Messages,
		Namespace: opts.Namespace,
		Logf:      opts.Logf,
	}), nil
}

// Commit persists the engine's entries and gamification state.
func Commit(db *sql.DB, eng *engine.Engine) error {
	if err := SaveSnapshot(db, eng.Snapshot()); err != nil {
		return fmt.Errorf("commit engine state: %w", err)
	}
	return nil
}
