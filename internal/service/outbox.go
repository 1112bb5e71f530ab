package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

// ReminderOutbox is the pre-scheduled delivery target: each pass replaces
// the undelivered rows of its namespace, and `hydrate remind list --due`
// drains them as they come due. A pass that emits the id of a row already
// delivered leaves that row alone, so re-running a pass never re-arms it.
type ReminderOutbox struct {
	db  *sql.DB
	now func() time.Time
}

func NewReminderOutbox(db *sql.DB, now func() time.Time) *ReminderOutbox {
	if now == nil {
		now = time.Now
	}
	return &ReminderOutbox{db: db, now: now}
}

// CancelReminders drops every undelivered reminder in namespace. Delivered
// rows stay as history.
func (o *ReminderOutbox) CancelReminders(ctx context.Context, namespace string) error {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return fmt.Errorf("reminder namespace is required")
	}
	if _, err := o.db.ExecContext(ctx, `DELETE FROM scheduled_reminders WHERE namespace = ? AND delivered_at IS NULL`, namespace); err != nil {
		return fmt.Errorf("cancel reminders %s: %w", namespace, err)
	}
	return nil
}

func (o *ReminderOutbox) ScheduleReminders(ctx context.Context, reminders []model.Reminder) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, r := range reminders {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scheduled_reminders(id, namespace, fire_at, title, body, band, mode, imminent, escalation)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  fire_at=excluded.fire_at,
  title=excluded.title,
  body=excluded.body,
  band=excluded.band,
  mode=excluded.mode,
  imminent=excluded.imminent,
  escalation=excluded.escalation
WHERE scheduled_reminders.delivered_at IS NULL
`, r.ID, namespaceOf(r.ID), formatTime(r.FireAt), r.Title, r.Body, string(r.Band), string(r.Mode), boolToInt(r.Imminent), boolToInt(r.Escalation)); err != nil {
			return fmt.Errorf("schedule reminder %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scheduled reminders: %w", err)
	}
	return nil
}

// Deliver records a reminder fired by the live scheduler so history and
// `remind list` see it too.
func (o *ReminderOutbox) Deliver(ctx context.Context, r model.Reminder) error {
	delivered := formatTime(o.now())
	if _, err := o.db.ExecContext(ctx, `
INSERT INTO scheduled_reminders(id, namespace, fire_at, title, body, band, mode, imminent, escalation, delivered_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET delivered_at=excluded.delivered_at, title=excluded.title, body=excluded.body, escalation=excluded.escalation
`, r.ID, namespaceOf(r.ID), formatTime(r.FireAt), r.Title, r.Body, string(r.Band), string(r.Mode), boolToInt(r.Imminent), boolToInt(r.Escalation), delivered); err != nil {
		return fmt.Errorf("record delivered reminder %s: %w", r.ID, err)
	}
	return nil
}

// PendingReminders lists undelivered reminders in namespace, soonest first.
func PendingReminders(db *sql.DB, namespace string) ([]model.Reminder, error) {
	return queryReminders(db, `
SELECT id, fire_at, title, body, band, mode, imminent, escalation
FROM scheduled_reminders
WHERE namespace = ? AND delivered_at IS NULL
ORDER BY fire_at ASC, id ASC`, namespace)
}

// DueReminders lists undelivered reminders whose fire time is at or before now.
func DueReminders(db *sql.DB, namespace string, now time.Time) ([]model.Reminder, error) {
	return queryReminders(db, `
SELECT id, fire_at, title, body, band, mode, imminent, escalation
FROM scheduled_reminders
WHERE namespace = ? AND delivered_at IS NULL AND fire_at <= ?
ORDER BY fire_at ASC, id ASC`, namespace, formatTime(now))
}

func MarkDelivered(db *sql.DB, id string, at time.Time) error {
	res, err := db.Exec(`UPDATE scheduled_reminders SET delivered_at = ? WHERE id = ? AND delivered_at IS NULL`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark reminder %s delivered: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for reminder %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("reminder %s not pending", id)
	}
	return nil
}

func queryReminders(db *sql.DB, query string, args ...any) ([]model.Reminder, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()
	out := make([]model.Reminder, 0)
	for rows.Next() {
		var r model.Reminder
		var fireRaw, band, mode string
		var imminent, escalation int
		if err := rows.Scan(&r.ID, &fireRaw, &r.Title, &r.Body, &band, &mode, &imminent, &escalation); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		fireAt, err := parseTime(fireRaw)
		if err != nil {
			return nil, fmt.Errorf("parse fire_at for reminder %s: %w", r.ID, err)
		}
		r.FireAt = fireAt
		r.Band = model.ProgressBand(band)
		r.Mode = model.ReminderMode(mode)
		r.Imminent = imminent == 1
		r.Escalation = escalation == 1
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}
	return out, nil
}

// namespaceOf strips the "YYYY-MM-DD.NN" suffix the scheduler appends.
func namespaceOf(id string) string {
	parts := strings.Split(id, ".")
	if len(parts) < 3 {
		return id
	}
	return strings.Join(parts[:len(parts)-2], ".")
}
