package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/hydrate-cli/internal/model"
)

// ErrEntryNotFound is returned by updates and deletes of unknown ids.
var ErrEntryNotFound = errors.New("entry not found")

type ListEntriesFilter struct {
	Date     string
	FromDate string
	ToDate   string
	Source   string
	Limit    int
}

// execer is the part of *sql.DB and *sql.Tx the writers need.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func CreateEntry(db *sql.DB, e model.IntakeEntry) error {
	return insertEntry(db, e)
}

func insertEntry(x execer, e model.IntakeEntry) error {
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if err := validatePositiveInt("volume", e.VolumeML); err != nil {
		return err
	}
	if e.At.IsZero() {
		return fmt.Errorf("consumed time is required")
	}
	source, err := normalizeSource(string(e.Source))
	if err != nil {
		return err
	}
	_, err = x.Exec(`
INSERT INTO intake_entries(id, volume_ml, consumed_at, source, notes)
VALUES(?, ?, ?, ?, ?)
`, e.ID, e.VolumeML, formatTime(e.At), source, strings.TrimSpace(e.Note))
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", e.ID, err)
	}
	return nil
}

func ListEntries(db *sql.DB, f ListEntriesFilter) ([]model.IntakeEntry, error) {
	query := `
SELECT id, volume_ml, consumed_at, source, IFNULL(notes, '')
FROM intake_entries
WHERE 1=1`
	args := make([]any, 0)

	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND consumed_at >= ? AND consumed_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" {
		from, err := parseDate(f.FromDate)
		if err != nil {
			return nil, err
		}
		query += ` AND consumed_at >= ?`
		args = append(args, formatTime(from))
	}
	if strings.TrimSpace(f.ToDate) != "" {
		to, err := parseDate(f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND consumed_at < ?`
		args = append(args, formatTime(to.AddDate(0, 0, 1)))
	}
	if strings.TrimSpace(f.Source) != "" {
		source, err := normalizeSource(f.Source)
		if err != nil {
			return nil, err
		}
		query += ` AND source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY consumed_at DESC, id ASC`

	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	return queryEntries(db, query, args...)
}

// AllEntries returns every stored entry oldest first.
func AllEntries(db *sql.DB) ([]model.IntakeEntry, error) {
	return queryEntries(db, `
SELECT id, volume_ml, consumed_at, source, IFNULL(notes, '')
FROM intake_entries
ORDER BY consumed_at ASC, id ASC`)
}

func queryEntries(db *sql.DB, query string, args ...any) ([]model.IntakeEntry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.IntakeEntry, 0)
	for rows.Next() {
		var e model.IntakeEntry
		var consumedAtRaw, source string
		if err := rows.Scan(&e.ID, &e.VolumeML, &consumedAtRaw, &source, &e.Note); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		consumedAt, err := parseTime(consumedAtRaw)
		if err != nil {
			return nil, fmt.Errorf("parse consumed_at for entry %s: %w", e.ID, err)
		}
		e.At = consumedAt
		e.Source = model.EntrySource(source)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func UpdateEntry(db *sql.DB, id string, volumeML int, note string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("entry id is required")
	}
	if err := validatePositiveInt("volume", volumeML); err != nil {
		return err
	}
	res, err := db.Exec(`
UPDATE intake_entries
SET volume_ml = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, volumeML, strings.TrimSpace(note), id)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for entry %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update entry %s: %w", id, ErrEntryNotFound)
	}
	return nil
}

func DeleteEntry(db *sql.DB, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("entry id is required")
	}
	res, err := db.Exec(`DELETE FROM intake_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for entry %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete entry %s: %w", id, ErrEntryNotFound)
	}
	return nil
}

// ResolveEntryID expands a unique id prefix, so the CLI can accept the short
// ids it prints.
func ResolveEntryID(db *sql.DB, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("entry id is required")
	}
	rows, err := db.Query(`SELECT id FROM intake_entries WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", fmt.Errorf("resolve entry id %q: %w", prefix, err)
	}
	defer rows.Close()
	ids := make([]string, 0, 2)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan entry id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate entry ids: %w", err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("entry %q: %w", prefix, ErrEntryNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("entry id prefix %q is ambiguous", prefix)
	}
}

func normalizeSource(source string) (string, error) {
	source = normalizeName(source)
	if source == "" {
		return string(model.SourceManual), nil
	}
	switch model.EntrySource(source) {
	case model.SourceManual, model.SourceSynced:
		return source, nil
	default:
		return "", fmt.Errorf("invalid source %q (expected manual|synced)", source)
	}
}

// entriesBetween returns entries in [from, to) oldest first.
func entriesBetween(db *sql.DB, from, to time.Time) ([]model.IntakeEntry, error) {
	return queryEntries(db, `
SELECT id, volume_ml, consumed_at, source, IFNULL(notes, '')
FROM intake_entries
WHERE consumed_at >= ? AND consumed_at < ?
ORDER BY consumed_at ASC, id ASC`, formatTime(from), formatTime(to))
}
