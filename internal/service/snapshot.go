package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
)

// ErrStaleSnapshot is returned when an imported snapshot is not newer than
// local state.
var ErrStaleSnapshot = errors.New("snapshot is not newer than local state")

type SnapshotFormat string

const (
	FormatJSON SnapshotFormat = "json"
	FormatYAML SnapshotFormat = "yaml"
)

func ParseSnapshotFormat(value string) (SnapshotFormat, error) {
	switch normalizeName(value) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q (expected json|yaml)", value)
	}
}

func LoadSnapshot(db *sql.DB) (model.Snapshot, error) {
	entries, err := AllEntries(db)
	if err != nil {
		return model.Snapshot{}, err
	}
	var raw, updatedRaw string
	err = db.QueryRow(`SELECT state_json, updated_at FROM engine_state WHERE id = 1`).Scan(&raw, &updatedRaw)
	if err != nil && err != sql.ErrNoRows {
		return model.Snapshot{}, fmt.Errorf("load engine state: %w", err)
	}
	var state model.GamificationState
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return model.Snapshot{}, fmt.Errorf("decode engine state: %w", err)
		}
	}
	snap := model.Snapshot{Entries: entries, State: state, UpdatedAt: state.UpdatedAt}
	if strings.TrimSpace(updatedRaw) != "" {
		updatedAt, err := time.Parse(time.RFC3339Nano, updatedRaw)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("parse engine state updated_at: %w", err)
		}
		snap.UpdatedAt = updatedAt
	}
	return snap, nil
}

// SaveSnapshot makes storage match snap in one transaction: entries absent
// from snap are removed, the rest are upserted, and the state row replaced.
func SaveSnapshot(db *sql.DB, snap model.Snapshot) error {
	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("encode engine state: %w", err)
	}
	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = snap.State.UpdatedAt
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	keep := make(map[string]struct{}, len(snap.Entries))
	for _, e := range snap.Entries {
		keep[e.ID] = struct{}{}
	}
	rows, err := tx.Query(`SELECT id FROM intake_entries`)
	if err != nil {
		return fmt.Errorf("list stored entry ids: %w", err)
	}
	stale := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan stored entry id: %w", err)
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close stored entry ids: %w", err)
	}
	for _, id := range stale {
		if _, err := tx.Exec(`DELETE FROM intake_entries WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete entry %s: %w", id, err)
		}
	}
	for _, e := range snap.Entries {
		if err := upsertEntry(tx, e); err != nil {
			return err
		}
	}

	updatedRaw := ""
	if !updatedAt.IsZero() {
		updatedRaw = updatedAt.UTC().Format(time.RFC3339Nano)
	}
	if _, err := tx.Exec(`
INSERT INTO engine_state(id, state_json, updated_at) VALUES(1, ?, ?)
ON CONFLICT(id) DO UPDATE SET state_json=excluded.state_json, updated_at=excluded.updated_at
`, string(stateJSON), updatedRaw); err != nil {
		return fmt.Errorf("save engine state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func upsertEntry(tx *sql.Tx, e model.IntakeEntry) error {
	source, err := normalizeSource(string(e.Source))
	if err != nil {
		return err
	}
	if err := validatePositiveInt("volume", e.VolumeML); err != nil {
		return fmt.Errorf("entry %s: %w", e.ID, err)
	}
	_, err = tx.Exec(`
INSERT INTO intake_entries(id, volume_ml, consumed_at, source, notes)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  volume_ml=excluded.volume_ml,
  consumed_at=excluded.consumed_at,
  source=excluded.source,
  notes=excluded.notes,
  updated_at=CASE
    WHEN intake_entries.volume_ml != excluded.volume_ml OR IFNULL(intake_entries.notes, '') != excluded.notes THEN CURRENT_TIMESTAMP
    ELSE intake_entries.updated_at
  END
`, e.ID, e.VolumeML, formatTime(e.At), source, strings.TrimSpace(e.Note))
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", e.ID, err)
	}
	return nil
}

func EncodeSnapshot(w io.Writer, snap model.Snapshot, format SnapshotFormat) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode snapshot yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush snapshot yaml: %w", err)
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode snapshot json: %w", err)
		}
	}
	return nil
}

func DecodeSnapshot(r io.Reader, format SnapshotFormat) (model.Snapshot, error) {
	var snap model.Snapshot
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return model.Snapshot{}, fmt.Errorf("decode snapshot yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return model.Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
		}
	}
	if snap.UpdatedAt.IsZero() && snap.State.UpdatedAt.IsZero() {
		return model.Snapshot{}, fmt.Errorf("snapshot has no updated_at")
	}
	return snap, nil
}

// ImportSnapshot hands snap to the engine and persists the result when it
// wins. A snapshot that is not newer leaves storage untouched.
func ImportSnapshot(ctx context.Context, db *sql.DB, eng *engine.Engine, snap model.Snapshot) (engine.IntakeResult, error) {
	res, applied, err := eng.ApplyExternalState(ctx, snap)
	if err != nil {
		return engine.IntakeResult{}, fmt.Errorf("import snapshot: %w", err)
	}
	if !applied {
		return engine.IntakeResult{}, ErrStaleSnapshot
	}
	if err := Commit(db, eng); err != nil {
		return engine.IntakeResult{}, err
	}
	return res, nil
}
