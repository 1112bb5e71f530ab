package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/saadjs/hydrate-cli/internal/db"
)

func TestApplyMigrationsIdempotentAndSeedsState(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "hydrate.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 6 {
		t.Fatalf("expected 6 migration versions, got %d", migrationCount)
	}

	for _, table := range []string{"profile", "intake_entries", "weather_readings", "workout_sessions", "engine_state", "app_config", "scheduled_reminders"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	var adaptiveColCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM pragma_table_info('profile') WHERE name = 'adaptive_reminders'`).Scan(&adaptiveColCount); err != nil {
		t.Fatalf("check profile adaptive_reminders column: %v", err)
	}
	if adaptiveColCount != 1 {
		t.Fatalf("expected adaptive_reminders column in profile table")
	}

	var indexCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'index' AND name = 'idx_scheduled_reminders_fire_at'`).Scan(&indexCount); err != nil {
		t.Fatalf("check scheduled_reminders index: %v", err)
	}
	if indexCount != 1 {
		t.Fatalf("expected idx_scheduled_reminders_fire_at index to exist")
	}

	var stateRows int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM engine_state`).Scan(&stateRows); err != nil {
		t.Fatalf("count engine_state rows: %v", err)
	}
	if stateRows != 1 {
		t.Fatalf("expected one seeded engine_state row, got %d", stateRows)
	}

	if _, err := sqldb.Exec(`INSERT INTO intake_entries(id, volume_ml, consumed_at, source) VALUES('x', 0, '2026-03-10T08:00:00Z', 'manual')`); err == nil {
		t.Fatalf("expected zero volume to be rejected by the schema")
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db file to exist: %v", err)
	}
}
