package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profile (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  activity TEXT NOT NULL CHECK(activity IN ('low', 'medium', 'high')),
  units TEXT NOT NULL CHECK(units IN ('metric', 'imperial')),
  goal_override_ml INTEGER CHECK(goal_override_ml > 0),
  wake_minute INTEGER NOT NULL CHECK(wake_minute >= 0 AND wake_minute < 1440),
  sleep_minute INTEGER NOT NULL CHECK(sleep_minute > 0 AND sleep_minute <= 1440),
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS intake_entries (
  id TEXT PRIMARY KEY,
  volume_ml INTEGER NOT NULL CHECK(volume_ml > 0),
  consumed_at DATETIME NOT NULL,
  source TEXT NOT NULL CHECK(source IN ('manual', 'synced')),
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_intake_entries_consumed_at ON intake_entries(consumed_at);
CREATE INDEX IF NOT EXISTS idx_intake_entries_source ON intake_entries(source, consumed_at);
`,
	},
	{
		version: 2,
		name:    "profile_toggles",
		sql: `
ALTER TABLE profile ADD COLUMN reminders_enabled INTEGER NOT NULL DEFAULT 1;
ALTER TABLE profile ADD COLUMN weather_adjust INTEGER NOT NULL DEFAULT 0;
ALTER TABLE profile ADD COLUMN workout_adjust INTEGER NOT NULL DEFAULT 0;
ALTER TABLE profile ADD COLUMN adaptive_reminders INTEGER NOT NULL DEFAULT 1;
`,
	},
	{
		version: 3,
		name:    "conditions",
		sql: `
CREATE TABLE IF NOT EXISTS weather_readings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  temperature_c REAL NOT NULL,
  humidity_pct REAL NOT NULL CHECK(humidity_pct >= 0 AND humidity_pct <= 100),
  observed_at DATETIME NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_weather_readings_observed_at ON weather_readings(observed_at);

CREATE TABLE IF NOT EXISTS workout_sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exercise_minutes INTEGER NOT NULL CHECK(exercise_minutes > 0),
  active_energy_kcal REAL NOT NULL DEFAULT 0 CHECK(active_energy_kcal >= 0),
  performed_at DATETIME NOT NULL,
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_workout_sessions_performed_at ON workout_sessions(performed_at);
`,
	},
	{
		version: 4,
		name:    "engine_state",
		sql: `
CREATE TABLE IF NOT EXISTS engine_state (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  state_json TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
`,
	},
	{
		version: 5,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 6,
		name:    "scheduled_reminders",
		sql: `
CREATE TABLE IF NOT EXISTS scheduled_reminders (
  id TEXT PRIMARY KEY,
  namespace TEXT NOT NULL,
  fire_at DATETIME NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  band TEXT NOT NULL DEFAULT '',
  mode TEXT NOT NULL CHECK(mode IN ('adaptive', 'fixed')),
  imminent INTEGER NOT NULL DEFAULT 0,
  escalation INTEGER NOT NULL DEFAULT 0,
  delivered_at DATETIME,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scheduled_reminders_fire_at ON scheduled_reminders(namespace, fire_at);
`,
	},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	if _, err := db.Exec(`INSERT OR IGNORE INTO engine_state(id, state_json, updated_at) VALUES(1, '{}', '')`); err != nil {
		return fmt.Errorf("seed engine state: %w", err)
	}
	return nil
}
