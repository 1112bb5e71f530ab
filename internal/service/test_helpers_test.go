package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/hydrate-cli/internal/db"
	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hydrate.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func seedProfile(t *testing.T, sqldb *sql.DB) model.Profile {
	t.Helper()
	p := service.DefaultProfile()
	p.WeightKg = 75
	p.Activity = model.ActivityLow
	if err := service.SetProfile(sqldb, p); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	return p
}

func localAt(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.Local)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
