package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

func TestSaveAndLoadSnapshot(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	empty, err := service.LoadSnapshot(db)
	if err != nil {
		t.Fatalf("load empty snapshot: %v", err)
	}
	if !empty.UpdatedAt.IsZero() || len(empty.Entries) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", empty)
	}

	updated := time.Date(2026, 3, 10, 9, 0, 0, 123456789, time.UTC)
	snap := model.Snapshot{
		UpdatedAt: updated,
		Entries: []model.IntakeEntry{
			{ID: "a", At: localAt(10, 8, 0), VolumeML: 300, Source: model.SourceManual},
			{ID: "b", At: localAt(10, 9, 0), VolumeML: 200, Source: model.SourceSynced},
		},
		State: model.GamificationState{
			QuestDay:  "2026-03-10",
			Streak:    model.Streak{Count: 2, Longest: 4, LastDay: "2026-03-10"},
			UpdatedAt: updated,
		},
	}
	if err := service.SaveSnapshot(db, snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	snap.Entries = snap.Entries[1:]
	snap.Entries[0].VolumeML = 250
	if err := service.SaveSnapshot(db, snap); err != nil {
		t.Fatalf("save trimmed snapshot: %v", err)
	}

	got, err := service.LoadSnapshot(db)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Fatalf("expected updated_at %s, got %s", updated, got.UpdatedAt)
	}
	if len(got.Entries) != 1 || got.Entries[0].ID != "b" || got.Entries[0].VolumeML != 250 {
		t.Fatalf("unexpected entries: %+v", got.Entries)
	}
	if got.State.Streak.Longest != 4 || got.State.QuestDay != "2026-03-10" {
		t.Fatalf("unexpected state: %+v", got.State)
	}
}

func TestEncodeDecodeSnapshotFormats(t *testing.T) {
	t.Parallel()
	snap := model.Snapshot{
		UpdatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Entries:   []model.IntakeEntry{{ID: "a", At: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), VolumeML: 300, Source: model.SourceManual}},
	}
	for _, format := range []service.SnapshotFormat{service.FormatJSON, service.FormatYAML} {
		var buf bytes.Buffer
		if err := service.EncodeSnapshot(&buf, snap, format); err != nil {
			t.Fatalf("encode %s: %v", format, err)
		}
		got, err := service.DecodeSnapshot(&buf, format)
		if err != nil {
			t.Fatalf("decode %s: %v", format, err)
		}
		if !got.UpdatedAt.Equal(snap.UpdatedAt) || len(got.Entries) != 1 || got.Entries[0].VolumeML != 300 {
			t.Fatalf("%s: unexpected snapshot %+v", format, got)
		}
	}
	if _, err := service.DecodeSnapshot(bytes.NewBufferString(`{"entries":[]}`), service.FormatJSON); err == nil {
		t.Fatalf("expected snapshot without updated_at to fail")
	}
	if _, err := service.ParseSnapshotFormat("xml"); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestImportSnapshotNewerOnly(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedProfile(t, db)
	ctx := context.Background()
	now := localAt(10, 12, 0)

	eng, err := service.OpenEngine(db, service.EngineOptions{Now: fixedNow(now), Logf: t.Logf})
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	if _, err := eng.LogIntake(ctx, engine.IntakeInput{VolumeML: 400}); err != nil {
		t.Fatalf("log intake: %v", err)
	}
	if err := service.Commit(db, eng); err != nil {
		t.Fatalf("commit: %v", err)
	}

	stale := model.Snapshot{UpdatedAt: now.Add(-time.Hour)}
	if _, err := service.ImportSnapshot(ctx, db, eng, stale); !errors.Is(err, service.ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}

	remote := model.Snapshot{
		UpdatedAt: now.Add(time.Hour),
		Entries: []model.IntakeEntry{
			{ID: "remote-1", At: localAt(10, 9, 0), VolumeML: 900, Source: model.SourceManual},
		},
	}
	res, err := service.ImportSnapshot(ctx, db, eng, remote)
	if err != nil {
		t.Fatalf("import newer snapshot: %v", err)
	}
	if len(res.Unlocked) == 0 || res.Unlocked[0].ID != "first-sip" {
		t.Fatalf("expected import to report first-sip, got %+v", res.Unlocked)
	}
	all, err := service.AllEntries(db)
	if err != nil {
		t.Fatalf("all entries: %v", err)
	}
	if len(all) != 1 || all[0].ID != "remote-1" {
		t.Fatalf("expected remote entries persisted, got %+v", all)
	}
	loaded, err := service.LoadSnapshot(db)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !loaded.UpdatedAt.Equal(remote.UpdatedAt) {
		t.Fatalf("expected remote updated_at kept, got %s", loaded.UpdatedAt)
	}
}
