package app

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseEnvReadsHydrateVariables(t *testing.T) {
	t.Setenv("HYDRATE_DB_PATH", "/tmp/h.db")
	t.Setenv("HYDRATE_TEXTGEN_URL", "http://localhost:8080")
	t.Setenv("HYDRATE_TEXTGEN_TIMEOUT", "3s")
	t.Setenv("HYDRATE_REMINDER_NAMESPACE", "custom")

	cfg, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv() error = %v", err)
	}
	if cfg.DBPath != "/tmp/h.db" || cfg.TextgenURL != "http://localhost:8080" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.TextgenTimeout != 3*time.Second || cfg.ReminderNamespace != "custom" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("HYDRATE_TEXTGEN_TIMEOUT", "soon")
	if _, err := ParseEnv(); err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestResolvePrefersEnvironment(t *testing.T) {
	stored := map[string]string{
		"textgen_url":        "http://stored",
		"textgen_model":      "stored-model",
		"textgen_timeout":    "4s",
		"reminder_namespace": "stored-ns",
	}
	cfg := EnvConfig{TextgenURL: "http://env"}.Resolve(stored)
	if cfg.TextgenURL != "http://env" {
		t.Fatalf("env url should win, got %q", cfg.TextgenURL)
	}
	if cfg.TextgenModel != "stored-model" || cfg.TextgenTimeout != 4*time.Second || cfg.ReminderNamespace != "stored-ns" {
		t.Fatalf("unexpected resolved config %+v", cfg)
	}
}

func TestDefaultDBPathHonorsEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "x.db")
	t.Setenv("HYDRATE_DB_PATH", want)
	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath() error = %v", err)
	}
	if got != want {
		t.Fatalf("DefaultDBPath() = %q, want %q", got, want)
	}
	if DefaultBackupDir(got) != filepath.Join(filepath.Dir(want), "backups") {
		t.Fatalf("unexpected backup dir %q", DefaultBackupDir(got))
	}
}
