package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/hydrate-cli/internal/engine"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	ProfileMissing        bool `json:"profile_missing"`
	FutureEntries         int  `json:"future_entries"`
	DuplicateEntryRows    int  `json:"duplicate_entry_rows"`
	UnknownAchievements   int  `json:"unknown_achievements"`
	StaleReminders        int  `json:"stale_reminders"`
	RemovedStaleReminders int  `json:"removed_stale_reminders,omitempty"`
}

// staleReminderAge is how long an undelivered reminder may sit past its
// fire time before doctor reports it.
const staleReminderAge = 24 * time.Hour

// CreateBackup writes a consistent copy with VACUUM INTO, which also folds
// in anything still sitting in the WAL.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("write backup: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	checksumFile := backupPath + ".sha256"
	if expected, err := os.ReadFile(checksumFile); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s file: %w", suffix, err)
		}
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor reports integrity problems. With fix it only removes stale
// undelivered reminders; entries and achievements are never rewritten.
func RunDoctor(db *sql.DB, now time.Time, fix bool) (DoctorReport, error) {
	report := DoctorReport{}

	if _, err := GetProfile(db); errors.Is(err, ErrProfileNotFound) {
		report.ProfileMissing = true
	} else if err != nil {
		return report, fmt.Errorf("doctor profile check: %w", err)
	}

	if err := db.QueryRow(`SELECT COUNT(1) FROM intake_entries WHERE consumed_at > ?`, formatTime(now)).Scan(&report.FutureEntries); err != nil {
		return report, fmt.Errorf("doctor future entry check: %w", err)
	}

	if err := db.QueryRow(`
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt
  FROM intake_entries
  GROUP BY consumed_at, volume_ml, source
  HAVING cnt > 1
)
`).Scan(&report.DuplicateEntryRows); err != nil {
		return report, fmt.Errorf("doctor duplicate query: %w", err)
	}

	snap, err := LoadSnapshot(db)
	if err != nil {
		return report, fmt.Errorf("doctor state check: %w", err)
	}
	known := make(map[string]struct{})
	for _, def := range engine.Catalog() {
		known[def.ID] = struct{}{}
	}
	for _, a := range snap.State.Achievements {
		if _, ok := known[a.ID]; !ok {
			report.UnknownAchievements++
		}
	}

	cutoff := formatTime(now.Add(-staleReminderAge))
	if err := db.QueryRow(`SELECT COUNT(1) FROM scheduled_reminders WHERE delivered_at IS NULL AND fire_at < ?`, cutoff).Scan(&report.StaleReminders); err != nil {
		return report, fmt.Errorf("doctor stale reminder check: %w", err)
	}
	if fix && report.StaleReminders > 0 {
		res, err := db.Exec(`DELETE FROM scheduled_reminders WHERE delivered_at IS NULL AND fire_at < ?`, cutoff)
		if err != nil {
			return report, fmt.Errorf("doctor fix stale reminders: %w", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return report, fmt.Errorf("doctor fix rows affected: %w", err)
		}
		report.RemovedStaleReminders = int(removed)
	}

	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for checksum: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
