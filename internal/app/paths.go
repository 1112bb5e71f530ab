package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName = "hydrate"
	dbFileName = "hydrate.db"
	backupDir  = "backups"
)

// DefaultDBPath honors HYDRATE_DB_PATH before falling back to the user
// config directory.
func DefaultDBPath() (string, error) {
	cfg, err := ParseEnv()
	if err != nil {
		return "", err
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

// DefaultBackupDir places backups next to the database file.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), backupDir)
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
