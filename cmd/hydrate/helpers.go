package hydrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/app"
	"github.com/saadjs/hydrate-cli/internal/db"
	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/provider/textgen"
	"github.com/saadjs/hydrate-cli/internal/service"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withEngine opens the engine on top of the database and commits its
// snapshot after run succeeds.
func withEngine(cmd *cobra.Command, run func(context.Context, *sql.DB, *engine.Engine) error) error {
	return withDB(func(sqldb *sql.DB) error {
		eng, err := openEngine(cmd, sqldb)
		if err != nil {
			return err
		}
		if err := run(commandContext(cmd), sqldb, eng); err != nil {
			return err
		}
		return service.Commit(sqldb, eng)
	})
}

func openEngine(cmd *cobra.Command, sqldb *sql.DB) (*engine.Engine, error) {
	opts, err := engineOptions(cmd, sqldb)
	if err != nil {
		return nil, err
	}
	return service.OpenEngine(sqldb, opts)
}

// engineOptions merges HYDRATE_* variables over stored config values.
func engineOptions(cmd *cobra.Command, sqldb *sql.DB) (service.EngineOptions, error) {
	env, err := app.ParseEnv()
	if err != nil {
		return service.EngineOptions{}, err
	}
	stored, err := service.ListConfig(sqldb)
	if err != nil {
		return service.EngineOptions{}, err
	}
	cfg := env.Resolve(stored)
	client := textgen.NewClient(textgen.Config{
		BaseURL: cfg.TextgenURL,
		APIKey:  cfg.TextgenAPIKey,
		Model:   cfg.TextgenModel,
		Timeout: cfg.TextgenTimeout,
	})
	return service.EngineOptions{
		Messages:  engine.NewMessagePicker(client, cfg.TextgenTimeout),
		Namespace: cfg.ReminderNamespace,
		Logf:      commandLogger(cmd).Printf,
	}, nil
}

func commandLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "hydrate: ", log.LstdFlags)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if timeStr == "" {
		return time.Time{}, fmt.Errorf("--time is required when --date is set")
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func parseDateFlag(name, value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (expected YYYY-MM-DD)", name, value)
	}
	return t, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatClockTime(t time.Time) string {
	return t.Local().Format("15:04")
}
