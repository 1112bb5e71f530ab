package hydrate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/saadjs/hydrate-cli/internal/service"
)

// resetFlags puts every flag back to its default; cobra keeps values
// between Execute calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("hydrate %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func newCLIDB(t *testing.T) string {
	t.Helper()
	t.Setenv("HYDRATE_TEXTGEN_URL", "")
	t.Setenv("HYDRATE_DB_PATH", "")
	t.Setenv("HYDRATE_REMINDER_NAMESPACE", "")
	path := filepath.Join(t.TempDir(), "hydrate.db")
	mustRun(t, "--db", path, "init")
	return path
}

var loggedIDPattern = regexp.MustCompile(`\(entry ([0-9a-f]{8})\)`)

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "hydrate") {
		t.Fatalf("expected help output, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := newCLIDB(t)
	out := mustRun(t, "--db", path, "init")
	if strings.Contains(out, "Created default profile") {
		t.Fatalf("second init must keep the existing profile: %q", out)
	}
	out = mustRun(t, "--db", path, "profile", "show")
	if !strings.Contains(out, "Activity: medium") || !strings.Contains(out, "Awake: 07:00-22:00") {
		t.Fatalf("unexpected default profile: %q", out)
	}
}

func TestLogTodayAndEntryCorrections(t *testing.T) {
	path := newCLIDB(t)

	out := mustRun(t, "--db", path, "log", "500", "--note", "morning glass")
	m := loggedIDPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("expected entry id in %q", out)
	}
	id := m[1]
	if !strings.Contains(out, "Achievement unlocked: First sip") {
		t.Fatalf("expected first achievement, got %q", out)
	}

	mustRun(t, "--db", path, "log", "0.25l")
	var status service.TodayStatus
	out = mustRun(t, "--db", path, "today", "--json")
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode today json: %v\n%s", err, out)
	}
	if status.TotalML != 750 || status.EntryCount != 2 {
		t.Fatalf("unexpected today status %+v", status)
	}
	if status.Goal.TotalML != 2450 {
		t.Fatalf("expected default goal 2450, got %d", status.Goal.TotalML)
	}
	if status.Streak.Count != 1 {
		t.Fatalf("expected streak 1, got %+v", status.Streak)
	}

	mustRun(t, "--db", path, "entry", "update", id, "--volume", "300")
	out = mustRun(t, "--db", path, "entry", "list")
	if !strings.Contains(out, id+"\t") || !strings.Contains(out, "\t300\tmanual\tmorning glass") {
		t.Fatalf("expected updated entry in list, got %q", out)
	}

	mustRun(t, "--db", path, "entry", "delete", id)
	out = mustRun(t, "--db", path, "today", "--json")
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode today json: %v", err)
	}
	if status.TotalML != 250 || status.EntryCount != 1 {
		t.Fatalf("unexpected status after delete %+v", status)
	}
}

func TestLogRejectsBadVolume(t *testing.T) {
	path := newCLIDB(t)
	if _, err := runCLI(t, "--db", path, "log", "0"); err == nil {
		t.Fatalf("expected zero volume to be rejected")
	}
	if _, err := runCLI(t, "--db", path, "log", "3 gallons"); err == nil {
		t.Fatalf("expected unknown unit to be rejected")
	}
}

func TestProfileSetAndValidation(t *testing.T) {
	path := newCLIDB(t)

	out := mustRun(t, "--db", path, "profile", "set", "--weight", "80", "--activity", "high", "--wake", "06:30")
	if !strings.Contains(out, "daily goal is 3,040 ml") {
		t.Fatalf("expected recomputed goal, got %q", out)
	}
	out = mustRun(t, "--db", path, "profile", "show")
	if !strings.Contains(out, "Weight: 80.0 kg") || !strings.Contains(out, "Activity: high") || !strings.Contains(out, "Awake: 06:30-22:00") {
		t.Fatalf("unexpected profile %q", out)
	}

	if _, err := runCLI(t, "--db", path, "profile", "set", "--sleep", "05:00"); err == nil {
		t.Fatalf("expected sleep before wake to be rejected")
	}
	if _, err := runCLI(t, "--db", path, "profile", "set", "--activity", "extreme"); err == nil {
		t.Fatalf("expected unknown activity to be rejected")
	}

	mustRun(t, "--db", path, "profile", "set", "--goal-override", "3l")
	out = mustRun(t, "--db", path, "goal")
	if !strings.Contains(out, "Goal: 3,000 ml (override)") {
		t.Fatalf("expected override goal, got %q", out)
	}
}

func TestProfileYAMLRoundTrip(t *testing.T) {
	path := newCLIDB(t)
	mustRun(t, "--db", path, "profile", "set", "--units", "imperial", "--weight", "160lb")

	file := filepath.Join(t.TempDir(), "profile.yaml")
	mustRun(t, "--db", path, "profile", "export", "--out", file)

	other := newCLIDB(t)
	mustRun(t, "--db", other, "profile", "import", "--file", file)
	out := mustRun(t, "--db", other, "profile", "show")
	if !strings.Contains(out, "Weight: 160.0 lb") || !strings.Contains(out, "Units: imperial") {
		t.Fatalf("unexpected imported profile %q", out)
	}
}

func TestWeatherAndWorkoutRaiseGoal(t *testing.T) {
	path := newCLIDB(t)
	mustRun(t, "--db", path, "profile", "set", "--weather-adjust", "--workout-adjust")

	out := mustRun(t, "--db", path, "weather", "set", "--temp", "27", "--humidity", "75")
	if !strings.Contains(out, "weather: +400 ml") {
		t.Fatalf("expected weather adjustment, got %q", out)
	}
	out = mustRun(t, "--db", path, "workout", "add", "--minutes", "45")
	if !strings.Contains(out, "workout: +540 ml") || !strings.Contains(out, "Goal: 3,390 ml") {
		t.Fatalf("expected workout adjustment, got %q", out)
	}

	if _, err := runCLI(t, "--db", path, "weather", "set", "--temp", "20", "--humidity", "140"); err == nil {
		t.Fatalf("expected humidity above 100 to be rejected")
	}
}

func TestSyncImportReplacesRange(t *testing.T) {
	path := newCLIDB(t)
	mustRun(t, "--db", path, "log", "200")

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	records := []map[string]any{
		{"id": "watch-1", "at": midnight, "volume_ml": 300},
		{"at": midnight, "volume_ml": 0},
		{"at": midnight.AddDate(0, 0, -3), "volume_ml": 900},
	}
	raw, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal records: %v", err)
	}
	file := filepath.Join(t.TempDir(), "sync.json")
	if err := os.WriteFile(file, raw, 0o644); err != nil {
		t.Fatalf("write sync file: %v", err)
	}

	out := mustRun(t, "--db", path, "sync", "import", "--file", file)
	if !strings.Contains(out, "Synced 1 of 3 record(s)") {
		t.Fatalf("unexpected sync output %q", out)
	}
	// A second import of the same file is a no-op replacement.
	mustRun(t, "--db", path, "sync", "import", "--file", file)

	out = mustRun(t, "--db", path, "entry", "list", "--source", "synced")
	if strings.Count(out, "watch-1") != 1 {
		t.Fatalf("expected one synced entry, got %q", out)
	}
	var status service.TodayStatus
	if err := json.Unmarshal([]byte(mustRun(t, "--db", path, "today", "--json")), &status); err != nil {
		t.Fatalf("decode today json: %v", err)
	}
	if status.TotalML != 500 {
		t.Fatalf("expected manual + synced total 500, got %d", status.TotalML)
	}
}

func TestSnapshotExportImport(t *testing.T) {
	src := newCLIDB(t)
	mustRun(t, "--db", src, "log", "400")
	mustRun(t, "--db", src, "log", "600")

	file := filepath.Join(t.TempDir(), "snap.yaml")
	mustRun(t, "--db", src, "snapshot", "export", "--format", "yaml", "--out", file)

	dst := newCLIDB(t)
	out := mustRun(t, "--db", dst, "snapshot", "import", "--format", "yaml", "--file", file)
	if !strings.Contains(out, "Imported 2 entries") {
		t.Fatalf("unexpected import output %q", out)
	}
	out = mustRun(t, "--db", dst, "snapshot", "import", "--format", "yaml", "--file", file)
	if !strings.Contains(out, "nothing imported") {
		t.Fatalf("expected stale snapshot to be skipped, got %q", out)
	}
	out = mustRun(t, "--db", dst, "achievements")
	if !strings.Contains(out, "[x] First sip") {
		t.Fatalf("expected imported achievement, got %q", out)
	}
}

func TestRemindPlanAndList(t *testing.T) {
	path := newCLIDB(t)
	mustRun(t, "--db", path, "profile", "set", "--wake", "00:00", "--sleep", "24:00")

	out := mustRun(t, "--db", path, "remind", "plan", "--json")
	var plan []map[string]any
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("decode plan: %v\n%s", err, out)
	}
	if len(plan) == 0 {
		t.Fatalf("expected reminders for an all-day awake window")
	}
	out = mustRun(t, "--db", path, "remind", "list")
	if strings.Contains(out, "No reminders scheduled") {
		t.Fatalf("expected outbox rows after plan, got %q", out)
	}

	mustRun(t, "--db", path, "profile", "set", "--reminders=false")
	out = mustRun(t, "--db", path, "remind", "list")
	if !strings.Contains(out, "No reminders scheduled") {
		t.Fatalf("disabling reminders must clear the outbox, got %q", out)
	}
	mustRun(t, "--db", path, "remind", "watch", "--once")
}

func TestConfigCommands(t *testing.T) {
	path := newCLIDB(t)
	mustRun(t, "--db", path, "config", "set", "textgen_model", "tiny")
	out := mustRun(t, "--db", path, "config", "get", "textgen_model")
	if strings.TrimSpace(out) != "tiny" {
		t.Fatalf("unexpected config value %q", out)
	}
	if _, err := runCLI(t, "--db", path, "config", "set", "api_key", "secret"); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
	out = mustRun(t, "--db", path, "config", "list")
	if !strings.Contains(out, "textgen_model\ttiny") {
		t.Fatalf("unexpected config list %q", out)
	}
}

func TestBackupAndDoctor(t *testing.T) {
	path := newCLIDB(t)
	mustRun(t, "--db", path, "log", "250")

	out := mustRun(t, "--db", path, "backup", "create")
	if !strings.Contains(out, "Created backup:") {
		t.Fatalf("unexpected backup output %q", out)
	}
	out = mustRun(t, "--db", path, "backup", "list")
	if strings.Count(out, ".db\t") != 1 {
		t.Fatalf("expected one backup listed, got %q", out)
	}

	out = mustRun(t, "--db", path, "doctor")
	if !strings.Contains(out, "Future entries: 0") {
		t.Fatalf("unexpected doctor output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out := mustRun(t, "version")
	if !strings.HasPrefix(out, "hydrate ") {
		t.Fatalf("unexpected version output %q", out)
	}
}
