package hydrate

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var (
	logDate string
	logTime string
	logNote string
	logJSON bool
)

var logCmd = &cobra.Command{
	Use:   "log <volume>",
	Short: "Log a drink, e.g. `hydrate log 500`, `hydrate log 12fl-oz`",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(logDate, logTime)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, _ *sql.DB, eng *engine.Engine) error {
			units := eng.Profile().Units
			ml, err := service.ParseVolume(args[0], service.DefaultVolumeUnit(units))
			if err != nil {
				return err
			}
			res, err := eng.LogIntake(ctx, engine.IntakeInput{
				At:       at,
				VolumeML: ml,
				Source:   model.SourceManual,
				Note:     logNote,
			})
			if err != nil {
				return err
			}
			if logJSON {
				return printJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (entry %s)\n", service.FormatVolume(res.Entry.VolumeML, units), shortID(res.Entry.ID))
			printIntakeResult(cmd.OutOrStdout(), eng, res)
			return nil
		})
	},
}

// printIntakeResult shows today's progress, new unlocks, and the next
// scheduled reminder after a change to the log.
func printIntakeResult(w io.Writer, eng *engine.Engine, res engine.IntakeResult) {
	m := eng.Messages()
	pct := 0.0
	if res.Goal.TotalML > 0 {
		pct = float64(res.TodayTotalML) / float64(res.Goal.TotalML) * 100
	}
	fmt.Fprintf(w, "Today: %s of %s (%.0f%%)\n", m.FormatML(res.TodayTotalML), m.FormatML(res.Goal.TotalML), pct)
	printUnlocked(w, res.Unlocked)
	if len(res.Reminders) > 0 {
		fmt.Fprintf(w, "Next reminder: %s\n", formatClockTime(res.Reminders[0].FireAt))
	} else {
		fmt.Fprintln(w, "No more reminders today")
	}
}

func printUnlocked(w io.Writer, unlocked []model.Achievement) {
	for _, a := range unlocked {
		fmt.Fprintf(w, "Achievement unlocked: %s - %s\n", a.Title, a.Description)
	}
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default today)")
	logCmd.Flags().StringVar(&logTime, "time", "", "Time HH:MM (default now)")
	logCmd.Flags().StringVar(&logNote, "note", "", "Optional note")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Print the result as JSON")
}
