package hydrate

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, time.Now(), doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile missing: %t\n", report.ProfileMissing)
			fmt.Fprintf(out, "Future entries: %d\n", report.FutureEntries)
			fmt.Fprintf(out, "Duplicate entry rows: %d\n", report.DuplicateEntryRows)
			fmt.Fprintf(out, "Unknown achievements: %d\n", report.UnknownAchievements)
			fmt.Fprintf(out, "Stale reminders: %d\n", report.StaleReminders)
			if doctorFix {
				fmt.Fprintf(out, "Removed stale reminders: %d\n", report.RemovedStaleReminders)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, time.Now(), false)
				if err != nil {
					return err
				}
			}
			if report.ProfileMissing || report.FutureEntries > 0 || report.StaleReminders > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove stale undelivered reminders")
}
