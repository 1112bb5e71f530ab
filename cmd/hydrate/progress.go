package hydrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var todayJSON bool

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's intake, quests, streak, and next reminder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, _ *sql.DB, eng *engine.Engine) error {
			refreshed := eng.RefreshDay(ctx)
			status := service.TodaySummary(ctx, eng, time.Now())
			if todayJSON {
				return printJSON(cmd, status)
			}
			m := eng.Messages()
			out := cmd.OutOrStdout()
			printUnlocked(out, refreshed.Unlocked)
			fmt.Fprintf(out, "Date: %s\n", status.Date)
			fmt.Fprintf(out, "Intake: %s of %s (%.1f%%)\n", m.FormatML(status.TotalML), m.FormatML(status.Goal.TotalML), status.PercentComplete)
			fmt.Fprintf(out, "Remaining: %s\n", m.FormatML(status.RemainingML))
			fmt.Fprintf(out, "Drinks: %d\n", status.EntryCount)
			fmt.Fprintf(out, "Streak: %d day(s) (longest %d)\n", status.Streak.Count, status.Streak.Longest)
			printQuests(cmd, m, status.Quests)
			if status.NextReminder != nil {
				fmt.Fprintf(out, "Next reminder: %s %s\n", formatClockTime(status.NextReminder.FireAt), status.NextReminder.Title)
			} else {
				fmt.Fprintln(out, "Next reminder: none")
			}
			return nil
		})
	},
}

var questsCmd = &cobra.Command{
	Use:   "quests",
	Short: "Show today's quests",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, _ *sql.DB, eng *engine.Engine) error {
			refreshed := eng.RefreshDay(ctx)
			printUnlocked(cmd.OutOrStdout(), refreshed.Unlocked)
			printQuests(cmd, eng.Messages(), service.QuestViews(refreshed.State, time.Now()))
			return nil
		})
	},
}

func printQuests(cmd *cobra.Command, m *engine.MessagePicker, quests []service.QuestView) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Quests:")
	for _, q := range quests {
		deadline := ""
		if q.DeadlineHour != nil {
			deadline = fmt.Sprintf(" by %02d:00", *q.DeadlineHour)
		}
		fmt.Fprintf(out, "  [%s] %s: %s / %s%s (+%d)\n", questMark(q.Status), q.Title, m.FormatML(q.ProgressML), m.FormatML(q.TargetML), deadline, q.Reward)
	}
}

func questMark(s model.QuestStatus) string {
	switch s {
	case model.QuestCompleted:
		return "x"
	case model.QuestExpired:
		return "-"
	default:
		return " "
	}
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the consecutive-day streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(_ context.Context, _ *sql.DB, eng *engine.Engine) error {
			s := eng.State().Streak
			fmt.Fprintf(cmd.OutOrStdout(), "Current: %d day(s)\n", s.Count)
			fmt.Fprintf(cmd.OutOrStdout(), "Longest: %d day(s)\n", s.Longest)
			if s.LastDay != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Last day: %s\n", s.LastDay)
			}
			return nil
		})
	},
}

var achievementsJSON bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(_ context.Context, _ *sql.DB, eng *engine.Engine) error {
			list := eng.State().Achievements
			if achievementsJSON {
				return printJSON(cmd, list)
			}
			unlocked := 0
			for _, a := range list {
				if a.Unlocked {
					unlocked++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %d of %d\n", unlocked, len(list))
			for _, a := range list {
				when := ""
				if a.Unlocked && a.UnlockedAt != nil {
					when = " (" + a.UnlockedAt.Local().Format("2006-01-02") + ")"
				}
				mark := " "
				if a.Unlocked {
					mark = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s: %s%s\n", mark, a.Title, a.Description, when)
			}
			return nil
		})
	},
}

var (
	historyFrom string
	historyTo   string
	historyJSON bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Daily totals and goal consistency over a date range (default last 7 days)",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		to, err := parseDateFlag("to", historyTo, now)
		if err != nil {
			return err
		}
		from, err := parseDateFlag("from", historyFrom, to.AddDate(0, 0, -6))
		if err != nil {
			return err
		}
		return withEngine(cmd, func(_ context.Context, sqldb *sql.DB, eng *engine.Engine) error {
			report, err := service.HistoryRange(sqldb, from, to, eng.Goal().TotalML)
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(cmd, report)
			}
			m := eng.Messages()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Range: %s..%s (goal %s)\n", report.FromDate, report.ToDate, m.FormatML(report.GoalML))
			fmt.Fprintln(out, "DATE\tML\tDRINKS\tGOAL")
			for _, d := range report.Days {
				met := ""
				if d.GoalMet {
					met = "met"
				}
				fmt.Fprintf(out, "%s\t%d\t%d\t%s\n", d.Date, d.TotalML, d.Entries, met)
			}
			fmt.Fprintf(out, "Total: %s over %d day(s) with entries\n", m.FormatML(report.TotalML), report.DaysWithEntries)
			fmt.Fprintf(out, "Average: %.0f ml/day\n", report.AverageMLPerDay)
			fmt.Fprintf(out, "Goal met: %d/%d days (%.1f%%), longest run %d\n", report.GoalMetDays, report.TotalDays, report.PercentGoalMet, report.LongestGoalRun)
			fmt.Fprintf(out, "Trend: %s (%+.0f ml/day)\n", report.Trend.Direction, report.Trend.SlopeMLPerDay)
			if report.RollingAvgML > 0 {
				fmt.Fprintf(out, "Last 7 days: %.0f ml/day\n", report.RollingAvgML)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, questsCmd, streakCmd, achievementsCmd, historyCmd)

	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Print status as JSON")
	achievementsCmd.Flags().BoolVar(&achievementsJSON, "json", false, "Print achievements as JSON")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "Start date YYYY-MM-DD (default 6 days before --to)")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "End date YYYY-MM-DD (default today)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the report as JSON")
}
