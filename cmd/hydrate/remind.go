package hydrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Plan, inspect, and deliver reminders",
}

var remindPlanJSON bool

var remindPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run a scheduling pass and store the batch in the outbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, _ *sql.DB, eng *engine.Engine) error {
			eng.RefreshDay(ctx)
			batch := eng.Reschedule(ctx)
			if remindPlanJSON {
				return printJSON(cmd, batch)
			}
			printReminders(cmd.OutOrStdout(), batch)
			return nil
		})
	},
}

var (
	remindListDue     bool
	remindListDeliver bool
)

var remindListCmd = &cobra.Command{
	Use:   "list",
	Short: "List undelivered reminders in the outbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		if remindListDeliver && !remindListDue {
			return fmt.Errorf("--deliver requires --due")
		}
		return withDB(func(sqldb *sql.DB) error {
			opts, err := engineOptions(cmd, sqldb)
			if err != nil {
				return err
			}
			ns := opts.Namespace
			if ns == "" {
				ns = engine.DefaultNamespace
			}
			now := time.Now()
			var items []model.Reminder
			if remindListDue {
				items, err = service.DueReminders(sqldb, ns, now)
			} else {
				items, err = service.PendingReminders(sqldb, ns)
			}
			if err != nil {
				return err
			}
			printReminders(cmd.OutOrStdout(), items)
			if !remindListDeliver {
				return nil
			}
			for _, r := range items {
				if err := service.MarkDelivered(sqldb, r.ID, now); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d reminder(s) delivered\n", len(items))
			return nil
		})
	},
}

var remindWatchOnce bool

var remindWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay in the foreground and print reminders as they come due",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			opts, err := engineOptions(cmd, sqldb)
			if err != nil {
				return err
			}
			eng, err := service.OpenEngine(sqldb, opts)
			if err != nil {
				return err
			}
			logf := opts.Logf
			live := engine.NewLiveScheduler(engine.LiveConfig{
				// Other hydrate processes write to the same database, so
				// every evaluation starts from what is stored.
				Inputs: func() engine.PassInput {
					fresh, err := service.OpenEngine(sqldb, opts)
					if err != nil {
						logf("reload engine: %v", err)
						return eng.LiveInputs()
					}
					return fresh.LiveInputs()
				},
				Deliver: &printDeliverer{
					w:      cmd.OutOrStdout(),
					outbox: service.NewReminderOutbox(sqldb, time.Now),
				},
				Messages: opts.Messages,
				Logf:     logf,
			})
			eng.AttachLive(live)

			ctx := commandContext(cmd)
			if remindWatchOnce {
				if r, wait := live.Evaluate(ctx); r == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing due; next check in %s\n", wait.Round(time.Minute))
				}
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Watching for reminders (Ctrl-C to stop)")
			if err := live.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	},
}

// printDeliverer writes reminders to the terminal and records them in the
// outbox as delivered.
type printDeliverer struct {
	w      io.Writer
	outbox *service.ReminderOutbox
}

func (d *printDeliverer) Deliver(ctx context.Context, r model.Reminder) error {
	prefix := ""
	if r.Escalation {
		prefix = "(!) "
	}
	fmt.Fprintf(d.w, "[%s] %s%s: %s\n", formatClockTime(r.FireAt), prefix, r.Title, r.Body)
	return d.outbox.Deliver(ctx, r)
}

func printReminders(w io.Writer, items []model.Reminder) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No reminders scheduled")
		return
	}
	fmt.Fprintln(w, "TIME\tMODE\tTITLE\tBODY")
	for _, r := range items {
		title := r.Title
		if r.Escalation {
			title += " (!)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.FireAt.Local().Format("2006-01-02 15:04"), r.Mode, title, r.Body)
	}
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.AddCommand(remindPlanCmd, remindListCmd, remindWatchCmd)

	remindPlanCmd.Flags().BoolVar(&remindPlanJSON, "json", false, "Print the batch as JSON")
	remindListCmd.Flags().BoolVar(&remindListDue, "due", false, "Only reminders whose time has come")
	remindListCmd.Flags().BoolVar(&remindListDeliver, "deliver", false, "Mark the listed due reminders delivered")
	remindWatchCmd.Flags().BoolVar(&remindWatchOnce, "once", false, "Evaluate once and exit")
}
