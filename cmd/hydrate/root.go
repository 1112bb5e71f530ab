package hydrate

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "hydrate tracks water intake and reminds you to drink",
	Long:  "hydrate is a local-first hydration tracker with adaptive daily goals, quests, streaks, achievements, and reminders that back off while you keep drinking.",
	// Usage is noise for runtime failures such as a stale snapshot.
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (default: $HYDRATE_DB_PATH or user config dir)")
}
