package hydrate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Move entries and progress between devices",
}

var (
	snapshotFormat string
	snapshotOut    string
	snapshotFile   string
)

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write entries and gamification state to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := service.ParseSnapshotFormat(snapshotFormat)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			snap, err := service.LoadSnapshot(sqldb)
			if err != nil {
				return err
			}
			if snapshotOut == "" {
				return service.EncodeSnapshot(cmd.OutOrStdout(), snap, format)
			}
			f, err := os.Create(snapshotOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", snapshotOut, err)
			}
			defer f.Close()
			if err := service.EncodeSnapshot(f, snap, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(snap.Entries), snapshotOut)
			return nil
		})
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Adopt a snapshot from another device when it is newer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(snapshotFile) == "" {
			return fmt.Errorf("--file is required")
		}
		format, err := service.ParseSnapshotFormat(snapshotFormat)
		if err != nil {
			return err
		}
		f, err := os.Open(snapshotFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", snapshotFile, err)
		}
		defer f.Close()
		snap, err := service.DecodeSnapshot(f, format)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			eng, err := openEngine(cmd, sqldb)
			if err != nil {
				return err
			}
			res, err := service.ImportSnapshot(commandContext(cmd), sqldb, eng, snap)
			if errors.Is(err, service.ErrStaleSnapshot) {
				fmt.Fprintln(cmd.OutOrStdout(), "Local state is as new or newer; nothing imported")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", len(eng.Entries()))
			printUnlocked(cmd.OutOrStdout(), res.Unlocked)
			printStateLine(cmd, eng)
			return nil
		})
	},
}

func printStateLine(cmd *cobra.Command, eng *engine.Engine) {
	m := eng.Messages()
	fmt.Fprintf(cmd.OutOrStdout(), "Today: %s of %s, streak %d\n", m.FormatML(eng.TodayTotal()), m.FormatML(eng.Goal().TotalML), eng.State().Streak.Count)
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd)

	snapshotCmd.PersistentFlags().StringVar(&snapshotFormat, "format", "json", "File format: json or yaml")
	snapshotExportCmd.Flags().StringVar(&snapshotOut, "out", "", "Output file (default stdout)")
	snapshotImportCmd.Flags().StringVar(&snapshotFile, "file", "", "Snapshot file to import")
}
