package hydrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "List and correct logged drinks",
}

var (
	listDate     string
	listFromDate string
	listToDate   string
	listSource   string
	listLimit    int
	listJSON     bool
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListEntriesFilter{
			Date:     listDate,
			FromDate: listFromDate,
			ToDate:   listToDate,
			Source:   listSource,
			Limit:    listLimit,
		}
		return withDB(func(sqldb *sql.DB) error {
			entries, err := service.ListEntries(sqldb, filter)
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd, entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tML\tSOURCE\tNOTE")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\n", shortID(e.ID), e.At.Local().Format("2006-01-02 15:04"), e.VolumeML, e.Source, e.Note)
			}
			return nil
		})
	},
}

var (
	updateVolume string
	updateNote   string
)

var entryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an entry's volume or note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("volume") && !cmd.Flags().Changed("note") {
			return fmt.Errorf("set --volume and/or --note")
		}
		return withEngine(cmd, func(ctx context.Context, sqldb *sql.DB, eng *engine.Engine) error {
			id, err := service.ResolveEntryID(sqldb, args[0])
			if err != nil {
				return err
			}
			current, ok := findEntry(eng, id)
			if !ok {
				return fmt.Errorf("entry %s: %w", args[0], engine.ErrEntryNotFound)
			}
			volume, note := current.VolumeML, current.Note
			units := eng.Profile().Units
			if cmd.Flags().Changed("volume") {
				if volume, err = service.ParseVolume(updateVolume, service.DefaultVolumeUnit(units)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("note") {
				note = updateNote
			}
			res, err := eng.UpdateIntake(ctx, id, volume, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %s to %s\n", shortID(id), service.FormatVolume(res.Entry.VolumeML, units))
			printIntakeResult(cmd.OutOrStdout(), eng, res)
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, sqldb *sql.DB, eng *engine.Engine) error {
			id, err := service.ResolveEntryID(sqldb, args[0])
			if err != nil {
				return err
			}
			res, err := eng.DeleteIntake(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", shortID(id))
			printIntakeResult(cmd.OutOrStdout(), eng, res)
			return nil
		})
	},
}

func findEntry(eng *engine.Engine, id string) (model.IntakeEntry, bool) {
	for _, e := range eng.Entries() {
		if e.ID == id {
			return e, true
		}
	}
	return model.IntakeEntry{}, false
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryListCmd, entryUpdateCmd, entryDeleteCmd)

	entryListCmd.Flags().StringVar(&listDate, "date", "", "Filter by date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listFromDate, "from", "", "Filter from date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listToDate, "to", "", "Filter to date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listSource, "source", "", "Filter by source: manual or synced")
	entryListCmd.Flags().IntVar(&listLimit, "limit", 50, "Result limit")
	entryListCmd.Flags().BoolVar(&listJSON, "json", false, "Print entries as JSON")

	entryUpdateCmd.Flags().StringVar(&updateVolume, "volume", "", "New volume, e.g. 350 or 12fl-oz")
	entryUpdateCmd.Flags().StringVar(&updateNote, "note", "", "New note (empty clears it)")
}
