package hydrate

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/hydrate-cli/internal/app"
	"github.com/saadjs/hydrate-cli/internal/service"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local hydrate database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			_, err := service.GetProfile(sqldb)
			switch {
			case errors.Is(err, service.ErrProfileNotFound):
				if err := service.SetProfile(sqldb, service.DefaultProfile()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Created default profile (edit with `hydrate profile set`)")
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized hydrate database at %s\n", path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}
