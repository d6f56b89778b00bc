package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		applied, err := migrations.Run(cmd.Context(), a.Container.DBConn)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(applied) == 0 {
			fmt.Fprintf(out, "Schema is up to date (%s).\n", a.Container.DBDriver)
			return nil
		}
		for _, version := range applied {
			fmt.Fprintf(out, "applied %s\n", version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
