package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database, lock and breaker health",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}

		result := a.Container.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status: %s\n", result.Status)

		names := make([]string, 0, len(result.Checks))
		for name := range result.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			check := result.Checks[name]
			fmt.Fprintf(out, "  %-16s %s %s\n", name, check.Status, check.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
