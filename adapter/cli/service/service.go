// Package service holds the catalog commands.
package service

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/adapter/cli"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
)

// Cmd is the service command group
var Cmd = &cobra.Command{
	Use:     "service",
	Short:   "Manage the service catalog",
	Long:    `List bookable services and, as admin, add, update or delete them.`,
	Aliases: []string{"services"},
}

var (
	addDuration    int
	addPrice       int64
	addInstallment bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a service (admin)",
	Long: `Add a bookable service.

Examples:
  bookwell service add "Oil change" --price 4500 --as-admin
  bookwell service add "Full inspection" --duration 120 --price 15000 --installment --as-admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		svc, err := a.Container.CreateServiceHandler.Handle(cmd.Context(), commands.CreateServiceCommand{
			Actor:                a.Actor(),
			Name:                 args[0],
			DurationMinutes:      addDuration,
			PriceMinor:           addPrice,
			InstallmentAvailable: addInstallment,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Service created!")
		printService(cmd, *svc)
		return nil
	},
}

var listAll bool

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List services",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		services, err := a.Container.ListServicesHandler.Handle(cmd.Context(), queries.ListServicesQuery{ActiveOnly: !listAll})
		if err != nil {
			return err
		}
		if len(services) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No services.")
			return nil
		}
		for _, svc := range services {
			printService(cmd, svc)
		}
		return nil
	},
}

var (
	updateName        string
	updateDuration    int
	updatePrice       int64
	updateActive      bool
	updateInstallment bool
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a service (admin)",
	Long: `Change the fields given as flags. Deactivated services cannot be booked;
existing bookings are kept.

Examples:
  bookwell service update 3 --price 9900 --as-admin
  bookwell service update 3 --active=false --as-admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		update := commands.UpdateServiceCommand{Actor: a.Actor(), ServiceID: id}
		flags := cmd.Flags()
		if flags.Changed("name") {
			update.Name = &updateName
		}
		if flags.Changed("duration") {
			update.DurationMinutes = &updateDuration
		}
		if flags.Changed("price") {
			update.PriceMinor = &updatePrice
		}
		if flags.Changed("active") {
			update.Active = &updateActive
		}
		if flags.Changed("installment") {
			update.InstallmentAvailable = &updateInstallment
		}

		svc, err := a.Container.UpdateServiceHandler.Handle(cmd.Context(), update)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Service updated!")
		printService(cmd, *svc)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Delete a never-booked service (admin)",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := a.Container.DeleteServiceHandler.Handle(cmd.Context(), commands.DeleteServiceCommand{
			Actor:     a.Actor(),
			ServiceID: id,
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Service %d deleted.\n", id)
		return nil
	},
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Usagef("invalid service ID %q", arg)
	}
	return id, nil
}

func printService(cmd *cobra.Command, svc queries.ServiceDTO) {
	state := "active"
	if !svc.Active {
		state = "inactive"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s  %d min  %d.%02d  %s\n",
		svc.ID, svc.Name, svc.DurationMinutes, svc.PriceMinor/100, svc.PriceMinor%100, state)
}

func init() {
	addCmd.Flags().IntVar(&addDuration, "duration", 0, "duration in minutes (default 60)")
	addCmd.Flags().Int64Var(&addPrice, "price", 0, "price in minor units")
	addCmd.Flags().BoolVar(&addInstallment, "installment", false, "offer installment payment")

	listCmd.Flags().BoolVar(&listAll, "all", false, "include inactive services")

	updateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	updateCmd.Flags().IntVar(&updateDuration, "duration", 0, "duration in minutes")
	updateCmd.Flags().Int64Var(&updatePrice, "price", 0, "price in minor units")
	updateCmd.Flags().BoolVar(&updateActive, "active", true, "whether the service can be booked")
	updateCmd.Flags().BoolVar(&updateInstallment, "installment", false, "offer installment payment")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}
