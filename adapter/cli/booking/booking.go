// Package booking holds the booking lifecycle commands.
package booking

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/adapter/cli"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// Cmd is the booking command group
var Cmd = &cobra.Command{
	Use:     "booking",
	Short:   "Manage bookings",
	Long:    `List your bookings, withdraw pending ones, and (as admin) approve, cancel or reset them.`,
	Aliases: []string{"bookings"},
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, cli.Usagef("invalid booking ID %q", arg)
	}
	return id, nil
}

// statusCmd builds approve, cancel and reset; they differ only in the action.
func statusCmd(action domain.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <booking-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cli.RequireApp()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			result, err := a.Container.ChangeStatusHandler.Handle(cmd.Context(), commands.ChangeStatusCommand{
				Actor:     a.Actor(),
				BookingID: id,
				Action:    action,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s: %s -> %s\n", result.BookingID, result.From, result.To)
			return nil
		},
	}
}

var deleteCmd = &cobra.Command{
	Use:   "delete <booking-id>",
	Short: "Delete a booking",
	Long: `Delete a booking. Customers may withdraw their own pending bookings, which
also removes the vehicle details they entered. Admins may delete any booking.`,
	Aliases: []string{"rm", "withdraw"},
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

		if err := a.Container.DeleteBookingHandler.Handle(cmd.Context(), commands.DeleteBookingCommand{
			Actor:     a.Actor(),
			BookingID: id,
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Booking %s deleted.\n", id)
		return nil
	},
}

func init() {
	Cmd.AddCommand(statusCmd(domain.ActionApprove, "Approve a pending booking (admin)"))
	Cmd.AddCommand(statusCmd(domain.ActionCancel, "Cancel a booking and free its slot (admin)"))
	Cmd.AddCommand(statusCmd(domain.ActionReset, "Return a booking to pending (admin)"))
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(listCmd)
}
