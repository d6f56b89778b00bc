package booking

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/adapter/cli"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings",
	Long: `List your own bookings, newest first.

With --all (admin) show every booking grouped by status.

Examples:
  bookwell booking list
  bookwell booking list --all --as-admin`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		loc := a.Container.Calendar.Location()
		out := cmd.OutOrStdout()

		if !listAll {
			bookings, err := a.Container.ListOwnerBookingsHandler.Handle(cmd.Context(), a.Actor())
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				fmt.Fprintln(out, "No bookings.")
				return nil
			}
			printBookings(out, bookings, loc)
			return nil
		}

		buckets, err := a.Container.ListBookingsByStatusHandler.Handle(cmd.Context(), a.Actor())
		if err != nil {
			return err
		}
		for _, group := range []struct {
			title    string
			bookings []queries.BookingDTO
		}{
			{"Pending", buckets.Pending},
			{"Approved", buckets.Approved},
			{"Cancelled", buckets.Cancelled},
		} {
			fmt.Fprintf(out, "%s (%d)\n", group.title, len(group.bookings))
			printBookings(out, group.bookings, loc)
		}
		return nil
	},
}

func printBookings(out io.Writer, bookings []queries.BookingDTO, loc *time.Location) {
	for _, b := range bookings {
		fmt.Fprintf(out, "  %s  %s  %-9s  %s\n",
			b.ID,
			b.AppointmentAt.In(loc).Format("2006-01-02 15:04"),
			b.Status,
			b.ServiceName,
		)
	}
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "show all bookings by status (admin)")
}
