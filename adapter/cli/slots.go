package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

var (
	slotsServiceID int64
	slotsDate      string
	slotsBooked    bool
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show free slots for a service on a day",
	Long: `Show the slots still open for booking.

Examples:
  bookwell slots --service 1 --date 2025-06-10
  bookwell slots --date 2025-06-10 --booked`,
	Aliases: []string{"free"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		date, err := domain.ParseDate(slotsDate)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if slotsBooked {
			booked, err := a.Container.BookedSlotsHandler.Handle(cmd.Context(), queries.BookedSlotsQuery{
				ServiceID: slotsServiceID,
				Date:      date,
			})
			if err != nil {
				return err
			}
			if len(booked) == 0 {
				fmt.Fprintf(out, "No bookings on %s.\n", date)
				return nil
			}
			fmt.Fprintf(out, "Booked on %s: %s\n", date, joinSlots(booked))
			return nil
		}

		if slotsServiceID <= 0 {
			return Usagef("--service is required")
		}
		result, err := a.Container.FreeSlotsHandler.Handle(cmd.Context(), queries.FreeSlotsQuery{
			ServiceID: slotsServiceID,
			Date:      date,
		})
		if err != nil {
			return err
		}
		if result.Closed {
			fmt.Fprintf(out, "Closed on %s (%s).\n", date, result.ClosedReason)
			return nil
		}
		if len(result.Slots) == 0 {
			fmt.Fprintf(out, "Fully booked on %s.\n", date)
			return nil
		}
		fmt.Fprintf(out, "Free on %s: %s\n", date, joinSlots(result.Slots))
		return nil
	},
}

func joinSlots(slots []domain.Slot) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

func init() {
	slotsCmd.Flags().Int64VarP(&slotsServiceID, "service", "s", 0, "service ID")
	slotsCmd.Flags().StringVarP(&slotsDate, "date", "d", "", "date (YYYY-MM-DD)")
	slotsCmd.Flags().BoolVar(&slotsBooked, "booked", false, "show occupied slots instead")
	_ = slotsCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(slotsCmd)
}
