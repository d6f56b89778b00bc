package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

var (
	bookServiceID int64
	bookDate      string
	bookTime      string
	bookNotes     string
	bookBrand     string
	bookModel     string
	bookYear      int
	bookColor     string
	bookPlate     string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a slot",
	Long: `Request a booking. The booking starts as pending until an admin approves it.
If someone else takes the slot first the command fails with a conflict;
query free slots again and pick another.

Examples:
  bookwell book --service 1 --date 2025-06-10 --time 14:00
  bookwell book -s 1 -d 2025-06-10 -t 14:30 --brand Volvo --model V70 --plate AB-123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		date, err := domain.ParseDate(bookDate)
		if err != nil {
			return err
		}
		slot, err := domain.ParseSlot(bookTime)
		if err != nil {
			return err
		}

		req := commands.RequestBookingCommand{
			Actor:     a.Actor(),
			ServiceID: bookServiceID,
			Date:      date,
			Time:      slot,
			Notes:     bookNotes,
		}
		if bookBrand != "" || bookModel != "" || bookPlate != "" {
			req.Vehicle = &domain.VehicleDetails{
				Brand:       bookBrand,
				Model:       bookModel,
				Year:        bookYear,
				Color:       bookColor,
				PlateNumber: bookPlate,
			}
		}

		result, err := a.Container.RequestBookingHandler.Handle(cmd.Context(), req)
		if err != nil {
			return err
		}

		loc := a.Container.Calendar.Location()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Booking requested!")
		fmt.Fprintf(out, "  ID: %s\n", result.BookingID)
		fmt.Fprintf(out, "  When: %s\n", result.AppointmentAt.In(loc).Format("Mon, Jan 2 2006 15:04"))
		fmt.Fprintf(out, "  Status: %s\n", result.Status)
		return nil
	},
}

func init() {
	bookCmd.Flags().Int64VarP(&bookServiceID, "service", "s", 0, "service ID")
	bookCmd.Flags().StringVarP(&bookDate, "date", "d", "", "date (YYYY-MM-DD)")
	bookCmd.Flags().StringVarP(&bookTime, "time", "t", "", "time (HH:MM)")
	bookCmd.Flags().StringVarP(&bookNotes, "notes", "n", "", "notes for the workshop")
	bookCmd.Flags().StringVar(&bookBrand, "brand", "", "vehicle brand")
	bookCmd.Flags().StringVar(&bookModel, "model", "", "vehicle model")
	bookCmd.Flags().IntVar(&bookYear, "year", 0, "vehicle year")
	bookCmd.Flags().StringVar(&bookColor, "color", "", "vehicle color")
	bookCmd.Flags().StringVar(&bookPlate, "plate", "", "vehicle plate number")
	_ = bookCmd.MarkFlagRequired("service")
	_ = bookCmd.MarkFlagRequired("date")
	_ = bookCmd.MarkFlagRequired("time")
	rootCmd.AddCommand(bookCmd)
}
