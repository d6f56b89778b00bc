package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/adapter/api"
	"github.com/felixgeelhaar/bookwell/internal/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the booking API until interrupted.

Callers identify themselves with the X-User-ID header; X-User-Role: admin
grants admin rights.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		c := a.Container

		cfg := api.DefaultServerConfig()
		switch {
		case serveAddr != "":
			cfg.Addr = serveAddr
		case c.Config.HTTPAddr != "":
			cfg.Addr = c.Config.HTTPAddr
		}

		srv := api.NewServer(cfg, APIHandlers(c), Logger(),
			api.WithHealth(c.Health),
			api.WithMetrics(c.Metrics, c.Metrics.Handler()),
		)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// APIHandlers selects the handlers the HTTP API drives from the container.
func APIHandlers(c *app.Container) api.Handlers {
	return api.Handlers{
		RequestBooking:       c.RequestBookingHandler,
		ChangeStatus:         c.ChangeStatusHandler,
		DeleteBooking:        c.DeleteBookingHandler,
		CreateService:        c.CreateServiceHandler,
		UpdateService:        c.UpdateServiceHandler,
		DeleteService:        c.DeleteServiceHandler,
		FreeSlots:            c.FreeSlotsHandler,
		BookedSlots:          c.BookedSlotsHandler,
		ListOwnerBookings:    c.ListOwnerBookingsHandler,
		ListBookingsByStatus: c.ListBookingsByStatusHandler,
		ListServices:         c.ListServicesHandler,
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
