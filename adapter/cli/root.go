package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

var (
	verbose bool
	asAdmin bool
	logger  *slog.Logger
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookwell",
	Short: "Bookwell - appointment booking for a single workshop",
	Long: `Bookwell books appointments against fixed business hours and closed days,
guaranteeing that no two active bookings share a service slot.

Customers query free slots and book them; admins approve, cancel, reset
and delete bookings and manage the service catalog.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx = context.WithValue(ctx, commandContextKey{}, info)
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(ctx)
		logger.Debug("command start",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Debug("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command and exits with a code derived from the
// error kind.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", domain.KindOf(err), err)
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error onto the process exit status.
func ExitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		return 64
	}

	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return 2
	case domain.KindUnknownOrInactiveService, domain.KindClosedDay, domain.KindPastAppointment, domain.KindOutsideBusinessHours:
		return 3
	case domain.KindSlotTaken, domain.KindConflict:
		return 4
	case domain.KindForbidden, domain.KindNotFound, domain.KindInvalidTransition, domain.KindServiceInUse:
		return 5
	case domain.KindPersistenceUnavailable:
		return 75
	default:
		return 1
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// Usagef reports a command-line usage mistake.
func Usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&asAdmin, "as-admin", false, "act with admin rights")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
