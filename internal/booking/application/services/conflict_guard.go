package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/bookwell/internal/shared/application"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// CommitRequest asks the guard to persist a validated candidate.
type CommitRequest struct {
	Candidate *Candidate
	OwnerID   uuid.UUID
	Notes     string
	Vehicle   *domain.VehicleDetails
}

// ConflictGuardConfig tunes the commit path.
type ConflictGuardConfig struct {
	// LockWait bounds how long a commit queues behind another on the same slot.
	LockWait time.Duration
	// BreakerFailures consecutive persistence failures open the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration
}

// DefaultConflictGuardConfig returns the default commit settings.
func DefaultConflictGuardConfig() ConflictGuardConfig {
	return ConflictGuardConfig{
		LockWait:        2 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// ConflictGuard is the only writer of new bookings. Concurrent commits for
// one (service, instant) are serialised by a per-slot lock and backstopped
// by the partial unique index on active bookings; exactly one wins and the
// rest get domain.ErrConflict. It never retries.
type ConflictGuard struct {
	bookings domain.BookingRepository
	vehicles domain.VehicleRepository
	outbox   outbox.Repository
	uow      sharedApplication.UnitOfWork
	locker   lock.Locker
	clock    shareddomain.Clock
	config   ConflictGuardConfig
	breaker  *gobreaker.CircuitBreaker[*domain.Booking]
	logger   *slog.Logger
	metrics  observability.Metrics
}

// NewConflictGuard creates a ConflictGuard.
func NewConflictGuard(
	bookings domain.BookingRepository,
	vehicles domain.VehicleRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	clock shareddomain.Clock,
	config ConflictGuardConfig,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ConflictGuard {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	defaults := DefaultConflictGuardConfig()
	if config.LockWait <= 0 {
		config.LockWait = defaults.LockWait
	}
	if config.BreakerFailures == 0 {
		config.BreakerFailures = defaults.BreakerFailures
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = defaults.BreakerTimeout
	}

	g := &ConflictGuard{
		bookings: bookings,
		vehicles: vehicles,
		outbox:   outboxRepo,
		uow:      uow,
		locker:   locker,
		clock:    clock,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
	g.breaker = gobreaker.NewCircuitBreaker[*domain.Booking](gobreaker.Settings{
		Name:        "booking-commit",
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		// Losing a race is a normal outcome, not a persistence fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrConflict)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			g.metrics.Gauge(observability.MetricBreakerState, float64(to), observability.T("breaker", name))
		},
	})
	return g
}

// SlotKey identifies the lock for a (service, instant).
func SlotKey(serviceID int64, at time.Time) string {
	return fmt.Sprintf("booking:%d:%s", serviceID, domain.NormalizeInstant(at).Format(time.RFC3339))
}

// Commit persists the candidate as a pending booking, or returns
// domain.ErrConflict when another booking holds or wins the slot. Once the
// transaction starts it runs detached from ctx's cancellation and either
// commits in full or rolls back.
func (g *ConflictGuard) Commit(ctx context.Context, req CommitRequest) (*domain.Booking, error) {
	start := time.Now()
	b, err := g.commit(ctx, req)

	result := outcome(err)
	if errors.Is(err, lock.ErrTimeout) {
		result = "lock_timeout"
	}
	g.metrics.Counter(observability.MetricCommits, 1, observability.T(observability.OutcomeKey, result))
	g.metrics.Timing(observability.MetricCommitDuration, time.Since(start), observability.T(observability.OutcomeKey, result))

	logger := observability.LogOperation(g.logger, "booking.commit")
	switch {
	case err == nil:
		logger.InfoContext(ctx, "booking committed",
			"booking_id", b.ID(),
			"service_id", b.ServiceID(),
			"appointment_at", b.AppointmentAt(),
		)
	case errors.Is(err, domain.ErrConflict):
		logger.InfoContext(ctx, "booking lost slot race", "outcome", result)
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		logger.ErrorContext(ctx, "booking commit failed", observability.ErrorKey, err)
	}
	return b, err
}

func (g *ConflictGuard) commit(ctx context.Context, req CommitRequest) (*domain.Booking, error) {
	c := req.Candidate
	if c == nil || c.Service == nil {
		return nil, fmt.Errorf("%w: commit needs a validated candidate", domain.ErrInvalidInput)
	}
	now := g.clock.Now()

	var vehicle *domain.Vehicle
	var vehicleID *uuid.UUID
	if req.Vehicle != nil {
		v, err := domain.NewVehicle(req.OwnerID, *req.Vehicle, now)
		if err != nil {
			return nil, err
		}
		id := v.ID()
		vehicle, vehicleID = v, &id
	}

	b, err := domain.NewBooking(c.Service.ID(), req.OwnerID, c.At, req.Notes, vehicleID, now)
	if err != nil {
		return nil, err
	}

	lockStart := time.Now()
	release, err := g.locker.Acquire(ctx, SlotKey(b.ServiceID(), b.AppointmentAt()), g.config.LockWait)
	g.metrics.Timing(observability.MetricLockWait, time.Since(lockStart))
	switch {
	case errors.Is(err, lock.ErrTimeout):
		// The holder may still roll back and leave the slot free.
		// Callers re-query free slots rather than retry blindly.
		return nil, fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case err != nil:
		return nil, unavailable("acquire slot lock", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			g.logger.WarnContext(ctx, "release slot lock", observability.ErrorKey, err)
		}
	}()

	// The caller may still walk away before anything is written.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txCtx := context.WithoutCancel(ctx)

	committed, err := g.breaker.Execute(func() (*domain.Booking, error) {
		return g.insert(txCtx, b, vehicle)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	committed.ClearDomainEvents()
	return committed, nil
}

func (g *ConflictGuard) insert(ctx context.Context, b *domain.Booking, vehicle *domain.Vehicle) (*domain.Booking, error) {
	err := sharedApplication.WithUnitOfWork(ctx, g.uow, func(txCtx context.Context) error {
		existing, err := g.bookings.FindActiveAt(txCtx, b.ServiceID(), b.AppointmentAt())
		if err != nil {
			return unavailable("re-check occupancy", err)
		}
		if existing != nil {
			return fmt.Errorf("slot held by booking %s: %w", existing.ID(), domain.ErrConflict)
		}

		if vehicle != nil {
			if err := g.vehicles.Insert(txCtx, vehicle); err != nil {
				return unavailable("insert vehicle", err)
			}
		}

		if err := g.bookings.Insert(txCtx, b); err != nil {
			if errors.Is(err, database.ErrConstraintViolation) {
				return fmt.Errorf("%w: %w", domain.ErrConflict, err)
			}
			return unavailable("insert booking", err)
		}

		events := b.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(txCtx, b.OwnerID()))
		msgs, err := outbox.FromEvents(events)
		if err != nil {
			return err
		}
		if err := g.outbox.SaveBatch(txCtx, msgs); err != nil {
			return unavailable("write outbox", err)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("commit booking", err)
	}
	return b, nil
}

// BreakerState reports the commit circuit breaker state.
func (g *ConflictGuard) BreakerState() gobreaker.State {
	return g.breaker.State()
}
