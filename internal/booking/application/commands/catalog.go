package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/bookwell/internal/shared/application"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
)

// CreateServiceCommand adds a catalog entry.
type CreateServiceCommand struct {
	Actor                domain.Actor
	Name                 string
	DurationMinutes      int
	PriceMinor           int64
	InstallmentAvailable bool
}

// CreateServiceHandler adds services to the catalog.
type CreateServiceHandler struct {
	services domain.ServiceRepository
	clock    shareddomain.Clock
}

// NewCreateServiceHandler creates a CreateServiceHandler.
func NewCreateServiceHandler(services domain.ServiceRepository, clock shareddomain.Clock) *CreateServiceHandler {
	return &CreateServiceHandler{services: services, clock: clock}
}

// Handle executes the CreateServiceCommand. A zero duration means the default.
func (h *CreateServiceHandler) Handle(ctx context.Context, cmd CreateServiceCommand) (*queries.ServiceDTO, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}
	duration := cmd.DurationMinutes
	if duration == 0 {
		duration = domain.DefaultServiceDuration
	}

	s, err := domain.NewService(cmd.Name, duration, cmd.PriceMinor, cmd.InstallmentAvailable, h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.services.Insert(ctx, s); err != nil {
		return nil, catalogWriteError(s.Name(), err)
	}

	dto := queries.ToServiceDTO(s)
	return &dto, nil
}

// UpdateServiceCommand changes the fields that are set.
type UpdateServiceCommand struct {
	Actor                domain.Actor
	ServiceID            int64
	Name                 *string
	DurationMinutes      *int
	PriceMinor           *int64
	Active               *bool
	InstallmentAvailable *bool
}

// UpdateServiceHandler edits catalog entries.
type UpdateServiceHandler struct {
	services domain.ServiceRepository
	clock    shareddomain.Clock
}

// NewUpdateServiceHandler creates an UpdateServiceHandler.
func NewUpdateServiceHandler(services domain.ServiceRepository, clock shareddomain.Clock) *UpdateServiceHandler {
	return &UpdateServiceHandler{services: services, clock: clock}
}

// Handle executes the UpdateServiceCommand. Deactivating a service stops new
// bookings; existing ones are untouched.
func (h *UpdateServiceHandler) Handle(ctx context.Context, cmd UpdateServiceCommand) (*queries.ServiceDTO, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}
	s, err := findService(ctx, h.services, cmd.ServiceID)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	if cmd.Name != nil {
		if err := s.Rename(*cmd.Name, now); err != nil {
			return nil, err
		}
	}
	if cmd.DurationMinutes != nil {
		if err := s.SetDuration(*cmd.DurationMinutes, now); err != nil {
			return nil, err
		}
	}
	if cmd.PriceMinor != nil {
		if err := s.SetPrice(*cmd.PriceMinor, now); err != nil {
			return nil, err
		}
	}
	if cmd.InstallmentAvailable != nil {
		s.SetInstallmentAvailable(*cmd.InstallmentAvailable, now)
	}
	if cmd.Active != nil {
		if *cmd.Active {
			s.Activate(now)
		} else {
			s.Deactivate(now)
		}
	}

	if err := h.services.Update(ctx, s); err != nil {
		return nil, catalogWriteError(s.Name(), err)
	}
	dto := queries.ToServiceDTO(s)
	return &dto, nil
}

// DeleteServiceCommand removes a catalog entry.
type DeleteServiceCommand struct {
	Actor     domain.Actor
	ServiceID int64
}

// DeleteServiceHandler removes services that have never been booked.
type DeleteServiceHandler struct {
	services domain.ServiceRepository
	bookings domain.BookingRepository
	uow      sharedApplication.UnitOfWork
}

// NewDeleteServiceHandler creates a DeleteServiceHandler.
func NewDeleteServiceHandler(services domain.ServiceRepository, bookings domain.BookingRepository, uow sharedApplication.UnitOfWork) *DeleteServiceHandler {
	return &DeleteServiceHandler{services: services, bookings: bookings, uow: uow}
}

// Handle executes the DeleteServiceCommand. Services with bookings in any
// status are refused with domain.ErrServiceInUse; deactivate them instead.
func (h *DeleteServiceHandler) Handle(ctx context.Context, cmd DeleteServiceCommand) error {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return err
	}
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if _, err := findService(txCtx, h.services, cmd.ServiceID); err != nil {
			return err
		}
		n, err := h.bookings.CountByService(txCtx, cmd.ServiceID)
		if err != nil {
			return persistence("count bookings", err)
		}
		if n > 0 {
			return fmt.Errorf("service %d has %d bookings: %w", cmd.ServiceID, n, domain.ErrServiceInUse)
		}
		if err := h.services.Delete(txCtx, cmd.ServiceID); err != nil {
			return persistence("delete service", err)
		}
		return nil
	})
	if err != nil {
		return persistence("delete service", err)
	}
	return nil
}

// findService maps a missing service onto domain.ErrNotFound; for catalog
// management absence is a lookup miss, not a booking rejection.
func findService(ctx context.Context, services domain.ServiceRepository, id int64) (*domain.Service, error) {
	s, err := services.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUnknownOrInactiveService) {
		return nil, fmt.Errorf("service %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, persistence("load service", err)
	}
	return s, nil
}

func catalogWriteError(name string, err error) error {
	if errors.Is(err, database.ErrConstraintViolation) {
		return fmt.Errorf("%w: a service named %q already exists", domain.ErrInvalidInput, name)
	}
	return persistence("write service", err)
}
