package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

type mockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *mockBookingRepo) FindActive(ctx context.Context, serviceID int64, from, to time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, serviceID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Booking, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

type mockServiceRepo struct {
	mock.Mock
	domain.ServiceRepository
}

func (m *mockServiceRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Service), args.Error(1)
}

func (m *mockServiceRepo) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}
