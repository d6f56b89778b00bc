package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/services"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) FindActive(ctx context.Context, serviceID int64, from, to time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, serviceID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) FindActiveAt(ctx context.Context, serviceID int64, at time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, serviceID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Insert(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
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

func (m *mockBookingRepo) CountByService(ctx context.Context, serviceID int64) (int, error) {
	args := m.Called(ctx, serviceID)
	return args.Int(0), args.Error(1)
}

type mockServiceRepo struct {
	mock.Mock
}

func (m *mockServiceRepo) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Service), args.Error(1)
}

func (m *mockServiceRepo) Insert(ctx context.Context, s *domain.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockServiceRepo) Update(ctx context.Context, s *domain.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockServiceRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockVehicleRepo struct {
	mock.Mock
}

func (m *mockVehicleRepo) Insert(ctx context.Context, v *domain.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *mockVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int, now time.Time) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, errMsg, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// inlineUnitOfWork runs work directly on the caller's context.
type inlineUnitOfWork struct {
	commits   int
	rollbacks int
}

func (u *inlineUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func (u *inlineUnitOfWork) Commit(context.Context) error {
	u.commits++
	return nil
}

func (u *inlineUnitOfWork) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) Validate(ctx context.Context, p services.Proposal) (*services.Candidate, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Candidate), args.Error(1)
}

type mockCommitter struct {
	mock.Mock
}

func (m *mockCommitter) Commit(ctx context.Context, req services.CommitRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
