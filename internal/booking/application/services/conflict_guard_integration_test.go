package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/internal/booking/infrastructure/persistence"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
)

// passLocker grants every lock at once, leaving the database to arbitrate.
type passLocker struct{}

func (passLocker) Acquire(context.Context, string, time.Duration) (lock.Release, error) {
	return func(context.Context) error { return nil }, nil
}

type sqliteStack struct {
	conn      database.Connection
	bookings  *persistence.BookingRepository
	services  *persistence.ServiceRepository
	outbox    *outbox.SQLRepository
	validator *Validator
	guard     *ConflictGuard
}

func newSQLiteStack(t *testing.T, locker lock.Locker) *sqliteStack {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "bookwell.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)

	s := &sqliteStack{
		conn:     conn,
		bookings: persistence.NewBookingRepository(conn),
		services: persistence.NewServiceRepository(conn),
		outbox:   outbox.NewSQLRepository(conn),
	}
	svc, err := domain.NewService("Full detail", 60, 25000, false, now)
	require.NoError(t, err)
	require.NoError(t, s.services.Insert(ctx, svc))
	require.Equal(t, int64(1), svc.ID())

	clock := shareddomain.NewFixedClock(now)
	s.validator = NewValidator(s.services, s.bookings, testCalendar(t), clock, nil)
	s.guard = NewConflictGuard(
		s.bookings,
		persistence.NewVehicleRepository(conn),
		s.outbox,
		database.NewUnitOfWork(conn),
		locker,
		clock,
		ConflictGuardConfig{LockWait: 5 * time.Second},
		nil,
		nil,
	)
	return s
}

func (s *sqliteStack) race(t *testing.T, k int) (wins int, conflicts int) {
	t.Helper()
	ctx := context.Background()
	c, err := s.validator.Validate(ctx, proposal("2025-06-10", "14:00"))
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.guard.Commit(ctx, CommitRequest{Candidate: c, OwnerID: uuid.New()})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected commit error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()
	return wins, conflicts
}

func TestConflictGuard_RaceExactlyOneWinner(t *testing.T) {
	lockers := map[string]func() lock.Locker{
		"keyed mutex":    func() lock.Locker { return lock.NewKeyedMutex() },
		"database alone": func() lock.Locker { return passLocker{} },
	}

	for name, newLocker := range lockers {
		t.Run(name, func(t *testing.T) {
			for round := 0; round < 3; round++ {
				s := newSQLiteStack(t, newLocker())

				wins, conflicts := s.race(t, 12)

				assert.Equal(t, 1, wins)
				assert.Equal(t, 11, conflicts)

				active, err := s.bookings.FindActive(context.Background(), 1, slotAt.Add(-time.Hour), slotAt.Add(time.Hour))
				require.NoError(t, err)
				assert.Len(t, active, 1)

				msgs, err := s.outbox.GetUnpublished(context.Background(), 100, now.Add(time.Hour))
				require.NoError(t, err)
				assert.Len(t, msgs, 1, "losers must leave no outbox rows")
			}
		})
	}
}

func TestConflictGuard_TwoSimultaneousCommits(t *testing.T) {
	s := newSQLiteStack(t, lock.NewKeyedMutex())

	wins, conflicts := s.race(t, 2)

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	pending, err := s.bookings.ListByStatus(context.Background(), domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ServiceID())
	assert.Equal(t, slotAt, pending[0].AppointmentAt())
}

func TestConflictGuard_CancelFreesSlot(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStack(t, lock.NewKeyedMutex())

	c, err := s.validator.Validate(ctx, proposal("2025-06-10", "14:00"))
	require.NoError(t, err)
	first, err := s.guard.Commit(ctx, CommitRequest{Candidate: c, OwnerID: uuid.New()})
	require.NoError(t, err)

	_, err = s.validator.Validate(ctx, proposal("2025-06-10", "14:00"))
	require.ErrorIs(t, err, domain.ErrSlotTaken)

	require.NoError(t, first.Cancel(now))
	require.NoError(t, s.bookings.UpdateStatus(ctx, first))

	c, err = s.validator.Validate(ctx, proposal("2025-06-10", "14:00"))
	require.NoError(t, err)
	_, err = s.guard.Commit(ctx, CommitRequest{Candidate: c, OwnerID: uuid.New()})
	assert.NoError(t, err)
}
