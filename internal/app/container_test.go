package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/bookwell/pkg/config"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:              "test",
		DatabaseDriver:      "sqlite",
		SQLitePath:          filepath.Join(t.TempDir(), "bookwell.db"),
		OpenHour:            13,
		CloseHour:           22,
		StepMinutes:         30,
		ClosedWeekdays:      []int{4},
		BusinessTimezone:    "UTC",
		CommitLockWait:      time.Second,
		OutboxBatchSize:     10,
		OutboxMaxRetries:    3,
		OutboxRetentionDays: 7,
	}
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, msg eventbus.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, msg.RoutingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestNewContainer_SQLite(t *testing.T) {
	ctx := context.Background()
	clock := shareddomain.NewFixedClock(time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC))

	c, err := NewContainer(ctx, testConfig(t), nil, WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.IsType(t, &lock.KeyedMutex{}, c.Locker)
	assert.Nil(t, c.RedisClient)

	health := c.Health.Check(ctx)
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "database")
	assert.Contains(t, health.Checks, "commit_breaker")
}

func TestContainer_BookingFlow(t *testing.T) {
	ctx := context.Background()
	clock := shareddomain.NewFixedClock(time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC))
	c, err := NewContainer(ctx, testConfig(t), nil, WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	admin := domain.Admin(uuid.New())
	customer := domain.Customer(uuid.New())
	date := domain.MustParseDate("2025-06-10")

	svc, err := c.CreateServiceHandler.Handle(ctx, commands.CreateServiceCommand{
		Actor:      admin,
		Name:       "Full service",
		PriceMinor: 12000,
	})
	require.NoError(t, err)

	booked, err := c.RequestBookingHandler.Handle(ctx, commands.RequestBookingCommand{
		Actor:     customer,
		ServiceID: svc.ID,
		Date:      date,
		Time:      domain.Slot{Hour: 14},
		Vehicle:   &domain.VehicleDetails{Brand: "Volvo", Model: "V70", PlateNumber: "AB-123"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, booked.Status)
	require.NotNil(t, booked.VehicleID)

	_, err = c.RequestBookingHandler.Handle(ctx, commands.RequestBookingCommand{
		Actor:     domain.Customer(uuid.New()),
		ServiceID: svc.ID,
		Date:      date,
		Time:      domain.Slot{Hour: 14},
	})
	require.ErrorIs(t, err, domain.ErrSlotTaken)

	free, err := c.FreeSlotsHandler.Handle(ctx, queries.FreeSlotsQuery{ServiceID: svc.ID, Date: date})
	require.NoError(t, err)
	assert.Len(t, free.Slots, 17)
	assert.NotContains(t, free.Slots, domain.Slot{Hour: 14})

	_, err = c.ChangeStatusHandler.Handle(ctx, commands.ChangeStatusCommand{
		Actor:     admin,
		BookingID: booked.BookingID,
		Action:    domain.ActionCancel,
	})
	require.NoError(t, err)

	free, err = c.FreeSlotsHandler.Handle(ctx, queries.FreeSlotsQuery{ServiceID: svc.ID, Date: date})
	require.NoError(t, err)
	assert.Len(t, free.Slots, 18)

	err = c.DeleteServiceHandler.Handle(ctx, commands.DeleteServiceCommand{Actor: admin, ServiceID: svc.ID})
	require.ErrorIs(t, err, domain.ErrServiceInUse)

	publisher := &recordingPublisher{}
	processor := c.NewOutboxProcessor(publisher, c.Logger)
	require.NoError(t, processor.ProcessOnce(ctx))
	assert.Equal(t, []string{domain.RoutingKeyBookingRequested, domain.RoutingKeyBookingStatusChanged}, publisher.keys)
}

func TestOpenDatabase_SQLiteURL(t *testing.T) {
	cfg := testConfig(t)
	path := cfg.SQLitePath
	cfg.DatabaseDriver = "auto"
	cfg.SQLitePath = ""
	cfg.DatabaseURL = "sqlite://" + path

	conn, err := OpenDatabase(context.Background(), cfg, observability.NewLogger(observability.DefaultLogConfig()))
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, database.DriverSQLite, conn.Driver())
	assert.FileExists(t, path)
}

func TestNewCalendar_Invalid(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenHour = 22
	cfg.CloseHour = 13

	_, err := NewCalendar(cfg)
	require.Error(t, err)
}

func TestNewEventPublisher_NoBroker(t *testing.T) {
	c := &Container{Config: testConfig(t), Logger: observability.NewLogger(observability.DefaultLogConfig())}
	publisher, err := c.NewEventPublisher()
	require.NoError(t, err)
	assert.IsType(t, &eventbus.NoopPublisher{}, publisher)
}
