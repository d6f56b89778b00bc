// Package app wires bookwell's dependencies for the CLI, the HTTP server and
// the outbox worker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/services"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/internal/booking/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/bookwell/internal/shared/application"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/bookwell/pkg/config"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  shareddomain.Clock

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis backs the commit lock when configured.
	RedisClient *redis.Client
	Locker      lock.Locker

	Metrics  *observability.PrometheusMetrics
	Health   *observability.HealthRegistry
	Calendar *domain.BusinessCalendar

	// Repositories
	BookingRepo domain.BookingRepository
	ServiceRepo domain.ServiceRepository
	VehicleRepo domain.VehicleRepository
	OutboxRepo  outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork

	// Engine
	Validator     *services.Validator
	ConflictGuard *services.ConflictGuard

	// Command handlers
	RequestBookingHandler *commands.RequestBookingHandler
	ChangeStatusHandler   *commands.ChangeStatusHandler
	DeleteBookingHandler  *commands.DeleteBookingHandler
	CreateServiceHandler  *commands.CreateServiceHandler
	UpdateServiceHandler  *commands.UpdateServiceHandler
	DeleteServiceHandler  *commands.DeleteServiceHandler

	// Query handlers
	FreeSlotsHandler            *queries.FreeSlotsHandler
	BookedSlotsHandler          *queries.BookedSlotsHandler
	ListOwnerBookingsHandler    *queries.ListOwnerBookingsHandler
	ListBookingsByStatusHandler *queries.ListBookingsByStatusHandler
	ListServicesHandler         *queries.ListServicesHandler
}

// Option customises NewContainer.
type Option func(*Container)

// WithClock overrides the system clock.
func WithClock(clock shareddomain.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// NewContainer connects to the database, applies migrations and builds the
// handlers. Redis is optional in development; without it commits are
// serialised by an in-process lock, which is only safe for a single process.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Clock:   shareddomain.SystemClock{},
		Metrics: observability.NewPrometheusMetrics(),
		Health:  observability.NewHealthRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	calendar, err := NewCalendar(cfg)
	if err != nil {
		return nil, err
	}
	c.Calendar = calendar

	conn, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Health.Register("database", observability.PingChecker("database", false, conn.Ping))

	if err := c.initLocker(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.BookingRepo = persistence.NewBookingRepository(conn)
	c.ServiceRepo = persistence.NewServiceRepository(conn)
	c.VehicleRepo = persistence.NewVehicleRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	c.Validator = services.NewValidator(c.ServiceRepo, c.BookingRepo, c.Calendar, c.Clock, c.Metrics)
	c.ConflictGuard = services.NewConflictGuard(
		c.BookingRepo,
		c.VehicleRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Locker,
		c.Clock,
		services.ConflictGuardConfig{
			LockWait:        cfg.CommitLockWait,
			BreakerFailures: convert.IntToUint32Clamped(cfg.CommitBreakerFailures),
			BreakerTimeout:  cfg.CommitBreakerTimeout,
		},
		logger,
		c.Metrics,
	)
	c.Health.Register("commit_breaker", func(context.Context) observability.HealthCheckResult {
		if state := c.ConflictGuard.BreakerState(); state != gobreaker.StateClosed {
			return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: "breaker " + state.String()}
		}
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
	})

	c.RequestBookingHandler = commands.NewRequestBookingHandler(c.Validator, c.ConflictGuard)
	c.ChangeStatusHandler = commands.NewChangeStatusHandler(c.BookingRepo, c.OutboxRepo, c.UnitOfWork, c.Clock, c.Metrics)
	c.DeleteBookingHandler = commands.NewDeleteBookingHandler(c.BookingRepo, c.VehicleRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)
	c.CreateServiceHandler = commands.NewCreateServiceHandler(c.ServiceRepo, c.Clock)
	c.UpdateServiceHandler = commands.NewUpdateServiceHandler(c.ServiceRepo, c.Clock)
	c.DeleteServiceHandler = commands.NewDeleteServiceHandler(c.ServiceRepo, c.BookingRepo, c.UnitOfWork)

	c.FreeSlotsHandler = queries.NewFreeSlotsHandler(c.ServiceRepo, c.BookingRepo, c.Calendar, c.Metrics)
	c.BookedSlotsHandler = queries.NewBookedSlotsHandler(c.BookingRepo, c.Calendar)
	c.ListOwnerBookingsHandler = queries.NewListOwnerBookingsHandler(c.BookingRepo, c.ServiceRepo)
	c.ListBookingsByStatusHandler = queries.NewListBookingsByStatusHandler(c.BookingRepo, c.ServiceRepo)
	c.ListServicesHandler = queries.NewListServicesHandler(c.ServiceRepo)

	logger.Info("container ready",
		"driver", c.DBDriver,
		"distributed_lock", c.RedisClient != nil,
	)
	return c, nil
}

func (c *Container) initLocker(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		c.Locker = lock.NewKeyedMutex()
		return nil
	}

	client, err := lock.NewRedisClient(ctx, c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, commit lock is in-process only", "error", err)
		c.Locker = lock.NewKeyedMutex()
		return nil
	}

	c.RedisClient = client
	redisLock := lock.NewRedisLock(client)
	c.Locker = redisLock
	c.Health.Register("redis", observability.PingChecker("redis", c.Config.IsDevelopment(), redisLock.Ping))
	c.Logger.Info("connected to Redis")
	return nil
}

// NewCalendar builds the business calendar from configuration.
func NewCalendar(cfg *config.Config) (*domain.BusinessCalendar, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	calendar, err := domain.NewBusinessCalendar(domain.CalendarConfig{
		OpenHour:       cfg.OpenHour,
		CloseHour:      cfg.CloseHour,
		StepMinutes:    cfg.StepMinutes,
		ClosedWeekdays: cfg.ClosedWeekdays,
		ClosedDates:    cfg.ClosedDates,
		Location:       loc,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid business calendar: %w", err)
	}
	return calendar, nil
}

// OpenDatabase connects to the configured database and applies pending
// migrations. A sqlite:// DATABASE_URL is treated as a file path.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	dbCfg := database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
	}
	if dbCfg.Driver == "" || dbCfg.Driver == "auto" {
		dbCfg.Driver = database.DetectDriver(cfg.DatabaseURL)
	}
	if dbCfg.Driver == database.DriverSQLite && dbCfg.SQLitePath == "" && cfg.DatabaseURL != "" {
		dbCfg.SQLitePath = strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver())

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}
	return conn, nil
}

// Close releases all resources.
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err, "driver", c.DBDriver)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
