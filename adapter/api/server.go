// Package api exposes the booking engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// Handlers are the application handlers the API drives.
type Handlers struct {
	RequestBooking       *commands.RequestBookingHandler
	ChangeStatus         *commands.ChangeStatusHandler
	DeleteBooking        *commands.DeleteBookingHandler
	CreateService        *commands.CreateServiceHandler
	UpdateService        *commands.UpdateServiceHandler
	DeleteService        *commands.DeleteServiceHandler
	FreeSlots            *queries.FreeSlotsHandler
	BookedSlots          *queries.BookedSlotsHandler
	ListOwnerBookings    *queries.ListOwnerBookingsHandler
	ListBookingsByStatus *queries.ListBookingsByStatusHandler
	ListServices         *queries.ListServicesHandler
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	server   *http.Server
	logger   *slog.Logger
	handlers Handlers
	validate *validator.Validate
	health   *observability.HealthRegistry
	metrics  observability.Metrics
	exporter http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServerOption customises a Server.
type ServerOption func(*Server)

// WithHealth serves the registry on /health.
func WithHealth(health *observability.HealthRegistry) ServerOption {
	return func(s *Server) { s.health = health }
}

// WithMetrics records request metrics and serves exporter on /metrics.
func WithMetrics(metrics observability.Metrics, exporter http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = metrics
		s.exporter = exporter
	}
}

// NewServer creates the API server.
func NewServer(cfg ServerConfig, handlers Handlers, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:   logger,
		handlers: handlers,
		validate: newValidator(),
		health:   observability.NewHealthRegistry(),
		metrics:  observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlation)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.exporter != nil {
		r.Handle("/metrics", s.exporter)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(actorFromHeaders)

		r.Get("/services", s.listServices)
		r.Post("/services", s.createService)
		r.Patch("/services/{serviceID}", s.updateService)
		r.Delete("/services/{serviceID}", s.deleteService)
		r.Get("/services/{serviceID}/free-slots", s.freeSlots)
		r.Get("/booked-slots", s.bookedSlots)

		r.Post("/bookings", s.requestBooking)
		r.Get("/bookings/mine", s.myBookings)
		r.Post("/bookings/{bookingID}/status", s.changeStatus)
		r.Delete("/bookings/{bookingID}", s.deleteBooking)

		r.Get("/admin/bookings", s.dashboard)
	})
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := s.health.Check(r.Context())
	status := http.StatusOK
	if result.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	render.Status(r, status)
	render.JSON(w, r, result)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}
