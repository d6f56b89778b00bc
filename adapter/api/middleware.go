package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// Header names. Authentication happens in front of this service; the
// gateway forwards the verified identity in these headers.
const (
	HeaderUserID        = "X-User-ID"
	HeaderUserRole      = "X-User-Role"
	HeaderCorrelationID = "X-Correlation-ID"
)

type actorKey struct{}

func actorFrom(ctx context.Context) domain.Actor {
	a, _ := ctx.Value(actorKey{}).(domain.Actor)
	return a
}

// actorFromHeaders attaches the calling actor. Requests without a user ID
// run as the anonymous actor and are refused by every operation that needs
// an identity.
func actorFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var actor domain.Actor
		if raw := r.Header.Get(HeaderUserID); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				_ = render.Render(w, r, badRequest(HeaderUserID+" must be a UUID"))
				return
			}
			actor = domain.Customer(id)
			if r.Header.Get(HeaderUserRole) == string(domain.RoleAdmin) {
				actor = domain.Admin(id)
			}
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		if actor.ID != uuid.Nil {
			ctx = observability.WithActorID(ctx, actor.ID.String())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// correlation propagates X-Correlation-ID, falling back to a fresh UUID.
func correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCorrelationID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := observability.WithCorrelationID(r.Context(), id)
		ctx = observability.WithRequestID(ctx, middleware.GetReqID(r.Context()))
		w.Header().Set(HeaderCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		tags := []observability.Tag{
			observability.T("method", r.Method),
			observability.T("route", route),
			observability.T("status", strconv.Itoa(status)),
		}
		s.metrics.Counter(observability.MetricHTTPRequests, 1, tags...)
		s.metrics.Timing(observability.MetricHTTPDuration, elapsed, tags[:2]...)

		level := s.logger.Info
		if status >= http.StatusInternalServerError {
			level = s.logger.Error
		}
		level("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"correlation_id", observability.CorrelationIDFromContext(r.Context()),
		)
	})
}
