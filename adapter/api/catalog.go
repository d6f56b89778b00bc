package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
)

// listServices handles GET /api/v1/services[?all=true]
func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	services, err := s.handlers.ListServices.Handle(r.Context(), queries.ListServicesQuery{ActiveOnly: !all})
	if err != nil {
		s.fail(w, r, "list services", err)
		return
	}

	views := make([]serviceView, len(services))
	for i, svc := range services {
		views[i] = toServiceView(svc)
	}
	render.JSON(w, r, map[string]any{"services": views})
}

// createService handles POST /api/v1/services
func (s *Server) createService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if !s.bind(w, r, &req) {
		return
	}
	svc, err := s.handlers.CreateService.Handle(r.Context(), commands.CreateServiceCommand{
		Actor:                actorFrom(r.Context()),
		Name:                 req.Name,
		DurationMinutes:      req.DurationMinutes,
		PriceMinor:           req.PriceMinor,
		InstallmentAvailable: req.InstallmentAvailable,
	})
	if err != nil {
		s.fail(w, r, "create service", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toServiceView(*svc))
}

// updateService handles PATCH /api/v1/services/{serviceID}
func (s *Server) updateService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceIDParam(r)
	if !ok {
		_ = render.Render(w, r, badRequest("service id must be a positive integer"))
		return
	}
	var req updateServiceRequest
	if !s.bind(w, r, &req) {
		return
	}
	svc, err := s.handlers.UpdateService.Handle(r.Context(), commands.UpdateServiceCommand{
		Actor:                actorFrom(r.Context()),
		ServiceID:            id,
		Name:                 req.Name,
		DurationMinutes:      req.DurationMinutes,
		PriceMinor:           req.PriceMinor,
		Active:               req.Active,
		InstallmentAvailable: req.InstallmentAvailable,
	})
	if err != nil {
		s.fail(w, r, "update service", err)
		return
	}
	render.JSON(w, r, toServiceView(*svc))
}

// deleteService handles DELETE /api/v1/services/{serviceID}
func (s *Server) deleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceIDParam(r)
	if !ok {
		_ = render.Render(w, r, badRequest("service id must be a positive integer"))
		return
	}
	err := s.handlers.DeleteService.Handle(r.Context(), commands.DeleteServiceCommand{
		Actor:     actorFrom(r.Context()),
		ServiceID: id,
	})
	if err != nil {
		s.fail(w, r, "delete service", err)
		return
	}
	render.NoContent(w, r)
}
