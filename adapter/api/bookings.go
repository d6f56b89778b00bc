package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// fail renders err, logging it when it is not a domain outcome.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := errorResponse(err)
	if resp.Status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), op+" failed", "error", err)
	}
	_ = render.Render(w, r, resp)
}

func dateParam(r *http.Request) (domain.Date, error) {
	return domain.ParseDate(r.URL.Query().Get("date"))
}

func serviceIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	return id, err == nil && id > 0
}

// freeSlots handles GET /api/v1/services/{serviceID}/free-slots?date=YYYY-MM-DD
func (s *Server) freeSlots(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := serviceIDParam(r)
	if !ok {
		_ = render.Render(w, r, badRequest("service id must be a positive integer"))
		return
	}
	date, err := dateParam(r)
	if err != nil {
		s.fail(w, r, "free slots", err)
		return
	}

	result, err := s.handlers.FreeSlots.Handle(r.Context(), queries.FreeSlotsQuery{ServiceID: serviceID, Date: date})
	if err != nil {
		s.fail(w, r, "free slots", err)
		return
	}

	view := slotsView{
		ServiceID: result.ServiceID,
		Date:      result.Date.String(),
		Slots:     slotStrings(result.Slots),
		Closed:    result.Closed,
	}
	if result.Closed {
		view.ClosedReason = result.ClosedReason.String()
	}
	render.JSON(w, r, view)
}

// bookedSlots handles GET /api/v1/booked-slots?date=YYYY-MM-DD[&service_id=N]
func (s *Server) bookedSlots(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		s.fail(w, r, "booked slots", err)
		return
	}
	serviceID := domain.AnyService
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		serviceID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || serviceID <= 0 {
			_ = render.Render(w, r, badRequest("service_id must be a positive integer"))
			return
		}
	}

	slots, err := s.handlers.BookedSlots.Handle(r.Context(), queries.BookedSlotsQuery{ServiceID: serviceID, Date: date})
	if err != nil {
		s.fail(w, r, "booked slots", err)
		return
	}
	render.JSON(w, r, slotsView{ServiceID: serviceID, Date: date.String(), Slots: slotStrings(slots)})
}

// requestBooking handles POST /api/v1/bookings
func (s *Server) requestBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !s.bind(w, r, &req) {
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		s.fail(w, r, "request booking", err)
		return
	}
	slot, err := domain.ParseSlot(req.Time)
	if err != nil {
		s.fail(w, r, "request booking", err)
		return
	}

	cmd := commands.RequestBookingCommand{
		Actor:     actorFrom(r.Context()),
		ServiceID: req.ServiceID,
		Date:      date,
		Time:      slot,
		Notes:     req.Notes,
	}
	if req.Vehicle != nil {
		cmd.Vehicle = &domain.VehicleDetails{
			Brand:       req.Vehicle.Brand,
			Model:       req.Vehicle.Model,
			Year:        req.Vehicle.Year,
			Color:       req.Vehicle.Color,
			PlateNumber: req.Vehicle.PlateNumber,
		}
	}

	result, err := s.handlers.RequestBooking.Handle(r.Context(), cmd)
	if err != nil {
		s.fail(w, r, "request booking", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toRequestedView(result))
}

// myBookings handles GET /api/v1/bookings/mine
func (s *Server) myBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.handlers.ListOwnerBookings.Handle(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, "list bookings", err)
		return
	}
	render.JSON(w, r, map[string]any{"bookings": toBookingViews(bookings)})
}

// dashboard handles GET /api/v1/admin/bookings
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.handlers.ListBookingsByStatus.Handle(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, "admin dashboard", err)
		return
	}
	render.JSON(w, r, map[string]any{
		"pending":   toBookingViews(buckets.Pending),
		"approved":  toBookingViews(buckets.Approved),
		"cancelled": toBookingViews(buckets.Cancelled),
	})
}

func bookingIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		_ = render.Render(w, r, badRequest("booking id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// changeStatus handles POST /api/v1/bookings/{bookingID}/status
func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingIDParam(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !s.bind(w, r, &req) {
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		s.fail(w, r, "change status", err)
		return
	}

	result, err := s.handlers.ChangeStatus.Handle(r.Context(), commands.ChangeStatusCommand{
		Actor:     actorFrom(r.Context()),
		BookingID: id,
		Action:    action,
	})
	if err != nil {
		s.fail(w, r, "change status", err)
		return
	}
	render.JSON(w, r, map[string]string{
		"id":   result.BookingID.String(),
		"from": result.From.String(),
		"to":   result.To.String(),
	})
}

// deleteBooking handles DELETE /api/v1/bookings/{bookingID}
func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingIDParam(w, r)
	if !ok {
		return
	}
	err := s.handlers.DeleteBooking.Handle(r.Context(), commands.DeleteBookingCommand{
		Actor:     actorFrom(r.Context()),
		BookingID: id,
	})
	if err != nil {
		s.fail(w, r, "delete booking", err)
		return
	}
	render.NoContent(w, r)
}
