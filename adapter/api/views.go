package api

import (
	"time"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/commands"
	"github.com/felixgeelhaar/bookwell/internal/booking/application/queries"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

type bookingView struct {
	ID            string    `json:"id"`
	ServiceID     int64     `json:"service_id"`
	ServiceName   string    `json:"service_name,omitempty"`
	OwnerID       string    `json:"owner_id"`
	AppointmentAt time.Time `json:"appointment_at"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	VehicleID     string    `json:"vehicle_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBookingView(b queries.BookingDTO) bookingView {
	v := bookingView{
		ID:            b.ID.String(),
		ServiceID:     b.ServiceID,
		ServiceName:   b.ServiceName,
		OwnerID:       b.OwnerID.String(),
		AppointmentAt: b.AppointmentAt,
		Status:        b.Status.String(),
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
	}
	if b.VehicleID != nil {
		v.VehicleID = b.VehicleID.String()
	}
	return v
}

func toBookingViews(bs []queries.BookingDTO) []bookingView {
	views := make([]bookingView, len(bs))
	for i, b := range bs {
		views[i] = toBookingView(b)
	}
	return views
}

type requestedView struct {
	ID            string    `json:"id"`
	ServiceID     int64     `json:"service_id"`
	AppointmentAt time.Time `json:"appointment_at"`
	Status        string    `json:"status"`
	VehicleID     string    `json:"vehicle_id,omitempty"`
}

func toRequestedView(r *commands.RequestBookingResult) requestedView {
	v := requestedView{
		ID:            r.BookingID.String(),
		ServiceID:     r.ServiceID,
		AppointmentAt: r.AppointmentAt,
		Status:        r.Status.String(),
	}
	if r.VehicleID != nil {
		v.VehicleID = r.VehicleID.String()
	}
	return v
}

type serviceView struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	DurationMinutes      int    `json:"duration_minutes"`
	PriceMinor           int64  `json:"price_minor"`
	Active               bool   `json:"active"`
	InstallmentAvailable bool   `json:"installment_available"`
}

func toServiceView(s queries.ServiceDTO) serviceView {
	return serviceView{
		ID:                   s.ID,
		Name:                 s.Name,
		DurationMinutes:      s.DurationMinutes,
		PriceMinor:           s.PriceMinor,
		Active:               s.Active,
		InstallmentAvailable: s.InstallmentAvailable,
	}
}

type slotsView struct {
	ServiceID    int64    `json:"service_id,omitempty"`
	Date         string   `json:"date"`
	Slots        []string `json:"slots"`
	Closed       bool     `json:"closed"`
	ClosedReason string   `json:"closed_reason,omitempty"`
}

func slotStrings(slots []domain.Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
