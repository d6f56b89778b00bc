package api

import (
	"net/http"

	"github.com/go-chi/render"
)

type vehicleRequest struct {
	Brand       string `json:"brand" validate:"required,max=50"`
	Model       string `json:"model" validate:"required,max=50"`
	Year        int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Color       string `json:"color" validate:"max=30"`
	PlateNumber string `json:"plate_number" validate:"required,max=20"`
}

type bookingRequest struct {
	ServiceID int64           `json:"service_id" validate:"required,gt=0"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string          `json:"time" validate:"required,datetime=15:04"`
	Notes     string          `json:"notes" validate:"max=1000"`
	Vehicle   *vehicleRequest `json:"vehicle" validate:"omitempty"`
}

type statusRequest struct {
	Action string `json:"action" validate:"required,oneof=approve cancel reset"`
}

type createServiceRequest struct {
	Name                 string `json:"name" validate:"required,max=100"`
	DurationMinutes      int    `json:"duration_minutes" validate:"omitempty,gte=15,lte=480"`
	PriceMinor           int64  `json:"price_minor" validate:"gte=0"`
	InstallmentAvailable bool   `json:"installment_available"`
}

type updateServiceRequest struct {
	Name                 *string `json:"name" validate:"omitempty,max=100"`
	DurationMinutes      *int    `json:"duration_minutes" validate:"omitempty,gte=15,lte=480"`
	PriceMinor           *int64  `json:"price_minor" validate:"omitempty,gte=0"`
	Active               *bool   `json:"active"`
	InstallmentAvailable *bool   `json:"installment_available"`
}

// bind decodes and validates a JSON body. It writes the error response and
// returns false on failure.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		_ = render.Render(w, r, badRequest("request body must be valid JSON"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		_ = render.Render(w, r, validationError(err))
		return false
	}
	return true
}
