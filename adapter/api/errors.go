package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// APIError is the error body returned by every endpoint.
type APIError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Reason  string       `json:"reason,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError describes one failed request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

var kindStatus = map[domain.Kind]int{
	domain.KindUnknownOrInactiveService: http.StatusUnprocessableEntity,
	domain.KindClosedDay:                http.StatusUnprocessableEntity,
	domain.KindPastAppointment:          http.StatusUnprocessableEntity,
	domain.KindOutsideBusinessHours:     http.StatusUnprocessableEntity,
	domain.KindSlotTaken:                http.StatusConflict,
	domain.KindConflict:                 http.StatusConflict,
	domain.KindNotFound:                 http.StatusNotFound,
	domain.KindForbidden:                http.StatusForbidden,
	domain.KindInvalidTransition:        http.StatusConflict,
	domain.KindPersistenceUnavailable:   http.StatusServiceUnavailable,
	domain.KindServiceInUse:             http.StatusConflict,
	domain.KindInvalidInput:             http.StatusBadRequest,
}

// errorResponse maps an application error onto its HTTP outcome.
// Internal errors never leak their message.
func errorResponse(err error) *APIError {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		return &APIError{
			Status:  http.StatusInternalServerError,
			Code:    kind.String(),
			Message: "internal error",
		}
	}

	e := &APIError{Status: status, Code: kind.String(), Message: err.Error()}
	if kind == domain.KindPersistenceUnavailable {
		// Driver errors carry SQL and connection details; the caller logs them.
		e.Message = "service temporarily unavailable, try again later"
	}
	var closed *domain.ClosedDayError
	if errors.As(err, &closed) {
		e.Reason = closed.Reason.String()
	}
	return e
}

func badRequest(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    domain.KindInvalidInput.String(),
		Message: message,
	}
}

func validationError(err error) *APIError {
	e := badRequest("request validation failed")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			e.Fields = append(e.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		return e
	}
	e.Message = err.Error()
	return e
}
