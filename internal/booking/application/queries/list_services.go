package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// ListServicesQuery filters the catalog.
type ListServicesQuery struct {
	ActiveOnly bool
}

// ListServicesHandler lists the catalog ordered by name.
type ListServicesHandler struct {
	services domain.ServiceRepository
}

// NewListServicesHandler creates a ListServicesHandler.
func NewListServicesHandler(services domain.ServiceRepository) *ListServicesHandler {
	return &ListServicesHandler{services: services}
}

// Handle executes the ListServicesQuery.
func (h *ListServicesHandler) Handle(ctx context.Context, query ListServicesQuery) ([]ServiceDTO, error) {
	services, err := h.services.List(ctx, query.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceUnavailable, err)
	}
	dtos := make([]ServiceDTO, len(services))
	for i, s := range services {
		dtos[i] = ToServiceDTO(s)
	}
	return dtos, nil
}
