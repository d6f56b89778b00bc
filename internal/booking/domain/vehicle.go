package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
)

// Vehicle limits.
const (
	VehicleBrandMaxLen = 50
	VehicleModelMaxLen = 100
	VehicleColorMaxLen = 30
	VehiclePlateMaxLen = 20
	VehicleMinYear     = 1950
)

// VehicleDetails is the optional car description submitted with a booking.
type VehicleDetails struct {
	Brand string
	Model string
	// Year is zero when unknown.
	Year        int
	Color       string
	PlateNumber string
}

// Vehicle is a car sub-record owned by a booking's owner.
type Vehicle struct {
	shareddomain.BaseEntity
	ownerID uuid.UUID
	details VehicleDetails
}

// NewVehicle validates details. Years run from VehicleMinYear to next year.
func NewVehicle(ownerID uuid.UUID, details VehicleDetails, now time.Time) (*Vehicle, error) {
	details = VehicleDetails{
		Brand:       strings.TrimSpace(details.Brand),
		Model:       strings.TrimSpace(details.Model),
		Year:        details.Year,
		Color:       strings.TrimSpace(details.Color),
		PlateNumber: strings.TrimSpace(details.PlateNumber),
	}

	switch {
	case details.Brand == "" || utf8.RuneCountInString(details.Brand) > VehicleBrandMaxLen:
		return nil, fmt.Errorf("%w: vehicle brand is required (max %d characters)", ErrInvalidInput, VehicleBrandMaxLen)
	case details.Model == "" || utf8.RuneCountInString(details.Model) > VehicleModelMaxLen:
		return nil, fmt.Errorf("%w: vehicle model is required (max %d characters)", ErrInvalidInput, VehicleModelMaxLen)
	case utf8.RuneCountInString(details.Color) > VehicleColorMaxLen:
		return nil, fmt.Errorf("%w: vehicle color is limited to %d characters", ErrInvalidInput, VehicleColorMaxLen)
	case utf8.RuneCountInString(details.PlateNumber) > VehiclePlateMaxLen:
		return nil, fmt.Errorf("%w: plate number is limited to %d characters", ErrInvalidInput, VehiclePlateMaxLen)
	case details.Year != 0 && (details.Year < VehicleMinYear || details.Year > now.Year()+1):
		return nil, fmt.Errorf("%w: vehicle year %d out of range", ErrInvalidInput, details.Year)
	}

	return &Vehicle{
		BaseEntity: shareddomain.NewBaseEntity(now),
		ownerID:    ownerID,
		details:    details,
	}, nil
}

// RehydrateVehicle recreates a vehicle from persistence.
func RehydrateVehicle(id, ownerID uuid.UUID, details VehicleDetails, createdAt, updatedAt time.Time) *Vehicle {
	return &Vehicle{
		BaseEntity: shareddomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		ownerID:    ownerID,
		details:    details,
	}
}

func (v *Vehicle) OwnerID() uuid.UUID      { return v.ownerID }
func (v *Vehicle) Details() VehicleDetails { return v.details }
