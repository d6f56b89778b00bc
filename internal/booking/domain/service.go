package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Catalog limits.
const (
	ServiceNameMinLen      = 2
	ServiceNameMaxLen      = 120
	ServiceMinDuration     = 15
	ServiceMaxDuration     = 600
	DefaultServiceDuration = 60
)

// Service is a bookable offering. Prices are in minor currency units.
type Service struct {
	id                   int64
	name                 string
	durationMinutes      int
	priceMinor           int64
	active               bool
	installmentAvailable bool
	createdAt            time.Time
	updatedAt            time.Time
}

// NewService creates an active service. The ID is assigned on insert.
func NewService(name string, durationMinutes int, priceMinor int64, installmentAvailable bool, now time.Time) (*Service, error) {
	s := &Service{
		active:               true,
		installmentAvailable: installmentAvailable,
		createdAt:            now.UTC(),
		updatedAt:            now.UTC(),
	}
	if err := s.Rename(name, now); err != nil {
		return nil, err
	}
	if err := s.SetDuration(durationMinutes, now); err != nil {
		return nil, err
	}
	if err := s.SetPrice(priceMinor, now); err != nil {
		return nil, err
	}
	return s, nil
}

// RehydrateService recreates a service from persistence.
func RehydrateService(id int64, name string, durationMinutes int, priceMinor int64, active, installmentAvailable bool, createdAt, updatedAt time.Time) *Service {
	return &Service{
		id:                   id,
		name:                 name,
		durationMinutes:      durationMinutes,
		priceMinor:           priceMinor,
		active:               active,
		installmentAvailable: installmentAvailable,
		createdAt:            createdAt.UTC(),
		updatedAt:            updatedAt.UTC(),
	}
}

func (s *Service) ID() int64                  { return s.id }
func (s *Service) Name() string               { return s.name }
func (s *Service) DurationMinutes() int       { return s.durationMinutes }
func (s *Service) PriceMinor() int64          { return s.priceMinor }
func (s *Service) IsActive() bool             { return s.active }
func (s *Service) InstallmentAvailable() bool { return s.installmentAvailable }
func (s *Service) CreatedAt() time.Time       { return s.createdAt }
func (s *Service) UpdatedAt() time.Time       { return s.updatedAt }

// AssignID sets the ID allocated by the repository.
func (s *Service) AssignID(id int64) { s.id = id }

// Rename validates and sets the display name.
func (s *Service) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < ServiceNameMinLen || n > ServiceNameMaxLen {
		return fmt.Errorf("%w: service name must be %d-%d characters", ErrInvalidInput, ServiceNameMinLen, ServiceNameMaxLen)
	}
	s.name = name
	s.touch(now)
	return nil
}

// SetDuration sets the appointment length in minutes.
func (s *Service) SetDuration(minutes int, now time.Time) error {
	if minutes < ServiceMinDuration || minutes > ServiceMaxDuration {
		return fmt.Errorf("%w: duration must be %d-%d minutes", ErrInvalidInput, ServiceMinDuration, ServiceMaxDuration)
	}
	s.durationMinutes = minutes
	s.touch(now)
	return nil
}

// SetPrice sets the price in minor units.
func (s *Service) SetPrice(minor int64, now time.Time) error {
	if minor < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	s.priceMinor = minor
	s.touch(now)
	return nil
}

// SetInstallmentAvailable toggles installment payment.
func (s *Service) SetInstallmentAvailable(v bool, now time.Time) {
	s.installmentAvailable = v
	s.touch(now)
}

// Activate makes the service bookable.
func (s *Service) Activate(now time.Time) {
	s.active = true
	s.touch(now)
}

// Deactivate hides the service from new bookings. Existing bookings stay.
func (s *Service) Deactivate(now time.Time) {
	s.active = false
	s.touch(now)
}

func (s *Service) touch(now time.Time) {
	s.updatedAt = now.UTC()
}
