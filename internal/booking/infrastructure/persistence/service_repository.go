package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
)

const serviceColumns = `id, name, duration_minutes, price_minor, active, installment_available, created_at, updated_at`

// ServiceRepository implements domain.ServiceRepository.
type ServiceRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewServiceRepository creates a catalog repository over conn.
func NewServiceRepository(conn database.Connection) *ServiceRepository {
	return &ServiceRepository{conn: conn, driver: conn.Driver()}
}

func (r *ServiceRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func scanService(row database.Row) (*domain.Service, error) {
	var (
		id, price            int64
		name                 string
		duration             int
		active, installments bool
		createdAt, updatedAt database.Timestamp
	)
	if err := row.Scan(&id, &name, &duration, &price, &active, &installments, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return domain.RehydrateService(id, name, duration, price, active, installments, createdAt.Time, updatedAt.Time), nil
}

// FindByID returns domain.ErrUnknownOrInactiveService when no such service
// exists. Inactive services are returned; callers check IsActive.
func (r *ServiceRepository) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	query := r.driver.Rebind(`SELECT ` + serviceColumns + ` FROM services WHERE id = ?`)
	s, err := scanService(r.exec(ctx).QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("service %d: %w", id, domain.ErrUnknownOrInactiveService)
	}
	if err != nil {
		return nil, fmt.Errorf("find service: %w", err)
	}
	return s, nil
}

// List returns services ordered by name.
func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	var args []any
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name`

	rows, err := r.exec(ctx).Query(ctx, r.driver.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// Insert stores s and assigns its ID. A duplicate name is reported as
// database.ErrConstraintViolation.
func (r *ServiceRepository) Insert(ctx context.Context, s *domain.Service) error {
	query := r.driver.Rebind(`INSERT INTO services
		(name, duration_minutes, price_minor, active, installment_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	var id int64
	err := r.exec(ctx).QueryRow(ctx, query,
		s.Name(),
		s.DurationMinutes(),
		s.PriceMinor(),
		s.IsActive(),
		s.InstallmentAvailable(),
		r.driver.TimeArg(s.CreatedAt()),
		r.driver.TimeArg(s.UpdatedAt()),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert service: %w", database.ClassifyWriteError(err))
	}
	s.AssignID(id)
	return nil
}

// Update writes every mutable field of s.
func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	query := r.driver.Rebind(`UPDATE services
		SET name = ?, duration_minutes = ?, price_minor = ?, active = ?, installment_available = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.exec(ctx).Exec(ctx, query,
		s.Name(),
		s.DurationMinutes(),
		s.PriceMinor(),
		s.IsActive(),
		s.InstallmentAvailable(),
		r.driver.TimeArg(s.UpdatedAt()),
		s.ID(),
	)
	if err != nil {
		return fmt.Errorf("update service: %w", database.ClassifyWriteError(err))
	}
	return requireAffected(res, "service")
}

// Delete removes the service row.
func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	query := r.driver.Rebind(`DELETE FROM services WHERE id = ?`)
	res, err := r.exec(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return requireAffected(res, "service")
}

var _ domain.ServiceRepository = (*ServiceRepository)(nil)
