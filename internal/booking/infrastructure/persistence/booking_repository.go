// Package persistence stores bookings, services and vehicles through the
// shared database.Connection, for PostgreSQL and SQLite alike.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
)

const bookingColumns = `id, service_id, owner_id, appointment_at, status, notes, vehicle_id, created_at, updated_at`

// BookingRepository implements domain.BookingRepository.
type BookingRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewBookingRepository creates a booking repository over conn.
func NewBookingRepository(conn database.Connection) *BookingRepository {
	return &BookingRepository{conn: conn, driver: conn.Driver()}
}

func (r *BookingRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// bookingRow is a bookings row as scanned from either driver.
type bookingRow struct {
	ID            string
	ServiceID     int64
	OwnerID       string
	AppointmentAt database.Timestamp
	Status        string
	Notes         string
	VehicleID     sql.NullString
	CreatedAt     database.Timestamp
	UpdatedAt     database.Timestamp
}

func scanBooking(row database.Row) (*domain.Booking, error) {
	var r bookingRow
	if err := row.Scan(
		&r.ID, &r.ServiceID, &r.OwnerID, &r.AppointmentAt, &r.Status,
		&r.Notes, &r.VehicleID, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return r.toDomain()
}

func (r bookingRow) toDomain() (*domain.Booking, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse booking id: %w", err)
	}
	ownerID, err := uuid.Parse(r.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	status, err := domain.ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}
	var vehicleID *uuid.UUID
	if r.VehicleID.Valid {
		v, err := uuid.Parse(r.VehicleID.String)
		if err != nil {
			return nil, fmt.Errorf("parse vehicle id: %w", err)
		}
		vehicleID = &v
	}
	return domain.RehydrateBooking(
		id, r.ServiceID, ownerID, r.AppointmentAt.Time, status, r.Notes,
		vehicleID, r.CreatedAt.Time, r.UpdatedAt.Time,
	), nil
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.exec(ctx).Query(ctx, r.driver.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// FindActive returns pending and approved bookings in [from, to).
func (r *BookingRepository) FindActive(ctx context.Context, serviceID int64, from, to time.Time) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status IN ('pending', 'approved')
		  AND appointment_at >= ? AND appointment_at < ?`
	args := []any{r.driver.TimeArg(from), r.driver.TimeArg(to)}
	if serviceID != domain.AnyService {
		query += ` AND service_id = ?`
		args = append(args, serviceID)
	}
	query += ` ORDER BY appointment_at, service_id`

	bookings, err := r.queryBookings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find active bookings: %w", err)
	}
	return bookings, nil
}

// FindActiveAt returns the active booking at exactly (serviceID, at), or nil.
func (r *BookingRepository) FindActiveAt(ctx context.Context, serviceID int64, at time.Time) (*domain.Booking, error) {
	query := r.driver.Rebind(`SELECT ` + bookingColumns + ` FROM bookings
		WHERE service_id = ? AND appointment_at = ? AND status IN ('pending', 'approved')`)
	b, err := scanBooking(r.exec(ctx).QueryRow(ctx, query, serviceID, r.driver.TimeArg(at)))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active booking: %w", err)
	}
	return b, nil
}

// Insert stores a new booking.
func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	var vehicleID sql.NullString
	if v := b.VehicleID(); v != nil {
		vehicleID = sql.NullString{String: v.String(), Valid: true}
	}

	query := r.driver.Rebind(`INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.exec(ctx).Exec(ctx, query,
		b.ID().String(),
		b.ServiceID(),
		b.OwnerID().String(),
		r.driver.TimeArg(b.AppointmentAt()),
		string(b.Status()),
		b.Notes(),
		vehicleID,
		r.driver.TimeArg(b.CreatedAt()),
		r.driver.TimeArg(b.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", database.ClassifyWriteError(err))
	}
	return nil
}

// UpdateStatus writes the booking's status. Reactivating a booking whose
// slot has been taken again fails with database.ErrConstraintViolation.
func (r *BookingRepository) UpdateStatus(ctx context.Context, b *domain.Booking) error {
	query := r.driver.Rebind(`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`)
	res, err := r.exec(ctx).Exec(ctx, query, string(b.Status()), r.driver.TimeArg(b.UpdatedAt()), b.ID().String())
	if err != nil {
		return fmt.Errorf("update booking status: %w", database.ClassifyWriteError(err))
	}
	return requireAffected(res, "booking")
}

// Delete removes the booking row.
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.driver.Rebind(`DELETE FROM bookings WHERE id = ?`)
	res, err := r.exec(ctx).Exec(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return requireAffected(res, "booking")
}

// FindByID returns domain.ErrNotFound when the booking does not exist.
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := r.driver.Rebind(`SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`)
	b, err := scanBooking(r.exec(ctx).QueryRow(ctx, query, id.String()))
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

// ListByOwner returns the owner's bookings, newest appointment first.
func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error) {
	bookings, err := r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE owner_id = ? ORDER BY appointment_at DESC`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list owner bookings: %w", err)
	}
	return bookings, nil
}

// ListByStatus returns bookings in status, soonest first.
func (r *BookingRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Booking, error) {
	bookings, err := r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status = ? ORDER BY appointment_at, service_id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list %s bookings: %w", status, err)
	}
	return bookings, nil
}

// CountByService counts bookings of any status for the service.
func (r *BookingRepository) CountByService(ctx context.Context, serviceID int64) (int, error) {
	query := r.driver.Rebind(`SELECT COUNT(*) FROM bookings WHERE service_id = ?`)
	var n int
	if err := r.exec(ctx).QueryRow(ctx, query, serviceID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func requireAffected(res database.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

var _ domain.BookingRepository = (*BookingRepository)(nil)
