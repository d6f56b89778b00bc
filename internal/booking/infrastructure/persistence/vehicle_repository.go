package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
)

// VehicleRepository implements domain.VehicleRepository.
type VehicleRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewVehicleRepository creates a vehicle repository over conn.
func NewVehicleRepository(conn database.Connection) *VehicleRepository {
	return &VehicleRepository{conn: conn, driver: conn.Driver()}
}

func (r *VehicleRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Insert stores v. An unknown year is stored as NULL.
func (r *VehicleRepository) Insert(ctx context.Context, v *domain.Vehicle) error {
	d := v.Details()
	var year sql.NullInt64
	if d.Year != 0 {
		year = sql.NullInt64{Int64: int64(d.Year), Valid: true}
	}

	query := r.driver.Rebind(`INSERT INTO vehicles
		(id, owner_id, brand, model, year, color, plate_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.exec(ctx).Exec(ctx, query,
		v.ID().String(),
		v.OwnerID().String(),
		d.Brand,
		d.Model,
		year,
		d.Color,
		d.PlateNumber,
		r.driver.TimeArg(v.CreatedAt()),
		r.driver.TimeArg(v.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", database.ClassifyWriteError(err))
	}
	return nil
}

// FindByID returns domain.ErrNotFound when absent.
func (r *VehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	query := r.driver.Rebind(`SELECT id, owner_id, brand, model, year, color, plate_number, created_at, updated_at
		FROM vehicles WHERE id = ?`)

	var (
		rawID, rawOwner      string
		d                    domain.VehicleDetails
		year                 sql.NullInt64
		createdAt, updatedAt database.Timestamp
	)
	err := r.exec(ctx).QueryRow(ctx, query, id.String()).Scan(
		&rawID, &rawOwner, &d.Brand, &d.Model, &year, &d.Color, &d.PlateNumber, &createdAt, &updatedAt,
	)
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("vehicle %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}

	vehicleID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse vehicle id: %w", err)
	}
	ownerID, err := uuid.Parse(rawOwner)
	if err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	if year.Valid {
		d.Year = int(year.Int64)
	}
	return domain.RehydrateVehicle(vehicleID, ownerID, d, createdAt.Time, updatedAt.Time), nil
}

// Delete removes the vehicle. Deleting an absent vehicle is not an error.
func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.driver.Rebind(`DELETE FROM vehicles WHERE id = ?`)
	if _, err := r.exec(ctx).Exec(ctx, query, id.String()); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}

var _ domain.VehicleRepository = (*VehicleRepository)(nil)
