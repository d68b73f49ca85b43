// Package registry adapts the external vehicle registry. The engine only ever
// reads from it, to check that a disposal request references a real asset.
package registry

import (
	"context"
	"database/sql"
	"errors"

	"fleetauctiongo/internal/models"
)

type VehicleRegistry interface {
	// GetVehicle returns nil without error when the vehicle does not exist.
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
}

// PostgresRegistry reads the vehicles table maintained by the wider fleet
// back office.
type PostgresRegistry struct {
	db *sql.DB
}

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	const q = `SELECT id, vin, make, model, year, status FROM vehicles WHERE id = $1`
	v := &models.Vehicle{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.VIN, &v.Make, &v.Model, &v.Year, &v.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// StaticRegistry serves a fixed vehicle set; used by the memory store driver
// and the tests.
type StaticRegistry struct {
	vehicles map[string]models.Vehicle
}

func NewStaticRegistry(vehicles ...models.Vehicle) *StaticRegistry {
	m := make(map[string]models.Vehicle, len(vehicles))
	for _, v := range vehicles {
		m[v.ID] = v
	}
	return &StaticRegistry{vehicles: m}
}

func (r *StaticRegistry) GetVehicle(_ context.Context, id string) (*models.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}
