package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre PostgreSQL.
// Las ubicaciones las crea la configuración de bodega; aquí solo se leen.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, warehouse_id, zone, aisle, shelf, max_capacity, created_at`

// GetByID obtiene una ubicación; nil si no existe.
func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	return r.get(id, false)
}

// GetForUpdate bloquea la fila de la ubicación (candado del invariante de capacidad).
func (r *LocationRepo) GetForUpdate(id string) (*entity.Location, error) {
	return r.get(id, true)
}

func (r *LocationRepo) get(id string, forUpdate bool) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var l entity.Location
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.WarehouseID, &l.Zone, &l.Aisle, &l.Shelf, &l.MaxCapacity, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// ListByWarehouse devuelve las ubicaciones de una bodega ordenadas por posición.
func (r *LocationRepo) ListByWarehouse(warehouseID string) ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE warehouse_id = $1 ORDER BY zone, aisle, shelf`
	rows, err := r.q.Query(context.Background(), query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.WarehouseID, &l.Zone, &l.Aisle, &l.Shelf, &l.MaxCapacity, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
