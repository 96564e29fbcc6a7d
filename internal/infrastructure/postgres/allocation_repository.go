package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo implementación de AllocationRepository sobre PostgreSQL
// (usable con pool o tx). Solo el ledger escribe aquí, dentro de su tx.
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador de asignaciones. Pasar pool o tx (Querier).
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

const allocationColumns = `location_id, batch_id, product_id, quantity, updated_at`

// Get obtiene la asignación lote↔ubicación; en cero si no existe.
func (r *AllocationRepo) Get(locationID, batchID string) (*entity.Allocation, error) {
	return r.get(locationID, batchID, false)
}

// GetForUpdate obtiene la asignación y bloquea la fila (SELECT FOR UPDATE).
func (r *AllocationRepo) GetForUpdate(locationID, batchID string) (*entity.Allocation, error) {
	return r.get(locationID, batchID, true)
}

func (r *AllocationRepo) get(locationID, batchID string, forUpdate bool) (*entity.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE location_id = $1 AND batch_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var a entity.Allocation
	err := r.q.QueryRow(context.Background(), query, locationID, batchID).Scan(
		&a.LocationID, &a.BatchID, &a.ProductID, &a.Quantity, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Allocation{LocationID: locationID, BatchID: batchID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return &a, nil
}

// Upsert inserta o actualiza la cantidad de la asignación.
func (r *AllocationRepo) Upsert(a *entity.Allocation) error {
	query := `
		INSERT INTO allocations (location_id, batch_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (location_id, batch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, a.LocationID, a.BatchID, a.ProductID, a.Quantity)
	if err != nil {
		return fmt.Errorf("upsert allocation: %w", err)
	}
	return nil
}

// ListByLocation devuelve las asignaciones de una ubicación.
func (r *AllocationRepo) ListByLocation(locationID string) ([]*entity.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE location_id = $1 ORDER BY batch_id`
	return r.list(query, locationID)
}

// ListByBatch devuelve las asignaciones de un lote en todas las ubicaciones.
func (r *AllocationRepo) ListByBatch(batchID string) ([]*entity.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE batch_id = $1 ORDER BY location_id`
	return r.list(query, batchID)
}

// ListByProduct devuelve las asignaciones de un producto.
func (r *AllocationRepo) ListByProduct(productID string) ([]*entity.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE product_id = $1 ORDER BY location_id, batch_id`
	return r.list(query, productID)
}

// ListByWarehouse devuelve las asignaciones vivas de una bodega, opcionalmente
// filtradas por producto; es el snapshot con que arranca un conteo.
func (r *AllocationRepo) ListByWarehouse(warehouseID, productID string) ([]*entity.Allocation, error) {
	query := `
		SELECT a.location_id, a.batch_id, a.product_id, a.quantity, a.updated_at
		FROM allocations a
		JOIN locations l ON l.id = a.location_id
		WHERE l.warehouse_id = $1 AND a.quantity > 0
		  AND ($2 = '' OR a.product_id = $2)
		ORDER BY a.location_id, a.batch_id`
	return r.list(query, warehouseID, productID)
}

func (r *AllocationRepo) list(query string, args ...any) ([]*entity.Allocation, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Allocation
	for rows.Next() {
		var a entity.Allocation
		if err := rows.Scan(&a.LocationID, &a.BatchID, &a.ProductID, &a.Quantity, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
