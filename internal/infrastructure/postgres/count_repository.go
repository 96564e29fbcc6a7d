package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.CountRepository = (*CountRepo)(nil)

// CountRepo implementación de CountRepository sobre PostgreSQL (usable con pool o tx).
// El conteo y sus ítems viven en inventory_counts / inventory_count_items.
type CountRepo struct {
	q Querier
}

// NewCountRepository construye el adaptador de conteos. Pasar pool o tx (Querier).
func NewCountRepository(q Querier) *CountRepo {
	return &CountRepo{q: q}
}

// Create persiste el encabezado del conteo (sin ítems: se pueblan en Start).
func (r *CountRepo) Create(c *entity.InventoryCount) error {
	query := `
		INSERT INTO inventory_counts (id, warehouse_id, product_id, scheduled_date, status, created_by, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.Scope.WarehouseID, c.Scope.ProductID, c.ScheduledDate,
		c.Status, c.CreatedBy, c.CreatedAt, c.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("create count: %w", err)
	}
	return nil
}

// GetByID obtiene el conteo con sus ítems; nil si no existe.
func (r *CountRepo) GetByID(id string) (*entity.InventoryCount, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene el conteo bloqueando su fila (SELECT FOR UPDATE).
func (r *CountRepo) GetForUpdate(id string) (*entity.InventoryCount, error) {
	return r.get(id, true)
}

func (r *CountRepo) get(id string, forUpdate bool) (*entity.InventoryCount, error) {
	query := `
		SELECT id, warehouse_id, product_id, scheduled_date, status, created_by, created_at, completed_at
		FROM inventory_counts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var c entity.InventoryCount
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.Scope.WarehouseID, &c.Scope.ProductID, &c.ScheduledDate,
		&c.Status, &c.CreatedBy, &c.CreatedAt, &c.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count: %w", err)
	}
	items, err := r.listItems(c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

// Update sincroniza encabezado e ítems (upsert por ítem; los ítems nunca se borran).
func (r *CountRepo) Update(c *entity.InventoryCount) error {
	query := `
		UPDATE inventory_counts
		SET status = $2, completed_at = $3
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, c.ID, c.Status, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("update count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update count: conteo %s no existe", c.ID)
	}
	for _, it := range c.Items {
		if err := r.upsertItem(it); err != nil {
			return err
		}
	}
	return nil
}

func (r *CountRepo) upsertItem(it *entity.CountItem) error {
	query := `
		INSERT INTO inventory_count_items
			(id, count_id, product_id, batch_id, location_id, system_quantity, counted_quantity, status, counted_by, counted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			counted_quantity = EXCLUDED.counted_quantity,
			status = EXCLUDED.status,
			counted_by = EXCLUDED.counted_by,
			counted_at = EXCLUDED.counted_at`
	_, err := r.q.Exec(context.Background(), query,
		it.ID, it.CountID, it.ProductID, it.BatchID, it.LocationID,
		it.SystemQuantity, it.CountedQuantity, it.Status, it.CountedBy, it.CountedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert count item: %w", err)
	}
	return nil
}

// ListActive devuelve los conteos en estado scheduled o in_progress.
func (r *CountRepo) ListActive() ([]*entity.InventoryCount, error) {
	query := `
		SELECT id, warehouse_id, product_id, scheduled_date, status, created_by, created_at, completed_at
		FROM inventory_counts
		WHERE status IN ('scheduled', 'in_progress')
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list active counts: %w", err)
	}
	defer rows.Close()

	var out []*entity.InventoryCount
	for rows.Next() {
		var c entity.InventoryCount
		if err := rows.Scan(
			&c.ID, &c.Scope.WarehouseID, &c.Scope.ProductID, &c.ScheduledDate,
			&c.Status, &c.CreatedBy, &c.CreatedAt, &c.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetItemForUpdate localiza un ítem y devuelve el conteo bloqueado y el ítem.
func (r *CountRepo) GetItemForUpdate(itemID string) (*entity.InventoryCount, *entity.CountItem, error) {
	var countID string
	err := r.q.QueryRow(context.Background(),
		`SELECT count_id FROM inventory_count_items WHERE id = $1`, itemID,
	).Scan(&countID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get count item: %w", err)
	}
	count, err := r.GetForUpdate(countID)
	if err != nil || count == nil {
		return nil, nil, err
	}
	for _, it := range count.Items {
		if it.ID == itemID {
			return count, it, nil
		}
	}
	return nil, nil, nil
}

func (r *CountRepo) listItems(countID string) ([]*entity.CountItem, error) {
	query := `
		SELECT id, count_id, product_id, batch_id, location_id, system_quantity, counted_quantity, status, counted_by, counted_at
		FROM inventory_count_items
		WHERE count_id = $1
		ORDER BY location_id, batch_id`
	rows, err := r.q.Query(context.Background(), query, countID)
	if err != nil {
		return nil, fmt.Errorf("list count items: %w", err)
	}
	defer rows.Close()

	var out []*entity.CountItem
	for rows.Next() {
		var it entity.CountItem
		var countedBy *string
		if err := rows.Scan(
			&it.ID, &it.CountID, &it.ProductID, &it.BatchID, &it.LocationID,
			&it.SystemQuantity, &it.CountedQuantity, &it.Status, &countedBy, &it.CountedAt,
		); err != nil {
			return nil, fmt.Errorf("scan count item: %w", err)
		}
		if countedBy != nil {
			it.CountedBy = *countedBy
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
