package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, product_id, manufactured_on, expires_on, received_quantity, available_quantity, quality_state, created_at, created_by`

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.ProductID, b.ManufacturedOn, b.ExpiresOn,
		b.ReceivedQuantity, b.AvailableQuantity, b.QualityState,
		b.CreatedAt, b.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create batch: id duplicado %s: %w", b.ID, err)
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote; nil si no existe.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.get(id, true)
}

func (r *BatchRepo) get(id string, forUpdate bool) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var b entity.Batch
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&b.ID, &b.ProductID, &b.ManufacturedOn, &b.ExpiresOn,
		&b.ReceivedQuantity, &b.AvailableQuantity, &b.QualityState,
		&b.CreatedAt, &b.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

// Update actualiza cantidades y estado de calidad (dentro de la tx del ledger).
func (r *BatchRepo) Update(b *entity.Batch) error {
	query := `
		UPDATE batches
		SET received_quantity = $2, available_quantity = $3, quality_state = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		b.ID, b.ReceivedQuantity, b.AvailableQuantity, b.QualityState,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update batch: lote %s no existe", b.ID)
	}
	return nil
}

// ListByProduct devuelve los lotes de un producto, los más antiguos primero.
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(
			&b.ID, &b.ProductID, &b.ManufacturedOn, &b.ExpiresOn,
			&b.ReceivedQuantity, &b.AvailableQuantity, &b.QualityState,
			&b.CreatedAt, &b.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
