package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del log de movimientos sobre PostgreSQL.
// Solo-agregar: no hay UPDATE ni DELETE sobre stock_movements.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del log. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, ts, type, product_id, batch_id, from_location_id, to_location_id, quantity, actor_id, reason_code, reference_document, created_at`

// Create agrega un movimiento al log.
func (r *MovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Timestamp, m.Type, m.ProductID, m.BatchID,
		m.FromLocationID, m.ToLocationID, m.Quantity,
		m.ActorID, m.ReasonCode, m.ReferenceDocument, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// List devuelve movimientos ordenados por timestamp y luego id (reanudable con offset).
func (r *MovementRepo) List(f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.ProductID != "" {
		add("product_id = ?", f.ProductID)
	}
	if f.BatchID != "" {
		add("batch_id = ?", f.BatchID)
	}
	if f.From != nil {
		add("ts >= ?", *f.From)
	}
	if f.To != nil {
		add("ts <= ?", *f.To)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ts, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.Timestamp, &m.Type, &m.ProductID, &m.BatchID,
			&m.FromLocationID, &m.ToLocationID, &m.Quantity,
			&m.ActorID, &m.ReasonCode, &m.ReferenceDocument, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
