package repository

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// MovementFilter acota un listado de movimientos. Todos los campos son opcionales.
type MovementFilter struct {
	ProductID string
	BatchID   string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementRepository define el puerto de persistencia del log de movimientos.
// Solo-agregar: no existe Update ni Delete; una corrección es un movimiento nuevo.
type MovementRepository interface {
	Create(movement *entity.StockMovement) error
	// List devuelve movimientos ordenados por timestamp y luego id, para que
	// el listado sea reanudable con offset estable.
	List(filter MovementFilter) ([]*entity.StockMovement, error)
}
