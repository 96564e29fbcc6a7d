package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// BatchRepository define el puerto de persistencia para lotes.
// Las escrituras de cantidad solo ocurren dentro de la transacción del ledger.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) dentro de una tx.
	GetForUpdate(id string) (*entity.Batch, error)
	Update(batch *entity.Batch) error
	ListByProduct(productID string) ([]*entity.Batch, error)
}
