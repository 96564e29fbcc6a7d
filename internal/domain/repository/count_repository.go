package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// CountRepository define el puerto de persistencia para conteos cíclicos.
type CountRepository interface {
	Create(count *entity.InventoryCount) error
	GetByID(id string) (*entity.InventoryCount, error)
	// GetForUpdate bloquea el conteo para las transiciones de estado.
	GetForUpdate(id string) (*entity.InventoryCount, error)
	Update(count *entity.InventoryCount) error
	// ListActive devuelve los conteos en estado scheduled o in_progress
	// (para la detección de conflicto de alcance).
	ListActive() ([]*entity.InventoryCount, error)
	// GetItemForUpdate localiza un ítem por id junto con su conteo, bloqueando el conteo.
	GetItemForUpdate(itemID string) (*entity.InventoryCount, *entity.CountItem, error)
}
