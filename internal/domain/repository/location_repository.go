package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// LocationRepository define el puerto de lectura de ubicaciones.
// Las ubicaciones las crea la configuración de bodega (externa); el núcleo
// nunca las elimina mientras existan asignaciones.
type LocationRepository interface {
	GetByID(id string) (*entity.Location, error)
	// GetForUpdate bloquea la fila de la ubicación. La fila es el candado del
	// invariante de capacidad: toda validación ocupado+entrante ≤ capacidad se
	// hace con la ubicación bloqueada, así dos transacciones que colocan lotes
	// distintos en la misma ubicación se serializan aunque toquen filas de
	// asignación disjuntas.
	GetForUpdate(id string) (*entity.Location, error)
	ListByWarehouse(warehouseID string) ([]*entity.Location, error)
}

// AllocationRepository define el puerto para las asignaciones lote↔ubicación.
// Solo el ledger las muta, dentro de su transacción.
type AllocationRepository interface {
	Get(locationID, batchID string) (*entity.Allocation, error)
	// GetForUpdate bloquea la fila de la asignación; si no existe la devuelve en cero.
	GetForUpdate(locationID, batchID string) (*entity.Allocation, error)
	Upsert(alloc *entity.Allocation) error
	ListByLocation(locationID string) ([]*entity.Allocation, error)
	ListByBatch(batchID string) ([]*entity.Allocation, error)
	ListByProduct(productID string) ([]*entity.Allocation, error)
	// ListByWarehouse devuelve las asignaciones vivas (cantidad > 0) de una
	// bodega, opcionalmente filtradas por producto; es el snapshot de un conteo.
	ListByWarehouse(warehouseID, productID string) ([]*entity.Allocation, error)
}
