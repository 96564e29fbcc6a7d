package inventory

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del ledger: aplicar a
// lotes y asignaciones y agregar al log es una sola unidad serializable.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		locationRepo repository.LocationRepository,
		allocRepo repository.AllocationRepository,
		movRepo repository.MovementRepository,
		countRepo repository.CountRepository,
	) error) error
}

// ProductCatalog es el colaborador externo de catálogo: identidad y umbrales
// de reorden por producto, solo lectura.
type ProductCatalog interface {
	GetProduct(productID string) (*entity.Product, error)
}
