package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// StockQuery expone los niveles de stock para las capas de UI y reporte.
// Solo lectura; tolera un snapshot levemente viejo frente a escritores.
type StockQuery struct {
	batches        repository.BatchRepository
	allocations    repository.AllocationRepository
	catalog        ProductCatalog
	nearExpiryDays int
}

// NewStockQuery construye el lado de consulta.
func NewStockQuery(
	batches repository.BatchRepository,
	allocations repository.AllocationRepository,
	catalog ProductCatalog,
	nearExpiryDays int,
) *StockQuery {
	return &StockQuery{
		batches:        batches,
		allocations:    allocations,
		catalog:        catalog,
		nearExpiryDays: nearExpiryDays,
	}
}

// LocationStock cantidad asignada de un producto en una ubicación.
type LocationStock struct {
	LocationID string
	Quantity   decimal.Decimal
}

// StockLevel nivel de stock de un producto: disponible vendible, distribución
// por ubicación y lotes clasificados, más los umbrales del catálogo.
type StockLevel struct {
	Product             *entity.Product
	Available           decimal.Decimal // suma del disponible de lotes activos
	AllocatedByLocation []LocationStock
	Batches             []*BatchView
	BelowReorderMin     bool
}

// GetStockLevel arma el nivel de stock de un producto. "Disponible" cuenta
// solo lotes activos: los bloqueados, vencidos o agotados se listan pero no
// suman.
func (q *StockQuery) GetStockLevel(ctx context.Context, productID string) (*StockLevel, error) {
	product, err := q.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	batches, err := q.batches.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	window := time.Duration(q.nearExpiryDays) * 24 * time.Hour
	available := decimal.Zero
	views := make([]*BatchView, 0, len(batches))
	for _, b := range batches {
		state := domaininv.Classify(b, now)
		if state == entity.LifecycleActive {
			available = available.Add(b.AvailableQuantity)
		}
		views = append(views, &BatchView{
			Batch:          b,
			LifecycleState: state,
			NearExpiry:     domaininv.NearExpiry(b, now, window),
		})
	}

	allocs, err := q.allocations.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	byLocation := make(map[string]decimal.Decimal)
	var order []string
	for _, a := range allocs {
		if a.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if _, ok := byLocation[a.LocationID]; !ok {
			order = append(order, a.LocationID)
		}
		byLocation[a.LocationID] = byLocation[a.LocationID].Add(a.Quantity)
	}
	perLocation := make([]LocationStock, 0, len(order))
	for _, locID := range order {
		perLocation = append(perLocation, LocationStock{LocationID: locID, Quantity: byLocation[locID]})
	}

	return &StockLevel{
		Product:             product,
		Available:           available,
		AllocatedByLocation: perLocation,
		Batches:             views,
		BelowReorderMin:     available.LessThan(product.ReorderMin),
	}, nil
}
