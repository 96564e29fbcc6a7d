package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Arnés de test: los casos de uso completos sobre el store en memoria, que
// implementa el mismo contrato transaccional que PostgreSQL (todo o nada).
//
// Topología fija:
//   - Producto P-ARROZ (reorden mínimo 50) y P-AZUCAR (reorden mínimo 20)
//   - Bodega W1: L1 (A01-1, cap 120), L2 (A01-2, cap 200), L4 (B02-1, cap 10)
//   - Bodega W2: L3 (A01-1, cap 100)
// ──────────────────────────────────────────────────────────────────────────────

const (
	productRice  = "P-ARROZ"
	productSugar = "P-AZUCAR"
	warehouseA   = "W1"
	warehouseB   = "W2"
	locL1        = "L1"
	locL2        = "L2"
	locL3        = "L3"
	locL4        = "L4"
	testActor    = "operario-1"

	testNearExpiryDays = 30
	testNearFullRatio  = 0.8
)

type harness struct {
	store     *memory.Store
	ledger    *inventory.MovementLedger
	registry  *inventory.BatchRegistry
	locations *inventory.LocationMap
	counts    *inventory.CycleCountEngine
	stock     *inventory.StockQuery
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(&entity.Product{
		ID: productRice, SKU: "ARZ-001", Name: "Arroz 1kg",
		ReorderMin: decimal.NewFromInt(50), ReorderMax: decimal.NewFromInt(300),
	})
	store.SeedProduct(&entity.Product{
		ID: productSugar, SKU: "AZU-001", Name: "Azúcar 1kg",
		ReorderMin: decimal.NewFromInt(20), ReorderMax: decimal.NewFromInt(100),
	})
	store.SeedLocation(&entity.Location{
		ID: locL1, WarehouseID: warehouseA, Zone: "A", Aisle: "01", Shelf: "1",
		MaxCapacity: decimal.NewFromInt(120),
	})
	store.SeedLocation(&entity.Location{
		ID: locL2, WarehouseID: warehouseA, Zone: "A", Aisle: "01", Shelf: "2",
		MaxCapacity: decimal.NewFromInt(200),
	})
	store.SeedLocation(&entity.Location{
		ID: locL4, WarehouseID: warehouseA, Zone: "B", Aisle: "02", Shelf: "1",
		MaxCapacity: decimal.NewFromInt(10),
	})
	store.SeedLocation(&entity.Location{
		ID: locL3, WarehouseID: warehouseB, Zone: "A", Aisle: "01", Shelf: "1",
		MaxCapacity: decimal.NewFromInt(100),
	})

	ledger := inventory.NewMovementLedger(store, store.Movements())
	registry := inventory.NewBatchRegistry(
		store, ledger,
		store.Batches(), store.Locations(), store.Allocations(), store,
		testNearExpiryDays,
	)
	return &harness{
		store:     store,
		ledger:    ledger,
		registry:  registry,
		locations: inventory.NewLocationMap(store.Locations(), store.Allocations(), testNearFullRatio),
		counts:    inventory.NewCycleCountEngine(store, ledger, store.Counts()),
		stock:     inventory.NewStockQuery(store.Batches(), store.Allocations(), store, testNearExpiryDays),
	}
}

// receive registra un lote con vencimiento a expiresInDays (0 = sin vencimiento)
// colocado explícitamente en toLocation.
func (h *harness) receive(t *testing.T, productID string, qty int64, expiresInDays int, toLocation string) *entity.Batch {
	t.Helper()
	input := inventory.ReceiveInput{
		ProductID:      productID,
		ManufacturedOn: time.Now().AddDate(0, 0, -30),
		Quantity:       decimal.NewFromInt(qty),
		ToLocationID:   toLocation,
		ActorID:        testActor,
	}
	if expiresInDays != 0 {
		exp := time.Now().AddDate(0, 0, expiresInDays)
		input.ExpiresOn = &exp
	}
	batch, movs, err := h.registry.Receive(context.Background(), input)
	require.NoError(t, err, "la recepción de prueba no debe fallar")
	require.Len(t, movs, 1)
	return batch
}

func (h *harness) batch(t *testing.T, id string) *entity.Batch {
	t.Helper()
	b, err := h.store.Batches().GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, b, "el lote %s debe existir", id)
	return b
}

// allocated devuelve la cantidad asignada del lote en la ubicación.
func (h *harness) allocated(t *testing.T, locationID, batchID string) decimal.Decimal {
	t.Helper()
	a, err := h.store.Allocations().Get(locationID, batchID)
	require.NoError(t, err)
	return a.Quantity
}

func (h *harness) movements(t *testing.T) []*entity.StockMovement {
	t.Helper()
	movs, err := h.store.Movements().List(repository.MovementFilter{})
	require.NoError(t, err)
	return movs
}

// assertConservation verifica el invariante de conservación del lote: la suma
// de sus asignaciones en todas las ubicaciones es igual a su disponible.
func (h *harness) assertConservation(t *testing.T, batchID string) {
	t.Helper()
	b := h.batch(t, batchID)
	allocs, err := h.store.Allocations().ListByBatch(batchID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, a := range allocs {
		sum = sum.Add(a.Quantity)
	}
	require.True(t, sum.Equal(b.AvailableQuantity),
		"conservación rota en lote %s: asignado %s vs disponible %s", batchID, sum, b.AvailableQuantity)
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func ctxb() context.Context { return context.Background() }
