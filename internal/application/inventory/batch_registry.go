package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// BatchRegistry administra el ciclo de vida de los lotes: recepción, estado de
// calidad y lecturas clasificadas. Los cambios de cantidad pasan siempre por
// el ledger; aquí solo se crean lotes y se transiciona la calidad.
type BatchRegistry struct {
	tx             TxRunner
	ledger         *MovementLedger
	batches        repository.BatchRepository
	locations      repository.LocationRepository
	allocations    repository.AllocationRepository
	catalog        ProductCatalog
	nearExpiryDays int
}

// NewBatchRegistry construye el registro de lotes.
func NewBatchRegistry(
	tx TxRunner,
	ledger *MovementLedger,
	batches repository.BatchRepository,
	locations repository.LocationRepository,
	allocations repository.AllocationRepository,
	catalog ProductCatalog,
	nearExpiryDays int,
) *BatchRegistry {
	return &BatchRegistry{
		tx:             tx,
		ledger:         ledger,
		batches:        batches,
		locations:      locations,
		allocations:    allocations,
		catalog:        catalog,
		nearExpiryDays: nearExpiryDays,
	}
}

// ReceiveInput entrada para recibir un lote. Si ToLocationID está vacío se
// coloca con la heurística de ubicación (menor ocupación con espacio) dentro
// de WarehouseID.
type ReceiveInput struct {
	ProductID      string
	ManufacturedOn time.Time
	ExpiresOn      *time.Time
	Quantity       decimal.Decimal
	QualityState   string
	WarehouseID    string
	ToLocationID   string
	ActorID        string
	ReasonCode     string
	Reference      string
}

// BatchView es un lote clasificado para lectura: estado de ciclo de vida
// derivado y bandera de pre-vencimiento según la ventana configurada.
type BatchView struct {
	Batch          *entity.Batch
	LifecycleState string
	NearExpiry     bool
}

// Receive crea un lote y registra su movimiento de recepción en la misma
// transacción: si la colocación falla (capacidad), el lote no queda creado.
func (r *BatchRegistry) Receive(ctx context.Context, input ReceiveInput) (*entity.Batch, []*entity.StockMovement, error) {
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: la cantidad recibida debe ser mayor que cero, recibido %s",
			domain.ErrInvalidQuantity, input.Quantity)
	}
	if input.QualityState == "" {
		input.QualityState = entity.QualityApproved
	}
	if !entity.ValidQualityState(input.QualityState) {
		return nil, nil, fmt.Errorf("%w: estado de calidad desconocido %q", domain.ErrInvalidInput, input.QualityState)
	}
	if input.ExpiresOn != nil && !input.ExpiresOn.After(input.ManufacturedOn) {
		return nil, nil, fmt.Errorf("%w: el vencimiento debe ser posterior a la fabricación", domain.ErrInvalidInput)
	}
	if _, err := r.catalog.GetProduct(input.ProductID); err != nil {
		return nil, nil, err
	}

	toLocation := input.ToLocationID
	if toLocation == "" {
		suggested, err := r.suggestPlacement(input.WarehouseID, input.Quantity)
		if err != nil {
			return nil, nil, err
		}
		toLocation = suggested
	}

	batch := &entity.Batch{
		ID:                uuid.New().String(),
		ProductID:         input.ProductID,
		ManufacturedOn:    input.ManufacturedOn,
		ExpiresOn:         input.ExpiresOn,
		ReceivedQuantity:  decimal.Zero, // el movimiento receipt carga la cantidad
		AvailableQuantity: decimal.Zero,
		QualityState:      input.QualityState,
		CreatedAt:         time.Now(),
		CreatedBy:         input.ActorID,
	}

	var recorded []*entity.StockMovement
	err := r.tx.Run(ctx, func(
		batchRepo repository.BatchRepository,
		locationRepo repository.LocationRepository,
		allocRepo repository.AllocationRepository,
		movRepo repository.MovementRepository,
		countRepo repository.CountRepository,
	) error {
		if err := batchRepo.Create(batch); err != nil {
			return err
		}
		movs, err := r.ledger.RecordInTx(batchRepo, locationRepo, allocRepo, movRepo, countRepo, RecordInput{
			Type:              entity.MovementReceipt,
			ProductID:         input.ProductID,
			BatchID:           batch.ID,
			ToLocationID:      toLocation,
			Quantity:          input.Quantity,
			ActorID:           input.ActorID,
			ReasonCode:        input.ReasonCode,
			ReferenceDocument: input.Reference,
		})
		if err != nil {
			return err
		}
		recorded = movs
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	batch.ReceivedQuantity = input.Quantity
	batch.AvailableQuantity = input.Quantity
	return batch, recorded, nil
}

// suggestPlacement aplica la heurística de colocación sobre las ubicaciones de
// la bodega. La capacidad real se vuelve a validar dentro de la transacción.
func (r *BatchRegistry) suggestPlacement(warehouseID string, qty decimal.Decimal) (string, error) {
	if warehouseID == "" {
		return "", fmt.Errorf("%w: se requiere to_location_id o warehouse_id", domain.ErrInvalidInput)
	}
	locs, err := r.locations.ListByWarehouse(warehouseID)
	if err != nil {
		return "", err
	}
	loads := make([]domaininv.LocationLoad, 0, len(locs))
	for _, loc := range locs {
		allocs, err := r.allocations.ListByLocation(loc.ID)
		if err != nil {
			return "", err
		}
		occupied := decimal.Zero
		for _, a := range allocs {
			occupied = occupied.Add(a.Quantity)
		}
		loads = append(loads, domaininv.LocationLoad{Location: loc, Occupied: occupied})
	}
	chosen := domaininv.SuggestPlacement(loads, qty)
	if chosen == nil {
		return "", fmt.Errorf("%w: ninguna ubicación de la bodega %s admite %s unidades",
			domain.ErrCapacityExceeded, warehouseID, qty)
	}
	return chosen.ID, nil
}

// SetQualityState transiciona la calidad del lote. Pasar a quarantined o
// rejected congela nuevas salidas pero no altera la cantidad disponible.
func (r *BatchRegistry) SetQualityState(ctx context.Context, batchID, state string) error {
	if !entity.ValidQualityState(state) {
		return fmt.Errorf("%w: estado de calidad desconocido %q", domain.ErrInvalidInput, state)
	}
	return r.tx.Run(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.LocationRepository,
		_ repository.AllocationRepository,
		_ repository.MovementRepository,
		_ repository.CountRepository,
	) error {
		batch, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, batchID)
		}
		batch.QualityState = state
		return batchRepo.Update(batch)
	})
}

// GetBatch devuelve un lote clasificado a la fecha actual.
func (r *BatchRegistry) GetBatch(ctx context.Context, batchID string) (*BatchView, error) {
	batch, err := r.batches.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, batchID)
	}
	return r.view(batch), nil
}

// ListBatchesForProduct devuelve los lotes de un producto clasificados;
// includeBlocked controla si se listan los congelados por calidad.
func (r *BatchRegistry) ListBatchesForProduct(ctx context.Context, productID string, includeBlocked bool) ([]*BatchView, error) {
	batches, err := r.batches.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	views := make([]*BatchView, 0, len(batches))
	for _, b := range batches {
		if !includeBlocked && b.Blocked() {
			continue
		}
		views = append(views, r.view(b))
	}
	return views, nil
}

func (r *BatchRegistry) view(b *entity.Batch) *BatchView {
	now := time.Now()
	window := time.Duration(r.nearExpiryDays) * 24 * time.Hour
	return &BatchView{
		Batch:          b,
		LifecycleState: domaininv.Classify(b, now),
		NearExpiry:     domaininv.NearExpiry(b, now, window),
	}
}
