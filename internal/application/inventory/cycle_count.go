package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// CycleCountEngine dirige los conteos cíclicos: programar, iniciar (snapshot),
// registrar cantidades y finalizar emitiendo las correcciones por el ledger.
// Máquina de estados por conteo: scheduled → in_progress → completed, con
// cancelled alcanzable desde scheduled o in_progress.
type CycleCountEngine struct {
	tx     TxRunner
	ledger *MovementLedger
	counts repository.CountRepository
}

// NewCycleCountEngine construye el motor de conteos.
func NewCycleCountEngine(tx TxRunner, ledger *MovementLedger, counts repository.CountRepository) *CycleCountEngine {
	return &CycleCountEngine{tx: tx, ledger: ledger, counts: counts}
}

// Schedule programa un conteo sobre un alcance. Dos conteos activos con
// alcance superpuesto no pueden coexistir (CountScopeConflict).
func (e *CycleCountEngine) Schedule(ctx context.Context, scope entity.CountScope, date time.Time, actorID string) (*entity.InventoryCount, error) {
	if scope.WarehouseID == "" {
		return nil, fmt.Errorf("%w: el alcance requiere bodega", domain.ErrInvalidInput)
	}
	count := &entity.InventoryCount{
		ID:            uuid.New().String(),
		Scope:         scope,
		ScheduledDate: date,
		Status:        entity.CountScheduled,
		CreatedBy:     actorID,
		CreatedAt:     time.Now(),
	}
	err := e.tx.Run(ctx, func(
		_ repository.BatchRepository,
		_ repository.LocationRepository,
		_ repository.AllocationRepository,
		_ repository.MovementRepository,
		countRepo repository.CountRepository,
	) error {
		active, err := countRepo.ListActive()
		if err != nil {
			return err
		}
		for _, c := range active {
			if c.Scope.Overlaps(scope) {
				return fmt.Errorf("%w: el conteo %s (%s) cubre la bodega %s",
					domain.ErrCountScopeConflict, c.ID, c.Status, scope.WarehouseID)
			}
		}
		return countRepo.Create(count)
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// Start toma el snapshot de asignaciones vivas del alcance como ítems del
// conteo y pasa a in_progress. SystemQuantity queda congelado desde aquí.
func (e *CycleCountEngine) Start(ctx context.Context, countID string) (*entity.InventoryCount, error) {
	var started *entity.InventoryCount
	err := e.tx.Run(ctx, func(
		_ repository.BatchRepository,
		locationRepo repository.LocationRepository,
		allocRepo repository.AllocationRepository,
		_ repository.MovementRepository,
		countRepo repository.CountRepository,
	) error {
		count, err := countRepo.GetForUpdate(countID)
		if err != nil {
			return err
		}
		if count == nil {
			return fmt.Errorf("%w: conteo %s", domain.ErrNotFound, countID)
		}
		if count.Status != entity.CountScheduled {
			return fmt.Errorf("%w: conteo %s en estado %s", domain.ErrAlreadyStarted, countID, count.Status)
		}

		// Se bloquean las ubicaciones de la bodega antes del snapshot, en
		// orden estable por id: todo movimiento en vuelo sobre el alcance
		// termina antes o después del snapshot, nunca a medias.
		locs, err := locationRepo.ListByWarehouse(count.Scope.WarehouseID)
		if err != nil {
			return err
		}
		sort.Slice(locs, func(i, j int) bool { return locs[i].ID < locs[j].ID })
		for _, loc := range locs {
			if _, err := locationRepo.GetForUpdate(loc.ID); err != nil {
				return err
			}
		}

		allocs, err := allocRepo.ListByWarehouse(count.Scope.WarehouseID, count.Scope.ProductID)
		if err != nil {
			return err
		}
		items := make([]*entity.CountItem, 0, len(allocs))
		for _, a := range allocs {
			items = append(items, &entity.CountItem{
				ID:             uuid.New().String(),
				CountID:        count.ID,
				ProductID:      a.ProductID,
				BatchID:        a.BatchID,
				LocationID:     a.LocationID,
				SystemQuantity: a.Quantity,
				Status:         entity.CountItemPending,
			})
		}
		count.Items = items
		count.Status = entity.CountInProgress
		if err := countRepo.Update(count); err != nil {
			return err
		}
		started = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// RecordCount fija la cantidad contada de un ítem del conteo indicado. Una
// sola vez por ítem: repetir con el mismo valor es idempotente, con otro
// valor falla (re-contar exige un conteo nuevo).
func (e *CycleCountEngine) RecordCount(ctx context.Context, countID, itemID string, counted decimal.Decimal, actorID string) (*entity.CountItem, error) {
	if counted.IsNegative() {
		return nil, fmt.Errorf("%w: la cantidad contada no puede ser negativa, recibido %s",
			domain.ErrInvalidQuantity, counted)
	}
	var result *entity.CountItem
	err := e.tx.Run(ctx, func(
		_ repository.BatchRepository,
		_ repository.LocationRepository,
		_ repository.AllocationRepository,
		_ repository.MovementRepository,
		countRepo repository.CountRepository,
	) error {
		count, item, err := countRepo.GetItemForUpdate(itemID)
		if err != nil {
			return err
		}
		if count == nil || item == nil || count.ID != countID {
			return fmt.Errorf("%w: ítem %s del conteo %s", domain.ErrNotFound, itemID, countID)
		}
		if count.Status != entity.CountInProgress {
			return fmt.Errorf("%w: el conteo %s está en estado %s", domain.ErrConflict, count.ID, count.Status)
		}
		if item.CountedQuantity != nil {
			if item.CountedQuantity.Equal(counted) {
				result = item // reintento idéntico: no-op
				return nil
			}
			return fmt.Errorf("%w: ítem %s ya contado con %s, recibido %s",
				domain.ErrAlreadyCounted, itemID, item.CountedQuantity, counted)
		}

		now := time.Now()
		item.CountedQuantity = &counted
		item.CountedBy = actorID
		item.CountedAt = &now
		if counted.Equal(item.SystemQuantity) {
			item.Status = entity.CountItemMatched
		} else {
			item.Status = entity.CountItemDiscrepant
		}
		if err := countRepo.Update(count); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Finalize exige todos los ítems contados y, por cada discrepancia, registra
// exactamente una corrección por el ledger que lleva la asignación y el lote a
// la cantidad contada: diferencia positiva ingresa (recepción no atribuida),
// negativa retira. Todo en una transacción con la transición a completed.
func (e *CycleCountEngine) Finalize(ctx context.Context, countID string) (*entity.InventoryCount, error) {
	var finalized *entity.InventoryCount
	err := e.tx.Run(ctx, func(
		batchRepo repository.BatchRepository,
		locationRepo repository.LocationRepository,
		allocRepo repository.AllocationRepository,
		movRepo repository.MovementRepository,
		countRepo repository.CountRepository,
	) error {
		count, err := countRepo.GetForUpdate(countID)
		if err != nil {
			return err
		}
		if count == nil {
			return fmt.Errorf("%w: conteo %s", domain.ErrNotFound, countID)
		}
		if count.Status != entity.CountInProgress {
			return fmt.Errorf("%w: el conteo %s está en estado %s", domain.ErrConflict, countID, count.Status)
		}
		if pending := count.PendingItems(); pending > 0 {
			return fmt.Errorf("%w: %d ítems sin contar en el conteo %s",
				domain.ErrIncompleteCount, pending, countID)
		}

		for _, item := range count.Items {
			if item.Status != entity.CountItemDiscrepant {
				continue
			}
			diff := item.Difference()
			input := RecordInput{
				Type:              entity.MovementCountCorrection,
				ProductID:         item.ProductID,
				BatchID:           item.BatchID,
				Quantity:          diff.Abs(),
				ActorID:           item.CountedBy,
				ReasonCode:        "cycle_count",
				ReferenceDocument: count.ID,
			}
			if diff.GreaterThan(decimal.Zero) {
				input.ToLocationID = item.LocationID
			} else {
				input.FromLocationID = item.LocationID
			}
			if _, err := e.ledger.RecordInTx(batchRepo, locationRepo, allocRepo, movRepo, countRepo, input); err != nil {
				return err
			}
		}

		now := time.Now()
		count.Status = entity.CountCompleted
		count.CompletedAt = &now
		if err := countRepo.Update(count); err != nil {
			return err
		}
		finalized = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// Cancel aborta un conteo programado o en curso; no toca cantidades.
func (e *CycleCountEngine) Cancel(ctx context.Context, countID string) error {
	return e.tx.Run(ctx, func(
		_ repository.BatchRepository,
		_ repository.LocationRepository,
		_ repository.AllocationRepository,
		_ repository.MovementRepository,
		countRepo repository.CountRepository,
	) error {
		count, err := countRepo.GetForUpdate(countID)
		if err != nil {
			return err
		}
		if count == nil {
			return fmt.Errorf("%w: conteo %s", domain.ErrNotFound, countID)
		}
		if !count.Active() {
			return fmt.Errorf("%w: el conteo %s está en estado %s", domain.ErrConflict, countID, count.Status)
		}
		count.Status = entity.CountCancelled
		return countRepo.Update(count)
	})
}

// CountReport resumen de exactitud de un conteo.
type CountReport struct {
	Count           *entity.InventoryCount
	TotalItems      int
	MatchedItems    int
	Discrepancies   int
	AccuracyPercent decimal.Decimal // matched / total * 100; 100 si no hubo ítems
}

// Report calcula la métrica de exactitud (matched/total) para reportes.
func (e *CycleCountEngine) Report(ctx context.Context, countID string) (*CountReport, error) {
	count, err := e.counts.GetByID(countID)
	if err != nil {
		return nil, err
	}
	if count == nil {
		return nil, fmt.Errorf("%w: conteo %s", domain.ErrNotFound, countID)
	}
	total := len(count.Items)
	matched := count.MatchedItems()
	discrepant := 0
	for _, it := range count.Items {
		if it.Status == entity.CountItemDiscrepant {
			discrepant++
		}
	}
	accuracy := decimal.NewFromInt(100)
	if total > 0 {
		accuracy = decimal.NewFromInt(int64(matched)).
			Div(decimal.NewFromInt(int64(total))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return &CountReport{
		Count:           count,
		TotalItems:      total,
		MatchedItems:    matched,
		Discrepancies:   discrepant,
		AccuracyPercent: accuracy,
	}, nil
}
