package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// PickCandidate empareja un lote con su asignación en la ubicación origen del pick.
type PickCandidate struct {
	Batch      *entity.Batch
	Allocation *entity.Allocation
}

// PickLine es un tramo del plan: cuánta cantidad consumir de qué lote.
type PickLine struct {
	BatchID  string
	Quantity decimal.Decimal
}

// PlanPick arma el plan FEFO (first-expire-first-out) para una salida sin lote
// fijo: ordena los candidatos por vencimiento ascendente (sin vencimiento al
// final), luego por fecha de fabricación ascendente, y consume de cada uno
// hasta satisfacer la cantidad. Los lotes bloqueados y los vencidos al
// instante de referencia no participan (el caller ya los filtró con Classify).
//
// Devuelve ErrInsufficientStock nombrando lo solicitado y lo disponible si los
// candidatos no alcanzan. Función pura: no muta lotes ni asignaciones.
func PlanPick(candidates []PickCandidate, quantity decimal.Decimal) ([]PickLine, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, quantity)
	}

	ordered := make([]PickCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		bi, bj := ordered[i].Batch, ordered[j].Batch
		switch {
		case bi.ExpiresOn == nil && bj.ExpiresOn == nil:
			// ambos sin vencimiento: FIFO por fabricación
		case bi.ExpiresOn == nil:
			return false
		case bj.ExpiresOn == nil:
			return true
		case !bi.ExpiresOn.Equal(*bj.ExpiresOn):
			return bi.ExpiresOn.Before(*bj.ExpiresOn)
		}
		return bi.ManufacturedOn.Before(bj.ManufacturedOn)
	})

	var plan []PickLine
	remaining := quantity
	available := decimal.Zero
	for _, c := range ordered {
		// En la ubicación no puede haber más del disponible del lote
		// (conservación), pero el lote puede estar repartido: el tope por
		// tramo es la asignación local.
		take := decimal.Min(c.Allocation.Quantity, c.Batch.AvailableQuantity)
		available = available.Add(take)
		if remaining.IsZero() || take.IsZero() {
			continue
		}
		if take.GreaterThan(remaining) {
			take = remaining
		}
		plan = append(plan, PickLine{BatchID: c.Batch.ID, Quantity: take})
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: solicitado %s, disponible %s en la ubicación",
			domain.ErrInsufficientStock, quantity, available)
	}
	return plan, nil
}
