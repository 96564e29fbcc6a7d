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
	domaininv "github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// MovementLedger es el único punto de entrada para todo cambio de cantidad.
// Lotes y asignaciones nunca se mutan fuera de Record/RecordInTx: aplicar al
// lote, aplicar a la ubicación y agregar al log inmutable ocurren en una sola
// transacción, o no ocurre nada.
type MovementLedger struct {
	tx        TxRunner
	movements repository.MovementRepository // lado de lectura; tolera snapshot levemente viejo
}

// NewMovementLedger construye el ledger.
func NewMovementLedger(tx TxRunner, movements repository.MovementRepository) *MovementLedger {
	return &MovementLedger{tx: tx, movements: movements}
}

// RecordInput entrada para registrar un movimiento.
// pick sin BatchID ⇒ selección FEFO entre los lotes asignados en la ubicación
// origen; un pick que abarca varios lotes produce varios movimientos con el
// mismo ReferenceDocument.
// adjustment y count_correction fijan exactamente una ubicación: destino para
// ingresar cantidad, origen para retirarla.
type RecordInput struct {
	Type              string
	ProductID         string
	BatchID           string
	FromLocationID    string
	ToLocationID      string
	Quantity          decimal.Decimal
	ActorID           string
	ReasonCode        string
	ReferenceDocument string
}

// Record valida la forma del movimiento y lo aplica transaccionalmente.
// Devuelve los movimientos registrados (más de uno solo para pick FEFO multi-lote).
func (l *MovementLedger) Record(ctx context.Context, input RecordInput) ([]*entity.StockMovement, error) {
	if err := validateShape(input); err != nil {
		return nil, err
	}
	var recorded []*entity.StockMovement
	err := l.tx.Run(ctx, func(
		batchRepo repository.BatchRepository,
		locationRepo repository.LocationRepository,
		allocRepo repository.AllocationRepository,
		movRepo repository.MovementRepository,
		countRepo repository.CountRepository,
	) error {
		movs, err := l.RecordInTx(batchRepo, locationRepo, allocRepo, movRepo, countRepo, input)
		if err != nil {
			return err
		}
		recorded = movs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// RecordInTx aplica un movimiento ya validado dentro de una transacción en
// curso. Lo usan Record, la recepción de lotes y la finalización de conteos
// (que necesitan crear lote o transicionar conteo en la misma unidad).
func (l *MovementLedger) RecordInTx(
	batchRepo repository.BatchRepository,
	locationRepo repository.LocationRepository,
	allocRepo repository.AllocationRepository,
	movRepo repository.MovementRepository,
	countRepo repository.CountRepository,
	input RecordInput,
) ([]*entity.StockMovement, error) {
	if err := validateShape(input); err != nil {
		return nil, err
	}

	// Un conteo en curso congela su alcance: los movimientos que lo tocarían
	// se rechazan para no contar contra cantidades que cambian a mitad de
	// conteo. Las correcciones del propio conteo están exentas.
	if input.Type != entity.MovementCountCorrection {
		if err := guardActiveCounts(countRepo, locationRepo, input); err != nil {
			return nil, err
		}
	}

	switch input.Type {
	case entity.MovementPick:
		if input.BatchID == "" {
			return l.fefoPick(batchRepo, locationRepo, allocRepo, movRepo, input)
		}
		fallthrough
	default:
		mov, err := l.applySingle(batchRepo, locationRepo, allocRepo, movRepo, input)
		if err != nil {
			return nil, err
		}
		return []*entity.StockMovement{mov}, nil
	}
}

// applySingle aplica un movimiento con lote fijo: delta al lote, delta a las
// asignaciones y recién entonces el append al log.
func (l *MovementLedger) applySingle(
	batchRepo repository.BatchRepository,
	locationRepo repository.LocationRepository,
	allocRepo repository.AllocationRepository,
	movRepo repository.MovementRepository,
	input RecordInput,
) (*entity.StockMovement, error) {
	batch, err := batchRepo.GetForUpdate(input.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, input.BatchID)
	}
	if batch.ProductID != input.ProductID {
		return nil, fmt.Errorf("%w: el lote %s pertenece al producto %s, no a %s",
			domain.ErrInvalidInput, batch.ID, batch.ProductID, input.ProductID)
	}

	switch input.Type {
	case entity.MovementReceipt:
		err = batch.ReceiveQuantity(input.Quantity)
	case entity.MovementPick:
		err = batch.Reserve(input.Quantity)
	case entity.MovementTransfer:
		// el traslado no altera el disponible del lote; la fila queda
		// bloqueada para serializar con picks concurrentes
		err = nil
	case entity.MovementAdjustment:
		if input.ToLocationID != "" {
			err = batch.Restore(input.Quantity)
		} else {
			err = batch.Reserve(input.Quantity)
		}
	case entity.MovementCountCorrection:
		if input.ToLocationID != "" {
			err = batch.Restore(input.Quantity)
		} else {
			err = batch.Deduct(input.Quantity)
		}
	}
	if err != nil {
		return nil, err
	}

	if input.FromLocationID != "" {
		if err := deallocate(allocRepo, input.FromLocationID, input.BatchID, input.Quantity); err != nil {
			return nil, err
		}
	}
	if input.ToLocationID != "" {
		if err := allocate(locationRepo, allocRepo, input.ToLocationID, input.BatchID, input.ProductID, input.Quantity); err != nil {
			return nil, err
		}
	}
	if err := batchRepo.Update(batch); err != nil {
		return nil, err
	}

	mov := newMovement(input, input.BatchID, input.Quantity, input.ReferenceDocument)
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// fefoPick expande un pick sin lote fijo: candidatos = lotes activos con
// asignación viva en la ubicación origen, orden first-expire-first-out.
func (l *MovementLedger) fefoPick(
	batchRepo repository.BatchRepository,
	locationRepo repository.LocationRepository,
	allocRepo repository.AllocationRepository,
	movRepo repository.MovementRepository,
	input RecordInput,
) ([]*entity.StockMovement, error) {
	allocs, err := allocRepo.ListByLocation(input.FromLocationID)
	if err != nil {
		return nil, err
	}

	var live []*entity.Allocation
	for _, a := range allocs {
		if a.ProductID == input.ProductID && a.Quantity.GreaterThan(decimal.Zero) {
			live = append(live, a)
		}
	}
	// Bloqueo en orden estable por id de lote para no cruzarse con otro pick
	sort.Slice(live, func(i, j int) bool { return live[i].BatchID < live[j].BatchID })

	now := time.Now()
	var candidates []domaininv.PickCandidate
	batchesByID := make(map[string]*entity.Batch, len(live))
	for _, a := range live {
		b, err := batchRepo.GetForUpdate(a.BatchID)
		if err != nil {
			return nil, err
		}
		if b == nil || b.ProductID != input.ProductID || domaininv.Classify(b, now) != entity.LifecycleActive {
			continue
		}
		batchesByID[b.ID] = b
		candidates = append(candidates, domaininv.PickCandidate{Batch: b, Allocation: a})
	}

	plan, err := domaininv.PlanPick(candidates, input.Quantity)
	if err != nil {
		return nil, err
	}

	ref := input.ReferenceDocument
	if ref == "" {
		ref = uuid.New().String()
	}

	movs := make([]*entity.StockMovement, 0, len(plan))
	for _, line := range plan {
		batch := batchesByID[line.BatchID]
		if err := batch.Reserve(line.Quantity); err != nil {
			return nil, err
		}
		if err := batchRepo.Update(batch); err != nil {
			return nil, err
		}
		if err := deallocate(allocRepo, input.FromLocationID, line.BatchID, line.Quantity); err != nil {
			return nil, err
		}
		mov := newMovement(input, line.BatchID, line.Quantity, ref)
		if err := movRepo.Create(mov); err != nil {
			return nil, err
		}
		movs = append(movs, mov)
	}
	return movs, nil
}

func newMovement(input RecordInput, batchID string, qty decimal.Decimal, ref string) *entity.StockMovement {
	now := time.Now()
	mov := &entity.StockMovement{
		ID:                uuid.New().String(),
		Timestamp:         now,
		Type:              input.Type,
		ProductID:         input.ProductID,
		BatchID:           batchID,
		Quantity:          qty,
		ActorID:           input.ActorID,
		ReasonCode:        input.ReasonCode,
		ReferenceDocument: ref,
		CreatedAt:         now,
	}
	if input.FromLocationID != "" {
		from := input.FromLocationID
		mov.FromLocationID = &from
	}
	if input.ToLocationID != "" {
		to := input.ToLocationID
		mov.ToLocationID = &to
	}
	return mov
}

// validateShape valida campos obligatorios por tipo y cantidad positiva.
func validateShape(input RecordInput) error {
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero, recibido %s",
			domain.ErrInvalidQuantity, input.Quantity)
	}
	if input.ProductID == "" || input.ActorID == "" {
		return fmt.Errorf("%w: product_id y actor_id son obligatorios", domain.ErrInvalidInput)
	}
	switch input.Type {
	case entity.MovementReceipt:
		if input.BatchID == "" || input.ToLocationID == "" || input.FromLocationID != "" {
			return fmt.Errorf("%w: una recepción lleva lote y solo ubicación destino", domain.ErrInvalidInput)
		}
	case entity.MovementPick:
		if input.FromLocationID == "" || input.ToLocationID != "" {
			return fmt.Errorf("%w: un pick lleva solo ubicación origen", domain.ErrInvalidInput)
		}
	case entity.MovementTransfer:
		if input.BatchID == "" || input.FromLocationID == "" || input.ToLocationID == "" {
			return fmt.Errorf("%w: un traslado lleva lote, origen y destino", domain.ErrInvalidInput)
		}
		if input.FromLocationID == input.ToLocationID {
			return fmt.Errorf("%w: origen y destino no pueden coincidir", domain.ErrInvalidInput)
		}
	case entity.MovementAdjustment, entity.MovementCountCorrection:
		if input.BatchID == "" {
			return fmt.Errorf("%w: el ajuste exige lote", domain.ErrInvalidInput)
		}
		if (input.FromLocationID == "") == (input.ToLocationID == "") {
			return fmt.Errorf("%w: el ajuste lleva exactamente una ubicación", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, input.Type)
	}
	return nil
}

// allocate crea o incrementa la asignación validando la capacidad del slot.
func allocate(
	locationRepo repository.LocationRepository,
	allocRepo repository.AllocationRepository,
	locationID, batchID, productID string,
	qty decimal.Decimal,
) error {
	// La fila de la ubicación es el candado del invariante de capacidad: dos
	// transacciones que colocan lotes distintos en el mismo slot se serializan
	// aquí aunque toquen filas de asignación disjuntas.
	loc, err := locationRepo.GetForUpdate(locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	existing, err := allocRepo.ListByLocation(locationID)
	if err != nil {
		return err
	}
	occupied := decimal.Zero
	for _, a := range existing {
		occupied = occupied.Add(a.Quantity)
	}
	if occupied.Add(qty).GreaterThan(loc.MaxCapacity) {
		return fmt.Errorf("%w: ubicación %s ocupa %s y entrarían %s, capacidad %s",
			domain.ErrCapacityExceeded, loc.PositionCode(), occupied, qty, loc.MaxCapacity)
	}

	alloc, err := allocRepo.GetForUpdate(locationID, batchID)
	if err != nil {
		return err
	}
	alloc.ProductID = productID
	alloc.Quantity = alloc.Quantity.Add(qty)
	alloc.UpdatedAt = time.Now()
	return allocRepo.Upsert(alloc)
}

// deallocate decrementa la asignación validando que alcance.
func deallocate(
	allocRepo repository.AllocationRepository,
	locationID, batchID string,
	qty decimal.Decimal,
) error {
	alloc, err := allocRepo.GetForUpdate(locationID, batchID)
	if err != nil {
		return err
	}
	if alloc.Quantity.LessThan(qty) {
		return fmt.Errorf("%w: retiro de %s, asignado %s del lote %s en ubicación %s",
			domain.ErrInsufficientAllocation, qty, alloc.Quantity, batchID, locationID)
	}
	alloc.Quantity = alloc.Quantity.Sub(qty)
	alloc.UpdatedAt = time.Now()
	return allocRepo.Upsert(alloc)
}

// guardActiveCounts rechaza movimientos que tocarían el alcance de un conteo
// en curso (una segunda solicitud sobre el mismo alcance también se rechaza
// en Schedule; aquí se protege el snapshot).
func guardActiveCounts(
	countRepo repository.CountRepository,
	locationRepo repository.LocationRepository,
	input RecordInput,
) error {
	active, err := countRepo.ListActive()
	if err != nil {
		return err
	}
	var inProgress []*entity.InventoryCount
	for _, c := range active {
		if c.Status == entity.CountInProgress {
			inProgress = append(inProgress, c)
		}
	}
	if len(inProgress) == 0 {
		return nil
	}
	for _, locID := range []string{input.FromLocationID, input.ToLocationID} {
		if locID == "" {
			continue
		}
		// Se bloquea la fila para serializar con el snapshot de Start: o el
		// movimiento ve el conteo ya en curso, o Start ve el movimiento ya
		// aplicado, nunca un intermedio.
		loc, err := locationRepo.GetForUpdate(locID)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locID)
		}
		touched := entity.CountScope{WarehouseID: loc.WarehouseID, ProductID: input.ProductID}
		for _, c := range inProgress {
			if c.Scope.Overlaps(touched) {
				return fmt.Errorf("%w: conteo %s en curso sobre la bodega %s",
					domain.ErrCountScopeConflict, c.ID, loc.WarehouseID)
			}
		}
	}
	return nil
}

// ListMovements expone el log ordenado y reanudable para las capas de reporte.
func (l *MovementLedger) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return l.movements.List(filter)
}
