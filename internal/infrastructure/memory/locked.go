package memory

import (
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Wrappers de lectura fuera de transacción: toman el lock por llamada y
// delegan en los adaptadores internos. Las escrituras fuera de Run no tienen
// sentido en este store; aun así se protegen con el mismo lock.

type lockedBatchRepo struct{ s *Store }

var _ repository.BatchRepository = (*lockedBatchRepo)(nil)

func (r *lockedBatchRepo) Create(b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&batchRepo{s: r.s}).Create(b)
}

func (r *lockedBatchRepo) GetByID(id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&batchRepo{s: r.s}).GetByID(id)
}

func (r *lockedBatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *lockedBatchRepo) Update(b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&batchRepo{s: r.s}).Update(b)
}

func (r *lockedBatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&batchRepo{s: r.s}).ListByProduct(productID)
}

type lockedLocationRepo struct{ s *Store }

var _ repository.LocationRepository = (*lockedLocationRepo)(nil)

func (r *lockedLocationRepo) GetByID(id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&locationRepo{s: r.s}).GetByID(id)
}

func (r *lockedLocationRepo) GetForUpdate(id string) (*entity.Location, error) {
	return r.GetByID(id)
}

func (r *lockedLocationRepo) ListByWarehouse(warehouseID string) ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&locationRepo{s: r.s}).ListByWarehouse(warehouseID)
}

type lockedAllocRepo struct{ s *Store }

var _ repository.AllocationRepository = (*lockedAllocRepo)(nil)

func (r *lockedAllocRepo) Get(locationID, batchID string) (*entity.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&allocRepo{s: r.s}).Get(locationID, batchID)
}

func (r *lockedAllocRepo) GetForUpdate(locationID, batchID string) (*entity.Allocation, error) {
	return r.Get(locationID, batchID)
}

func (r *lockedAllocRepo) Upsert(a *entity.Allocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&allocRepo{s: r.s}).Upsert(a)
}

func (r *lockedAllocRepo) ListByLocation(locationID string) ([]*entity.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&allocRepo{s: r.s}).ListByLocation(locationID)
}

func (r *lockedAllocRepo) ListByBatch(batchID string) ([]*entity.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&allocRepo{s: r.s}).ListByBatch(batchID)
}

func (r *lockedAllocRepo) ListByProduct(productID string) ([]*entity.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&allocRepo{s: r.s}).ListByProduct(productID)
}

func (r *lockedAllocRepo) ListByWarehouse(warehouseID, productID string) ([]*entity.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&allocRepo{s: r.s}).ListByWarehouse(warehouseID, productID)
}

type lockedMovementRepo struct{ s *Store }

var _ repository.MovementRepository = (*lockedMovementRepo)(nil)

func (r *lockedMovementRepo) Create(m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&movementRepo{s: r.s}).Create(m)
}

func (r *lockedMovementRepo) List(f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&movementRepo{s: r.s}).List(f)
}

type lockedCountRepo struct{ s *Store }

var _ repository.CountRepository = (*lockedCountRepo)(nil)

func (r *lockedCountRepo) Create(c *entity.InventoryCount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&countRepo{s: r.s}).Create(c)
}

func (r *lockedCountRepo) GetByID(id string) (*entity.InventoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&countRepo{s: r.s}).GetByID(id)
}

func (r *lockedCountRepo) GetForUpdate(id string) (*entity.InventoryCount, error) {
	return r.GetByID(id)
}

func (r *lockedCountRepo) Update(c *entity.InventoryCount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&countRepo{s: r.s}).Update(c)
}

func (r *lockedCountRepo) ListActive() ([]*entity.InventoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&countRepo{s: r.s}).ListActive()
}

func (r *lockedCountRepo) GetItemForUpdate(itemID string) (*entity.InventoryCount, *entity.CountItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&countRepo{s: r.s}).GetItemForUpdate(itemID)
}
