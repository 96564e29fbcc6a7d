package memory

import (
	"sort"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Adaptadores usados dentro de Run: el caller ya tiene el lock, así que
// acceden al estado directamente. GetForUpdate equivale a Get porque el lock
// del store ya serializa la unidad completa.

type batchRepo struct{ s *Store }

var _ repository.BatchRepository = (*batchRepo)(nil)

func (r *batchRepo) Create(b *entity.Batch) error {
	cp := *b
	r.s.state.batches[b.ID] = &cp
	return nil
}

func (r *batchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := r.s.state.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *batchRepo) GetForUpdate(id string) (*entity.Batch, error) { return r.GetByID(id) }

func (r *batchRepo) Update(b *entity.Batch) error {
	cp := *b
	r.s.state.batches[b.ID] = &cp
	return nil
}

func (r *batchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.state.batches {
		if b.ProductID == productID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type locationRepo struct{ s *Store }

var _ repository.LocationRepository = (*locationRepo)(nil)

func (r *locationRepo) GetByID(id string) (*entity.Location, error) {
	l, ok := r.s.state.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *locationRepo) GetForUpdate(id string) (*entity.Location, error) { return r.GetByID(id) }

func (r *locationRepo) ListByWarehouse(warehouseID string) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range r.s.state.locations {
		if l.WarehouseID == warehouseID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PositionCode() < out[j].PositionCode() })
	return out, nil
}

type allocRepo struct{ s *Store }

var _ repository.AllocationRepository = (*allocRepo)(nil)

func (r *allocRepo) Get(locationID, batchID string) (*entity.Allocation, error) {
	a, ok := r.s.state.allocations[allocKey(locationID, batchID)]
	if !ok {
		return &entity.Allocation{LocationID: locationID, BatchID: batchID, Quantity: decimal.Zero}, nil
	}
	cp := *a
	return &cp, nil
}

func (r *allocRepo) GetForUpdate(locationID, batchID string) (*entity.Allocation, error) {
	return r.Get(locationID, batchID)
}

func (r *allocRepo) Upsert(a *entity.Allocation) error {
	cp := *a
	r.s.state.allocations[allocKey(a.LocationID, a.BatchID)] = &cp
	return nil
}

func (r *allocRepo) ListByLocation(locationID string) ([]*entity.Allocation, error) {
	return r.list(func(a *entity.Allocation) bool { return a.LocationID == locationID })
}

func (r *allocRepo) ListByBatch(batchID string) ([]*entity.Allocation, error) {
	return r.list(func(a *entity.Allocation) bool { return a.BatchID == batchID })
}

func (r *allocRepo) ListByProduct(productID string) ([]*entity.Allocation, error) {
	return r.list(func(a *entity.Allocation) bool { return a.ProductID == productID })
}

func (r *allocRepo) ListByWarehouse(warehouseID, productID string) ([]*entity.Allocation, error) {
	return r.list(func(a *entity.Allocation) bool {
		loc, ok := r.s.state.locations[a.LocationID]
		if !ok || loc.WarehouseID != warehouseID {
			return false
		}
		if productID != "" && a.ProductID != productID {
			return false
		}
		return a.Quantity.GreaterThan(decimal.Zero)
	})
}

func (r *allocRepo) list(keep func(*entity.Allocation) bool) ([]*entity.Allocation, error) {
	var out []*entity.Allocation
	for _, a := range r.s.state.allocations {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		return out[i].BatchID < out[j].BatchID
	})
	return out, nil
}

type movementRepo struct{ s *Store }

var _ repository.MovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.s.state.movements = append(r.s.state.movements, &cp)
	return nil
}

func (r *movementRepo) List(f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.state.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.BatchID != "" && m.BatchID != f.BatchID {
			continue
		}
		if f.From != nil && m.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && m.Timestamp.After(*f.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

type countRepo struct{ s *Store }

var _ repository.CountRepository = (*countRepo)(nil)

func (r *countRepo) Create(c *entity.InventoryCount) error {
	r.s.state.counts[c.ID] = cloneCount(c)
	return nil
}

func (r *countRepo) GetByID(id string) (*entity.InventoryCount, error) {
	c, ok := r.s.state.counts[id]
	if !ok {
		return nil, nil
	}
	return cloneCount(c), nil
}

func (r *countRepo) GetForUpdate(id string) (*entity.InventoryCount, error) { return r.GetByID(id) }

func (r *countRepo) Update(c *entity.InventoryCount) error {
	r.s.state.counts[c.ID] = cloneCount(c)
	return nil
}

func (r *countRepo) ListActive() ([]*entity.InventoryCount, error) {
	var out []*entity.InventoryCount
	for _, c := range r.s.state.counts {
		if c.Active() {
			out = append(out, cloneCount(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *countRepo) GetItemForUpdate(itemID string) (*entity.InventoryCount, *entity.CountItem, error) {
	for _, c := range r.s.state.counts {
		for _, it := range c.Items {
			if it.ID == itemID {
				cp := cloneCount(c)
				for _, cpIt := range cp.Items {
					if cpIt.ID == itemID {
						return cp, cpIt, nil
					}
				}
			}
		}
	}
	return nil, nil, nil
}

func cloneCount(c *entity.InventoryCount) *entity.InventoryCount {
	cp := *c
	cp.Items = make([]*entity.CountItem, len(c.Items))
	for i, it := range c.Items {
		itCp := *it
		cp.Items[i] = &itCp
	}
	return &cp
}
