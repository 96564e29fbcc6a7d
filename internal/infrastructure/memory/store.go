// Package memory implementa los puertos de persistencia sobre estructuras en
// memoria protegidas por un mutex. Sirve de arnés para los tests y de respaldo
// de desarrollo sin PostgreSQL. La unidad transaccional se serializa con el
// lock del store y el rollback se hace restaurando un snapshot profundo, así
// el contrato "aplica todo o no aplica nada" es idéntico al de la BD.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Store contiene todo el estado y reparte los adaptadores de repositorio.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	batches     map[string]*entity.Batch
	locations   map[string]*entity.Location
	allocations map[string]*entity.Allocation // clave locationID|batchID
	movements   []*entity.StockMovement
	counts      map[string]*entity.InventoryCount
	products    map[string]*entity.Product
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		batches:     make(map[string]*entity.Batch),
		locations:   make(map[string]*entity.Location),
		allocations: make(map[string]*entity.Allocation),
		counts:      make(map[string]*entity.InventoryCount),
		products:    make(map[string]*entity.Product),
	}
}

func allocKey(locationID, batchID string) string {
	return locationID + "|" + batchID
}

// clone copia el estado completo; las entidades se copian por valor para que
// restaurar el snapshot descarte cualquier mutación del callback fallido.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.batches {
		cp := *v
		c.batches[k] = &cp
	}
	for k, v := range s.locations {
		cp := *v
		c.locations[k] = &cp
	}
	for k, v := range s.allocations {
		cp := *v
		c.allocations[k] = &cp
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	copy(c.movements, s.movements) // los movimientos son inmutables: basta copiar el slice
	for k, v := range s.counts {
		cp := *v
		cp.Items = make([]*entity.CountItem, len(v.Items))
		for i, it := range v.Items {
			itCp := *it
			cp.Items[i] = &itCp
		}
		c.counts[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	return c
}

// Run ejecuta fn como unidad serializable: toma el lock, clona el estado y lo
// restaura si fn falla. Implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	locationRepo repository.LocationRepository,
	allocRepo repository.AllocationRepository,
	movRepo repository.MovementRepository,
	countRepo repository.CountRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	err := fn(
		&batchRepo{s: s},
		&locationRepo{s: s},
		&allocRepo{s: s},
		&movementRepo{s: s},
		&countRepo{s: s},
	)
	if err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Batches, Locations, Allocations, Movements, Counts devuelven adaptadores de
// solo-lectura que toman el lock por llamada (los escritores no se bloquean
// entre sí más de lo que dura la copia).
func (s *Store) Batches() repository.BatchRepository           { return &lockedBatchRepo{s: s} }
func (s *Store) Locations() repository.LocationRepository      { return &lockedLocationRepo{s: s} }
func (s *Store) Allocations() repository.AllocationRepository  { return &lockedAllocRepo{s: s} }
func (s *Store) Movements() repository.MovementRepository      { return &lockedMovementRepo{s: s} }
func (s *Store) Counts() repository.CountRepository            { return &lockedCountRepo{s: s} }

// GetProduct implementa el puerto de catálogo externo.
func (s *Store) GetProduct(productID string) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	cp := *p
	return &cp, nil
}

// SeedProduct registra un producto del catálogo (configuración externa).
func (s *Store) SeedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.state.products[p.ID] = &cp
}

// SeedLocation registra una ubicación (configuración de bodega externa).
func (s *Store) SeedLocation(l *entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.state.locations[l.ID] = &cp
}

// Reset vacía lotes, asignaciones, movimientos y conteos conservando la
// configuración (ubicaciones y productos). Lo usan los tests de re-ejecución
// del log.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := newState()
	fresh.locations = s.state.locations
	fresh.products = s.state.products
	s.state = fresh
}
