package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// LocationMap expone las lecturas de ubicaciones: ocupación, bandera de casi
// lleno y sugerencia de colocación. Las mutaciones de asignaciones viven en el
// ledger; estas lecturas toleran un snapshot levemente viejo y no bloquean
// escritores.
type LocationMap struct {
	locations     repository.LocationRepository
	allocations   repository.AllocationRepository
	nearFullRatio decimal.Decimal
}

// NewLocationMap construye el mapa de ubicaciones. nearFullRatio es la
// ocupación a partir de la cual se reporta la advertencia (convención: 0.8).
func NewLocationMap(
	locations repository.LocationRepository,
	allocations repository.AllocationRepository,
	nearFullRatio float64,
) *LocationMap {
	return &LocationMap{
		locations:     locations,
		allocations:   allocations,
		nearFullRatio: decimal.NewFromFloat(nearFullRatio),
	}
}

// LocationView una ubicación con su ocupación actual.
type LocationView struct {
	Location       *entity.Location
	Occupied       decimal.Decimal
	OccupancyRatio decimal.Decimal
	NearFull       bool
	Allocations    []*entity.Allocation
}

// GetLocation devuelve la ubicación con ocupación y asignaciones.
func (m *LocationMap) GetLocation(ctx context.Context, locationID string) (*LocationView, error) {
	loc, err := m.locations.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	return m.view(loc)
}

// ListLocations devuelve las ubicaciones de una bodega con su ocupación.
func (m *LocationMap) ListLocations(ctx context.Context, warehouseID string) ([]*LocationView, error) {
	locs, err := m.locations.ListByWarehouse(warehouseID)
	if err != nil {
		return nil, err
	}
	views := make([]*LocationView, 0, len(locs))
	for _, loc := range locs {
		v, err := m.view(loc)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// OccupancyRatio devuelve ocupado/capacidad en [0,1].
func (m *LocationMap) OccupancyRatio(ctx context.Context, locationID string) (decimal.Decimal, error) {
	v, err := m.GetLocation(ctx, locationID)
	if err != nil {
		return decimal.Zero, err
	}
	return v.OccupancyRatio, nil
}

func (m *LocationMap) view(loc *entity.Location) (*LocationView, error) {
	allocs, err := m.allocations.ListByLocation(loc.ID)
	if err != nil {
		return nil, err
	}
	occupied := decimal.Zero
	live := make([]*entity.Allocation, 0, len(allocs))
	for _, a := range allocs {
		occupied = occupied.Add(a.Quantity)
		if a.Quantity.GreaterThan(decimal.Zero) {
			live = append(live, a)
		}
	}
	load := domaininv.LocationLoad{Location: loc, Occupied: occupied}
	ratio := load.Ratio()
	return &LocationView{
		Location:       loc,
		Occupied:       occupied,
		OccupancyRatio: ratio,
		NearFull:       ratio.GreaterThanOrEqual(m.nearFullRatio),
		Allocations:    live,
	}, nil
}
