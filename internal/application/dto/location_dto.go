package dto

import "github.com/shopspring/decimal"

// LocationDTO una ubicación con su ocupación para respuestas.
type LocationDTO struct {
	ID             string          `json:"id"`
	WarehouseID    string          `json:"warehouse_id"`
	PositionCode   string          `json:"position_code"`
	MaxCapacity    decimal.Decimal `json:"max_capacity"`
	Occupied       decimal.Decimal `json:"occupied"`
	OccupancyRatio decimal.Decimal `json:"occupancy_ratio"`
	NearFull       bool            `json:"near_full"`
	Allocations    []AllocationDTO `json:"allocations,omitempty"`
}

// AllocationDTO cantidad de un lote en una ubicación.
type AllocationDTO struct {
	BatchID   string          `json:"batch_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}
