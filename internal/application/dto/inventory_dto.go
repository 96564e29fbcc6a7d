package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// pick sin batch_id ⇒ selección FEFO en la ubicación origen.
type RegisterMovementRequest struct {
	Type              string          `json:"type"`
	ProductID         string          `json:"product_id"`
	BatchID           string          `json:"batch_id,omitempty"`
	FromLocationID    string          `json:"from_location_id,omitempty"`
	ToLocationID      string          `json:"to_location_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReasonCode        string          `json:"reason_code,omitempty"`
	ReferenceDocument string          `json:"reference_document,omitempty"`
}

// MovementDTO un movimiento del log para respuestas.
type MovementDTO struct {
	ID                string          `json:"id"`
	Timestamp         time.Time       `json:"timestamp"`
	Type              string          `json:"type"`
	ProductID         string          `json:"product_id"`
	BatchID           string          `json:"batch_id"`
	FromLocationID    *string         `json:"from_location_id,omitempty"`
	ToLocationID      *string         `json:"to_location_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	ActorID           string          `json:"actor_id"`
	ReasonCode        string          `json:"reason_code,omitempty"`
	ReferenceDocument string          `json:"reference_document,omitempty"`
}

// StockLevelResponse respuesta de GET /api/inventory/stock/:productId.
type StockLevelResponse struct {
	ProductID           string             `json:"product_id"`
	SKU                 string             `json:"sku"`
	Available           decimal.Decimal    `json:"available"`
	BelowReorderMin     bool               `json:"below_reorder_min"`
	ReorderMin          decimal.Decimal    `json:"reorder_min"`
	ReorderMax          decimal.Decimal    `json:"reorder_max"`
	AllocatedByLocation []LocationStockDTO `json:"allocated_by_location"`
	Batches             []BatchDTO         `json:"batches"`
}

// LocationStockDTO cantidad de un producto en una ubicación.
type LocationStockDTO struct {
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}
