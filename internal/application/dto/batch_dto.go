package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveBatchRequest body para POST /api/inventory/receipts.
// Si to_location_id está vacío se coloca automáticamente dentro de warehouse_id.
type ReceiveBatchRequest struct {
	ProductID         string          `json:"product_id"`
	ManufacturedOn    time.Time       `json:"manufactured_on"`
	ExpiresOn         *time.Time      `json:"expires_on,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	QualityState      string          `json:"quality_state,omitempty"` // approved por defecto
	WarehouseID       string          `json:"warehouse_id,omitempty"`
	ToLocationID      string          `json:"to_location_id,omitempty"`
	ReasonCode        string          `json:"reason_code,omitempty"`
	ReferenceDocument string          `json:"reference_document,omitempty"`
}

// SetQualityStateRequest body para PATCH /api/batches/:id/quality.
type SetQualityStateRequest struct {
	QualityState string `json:"quality_state"`
}

// BatchDTO un lote clasificado para respuestas.
type BatchDTO struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ManufacturedOn    time.Time       `json:"manufactured_on"`
	ExpiresOn         *time.Time      `json:"expires_on,omitempty"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	QualityState      string          `json:"quality_state"`
	LifecycleState    string          `json:"lifecycle_state"`
	NearExpiry        bool            `json:"near_expiry"`
}
