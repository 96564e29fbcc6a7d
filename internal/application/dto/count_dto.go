package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleCountRequest body para POST /api/counts.
type ScheduleCountRequest struct {
	WarehouseID   string    `json:"warehouse_id"`
	ProductID     string    `json:"product_id,omitempty"` // vacío = toda la bodega
	ScheduledDate time.Time `json:"scheduled_date"`
}

// RecordCountRequest body para POST /api/counts/:id/items/:itemId.
type RecordCountRequest struct {
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
}

// CountItemDTO un ítem de conteo para respuestas.
type CountItemDTO struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	BatchID         string           `json:"batch_id"`
	LocationID      string           `json:"location_id"`
	SystemQuantity  decimal.Decimal  `json:"system_quantity"`
	CountedQuantity *decimal.Decimal `json:"counted_quantity,omitempty"`
	Status          string           `json:"status"`
}

// CountDTO un conteo para respuestas.
type CountDTO struct {
	ID            string         `json:"id"`
	WarehouseID   string         `json:"warehouse_id"`
	ProductID     string         `json:"product_id,omitempty"`
	ScheduledDate time.Time      `json:"scheduled_date"`
	Status        string         `json:"status"`
	Items         []CountItemDTO `json:"items,omitempty"`
}

// CountReportResponse respuesta de GET /api/counts/:id/report.
type CountReportResponse struct {
	CountID         string          `json:"count_id"`
	Status          string          `json:"status"`
	TotalItems      int             `json:"total_items"`
	MatchedItems    int             `json:"matched_items"`
	Discrepancies   int             `json:"discrepancies"`
	AccuracyPercent decimal.Decimal `json:"accuracy_percent"`
	Items           []CountItemDTO  `json:"items"`
}
