package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un conteo cíclico.
const (
	CountScheduled  = "scheduled"
	CountInProgress = "in_progress"
	CountCompleted  = "completed"
	CountCancelled  = "cancelled"
)

// Estados de un ítem de conteo.
const (
	CountItemPending    = "pending"
	CountItemMatched    = "matched"
	CountItemDiscrepant = "discrepant"
)

// CountScope delimita qué asignaciones entran en un conteo: una bodega
// obligatoria y opcionalmente un solo producto. Dos conteos activos entran en
// conflicto cuando comparten bodega y sus filtros de producto se superponen.
type CountScope struct {
	WarehouseID string
	ProductID   string // vacío = todos los productos de la bodega
}

// Overlaps indica si dos alcances pueden contar las mismas asignaciones.
func (s CountScope) Overlaps(other CountScope) bool {
	if s.WarehouseID != other.WarehouseID {
		return false
	}
	return s.ProductID == "" || other.ProductID == "" || s.ProductID == other.ProductID
}

// InventoryCount es un ejercicio de conteo físico programado o ad-hoc.
// Los ítems se pueblan con el snapshot de asignaciones al iniciar.
type InventoryCount struct {
	ID            string
	Scope         CountScope
	ScheduledDate time.Time
	Status        string
	Items         []*CountItem
	CreatedBy     string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// Active indica si el conteo aún reserva su alcance (programado o en curso).
func (c *InventoryCount) Active() bool {
	return c.Status == CountScheduled || c.Status == CountInProgress
}

// PendingItems devuelve cuántos ítems siguen sin cantidad contada.
func (c *InventoryCount) PendingItems() int {
	n := 0
	for _, it := range c.Items {
		if it.Status == CountItemPending {
			n++
		}
	}
	return n
}

// MatchedItems devuelve cuántos ítems coincidieron con el sistema.
func (c *InventoryCount) MatchedItems() int {
	n := 0
	for _, it := range c.Items {
		if it.Status == CountItemMatched {
			n++
		}
	}
	return n
}

// CountItem es una tupla (producto, lote, ubicación) dentro de un conteo.
// SystemQuantity se captura al iniciar y es inmutable; CountedQuantity se
// fija exactamente una vez (re-contar exige un conteo nuevo).
type CountItem struct {
	ID              string
	CountID         string
	ProductID       string
	BatchID         string
	LocationID      string
	SystemQuantity  decimal.Decimal
	CountedQuantity *decimal.Decimal
	Status          string
	CountedBy       string
	CountedAt       *time.Time
}

// Difference devuelve contado - sistema; cero si aún no se contó.
func (i *CountItem) Difference() decimal.Decimal {
	if i.CountedQuantity == nil {
		return decimal.Zero
	}
	return i.CountedQuantity.Sub(i.SystemQuantity)
}
