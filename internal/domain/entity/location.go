package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Location representa una posición física de almacenamiento con capacidad
// acotada (bodega → zona → pasillo → estante). La crean los procesos de
// configuración de bodega; el núcleo nunca la elimina mientras existan
// asignaciones que la referencien.
type Location struct {
	ID          string
	WarehouseID string
	Zone        string
	Aisle       string
	Shelf       string
	MaxCapacity decimal.Decimal // > 0
	CreatedAt   time.Time
}

// PositionCode devuelve el código de posición derivado (zona+pasillo-estante),
// único por bodega.
func (l *Location) PositionCode() string {
	return fmt.Sprintf("%s%s-%s", l.Zone, l.Aisle, l.Shelf)
}

// Allocation es la cantidad de un lote físicamente almacenada en una ubicación.
// Invariante: la suma de Quantity por ubicación nunca supera MaxCapacity.
type Allocation struct {
	LocationID string
	BatchID    string
	ProductID  string
	Quantity   decimal.Decimal // >= 0
	UpdatedAt  time.Time
}
