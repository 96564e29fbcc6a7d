package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementReceipt         = "receipt"          // recepción: solo ToLocationID
	MovementPick            = "pick"             // salida: solo FromLocationID
	MovementTransfer        = "transfer"         // traslado: ambos
	MovementAdjustment      = "adjustment"       // ajuste manual: exactamente uno de los dos
	MovementCountCorrection = "count_correction" // corrección de conteo: exactamente uno de los dos
)

// StockMovement es la unidad de cambio de cantidad: inmutable una vez
// registrada, solo-agregar. Las correcciones son movimientos nuevos, nunca
// ediciones. Quantity es siempre positiva; la dirección la dan las
// ubicaciones origen/destino.
type StockMovement struct {
	ID                string
	Timestamp         time.Time
	Type              string
	ProductID         string
	BatchID           string
	FromLocationID    *string
	ToLocationID      *string
	Quantity          decimal.Decimal // > 0
	ActorID           string
	ReasonCode        string
	ReferenceDocument string // opcional; compartido entre los tramos de un pick multi-lote
	CreatedAt         time.Time
}

// Incoming indica si el movimiento ingresa cantidad a una ubicación.
func (m *StockMovement) Incoming() bool { return m.ToLocationID != nil }

// Outgoing indica si el movimiento retira cantidad de una ubicación.
func (m *StockMovement) Outgoing() bool { return m.FromLocationID != nil }
