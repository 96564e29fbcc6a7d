package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

// Estados de calidad de un lote.
const (
	QualityApproved    = "approved"
	QualityQuarantined = "quarantined"
	QualityRejected    = "rejected"
)

// Estados de ciclo de vida de un lote. No se persisten: se derivan en lectura
// con inventory.Classify a partir de cantidad, vencimiento y calidad.
const (
	LifecycleActive   = "active"
	LifecycleDepleted = "depleted"
	LifecycleExpired  = "expired"
	LifecycleBlocked  = "blocked"
)

// Batch representa una recepción de producto con fecha de fabricación y
// vencimiento compartidos. ReceivedQuantity es inmutable una vez creado;
// AvailableQuantity solo cambia por aplicación de movimientos del ledger.
type Batch struct {
	ID                string
	ProductID         string
	ManufacturedOn    time.Time
	ExpiresOn         *time.Time
	ReceivedQuantity  decimal.Decimal
	AvailableQuantity decimal.Decimal
	QualityState      string
	CreatedAt         time.Time
	CreatedBy         string
}

// ValidQualityState indica si s es uno de los estados de calidad conocidos.
func ValidQualityState(s string) bool {
	return s == QualityApproved || s == QualityQuarantined || s == QualityRejected
}

// Blocked indica si el lote está congelado para salidas por su estado de calidad.
func (b *Batch) Blocked() bool {
	return b.QualityState != QualityApproved
}

// Reserve descuenta cantidad disponible para una salida. Solo el ledger debe
// llamarlo, dentro de su unidad transaccional.
func (b *Batch) Reserve(qty decimal.Decimal) error {
	if b.Blocked() {
		return fmt.Errorf("%w: lote %s en estado %s", domain.ErrBatchBlocked, b.ID, b.QualityState)
	}
	if qty.GreaterThan(b.AvailableQuantity) {
		return fmt.Errorf("%w: solicitado %s, disponible %s en lote %s",
			domain.ErrInsufficientBatchQuantity, qty, b.AvailableQuantity, b.ID)
	}
	b.AvailableQuantity = b.AvailableQuantity.Sub(qty)
	return nil
}

// ReceiveQuantity aplica la recepción del lote: incrementa recibido y
// disponible en la misma cantidad. El lote nace en cero y es el movimiento
// receipt quien carga la cantidad, para que reproducir el log desde vacío
// reconstruya el mismo estado.
func (b *Batch) ReceiveQuantity(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, qty)
	}
	b.ReceivedQuantity = b.ReceivedQuantity.Add(qty)
	b.AvailableQuantity = b.AvailableQuantity.Add(qty)
	return nil
}

// Deduct descuenta cantidad sin exigir calidad aprobada. Lo usa solo la
// corrección de conteo: la realidad física manda aunque el lote esté en
// cuarentena. La no-negatividad sí se exige siempre.
func (b *Batch) Deduct(qty decimal.Decimal) error {
	if qty.GreaterThan(b.AvailableQuantity) {
		return fmt.Errorf("%w: corrección de %s, disponible %s en lote %s",
			domain.ErrInsufficientBatchQuantity, qty, b.AvailableQuantity, b.ID)
	}
	b.AvailableQuantity = b.AvailableQuantity.Sub(qty)
	return nil
}

// Restore devuelve cantidad al lote (corrección de conteo positiva).
// Nunca supera ReceivedQuantity: una corrección que "encuentra" más unidades
// de las recibidas también eleva ReceivedQuantity, porque el origen del
// excedente es una recepción no atribuida.
func (b *Batch) Restore(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, qty)
	}
	b.AvailableQuantity = b.AvailableQuantity.Add(qty)
	if b.AvailableQuantity.GreaterThan(b.ReceivedQuantity) {
		b.ReceivedQuantity = b.AvailableQuantity
	}
	return nil
}
