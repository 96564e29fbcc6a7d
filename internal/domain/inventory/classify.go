package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Classify recalcula el estado de ciclo de vida de un lote contra un instante
// de referencia (servicio de dominio puro; se invoca en cada lectura, no se
// persiste de forma redundante).
//
// Precedencia: blocked > depleted > expired > active. Un lote en cuarentena o
// rechazado se reporta bloqueado aunque también esté vencido o agotado.
func Classify(b *entity.Batch, asOf time.Time) string {
	if b.Blocked() {
		return entity.LifecycleBlocked
	}
	if b.AvailableQuantity.LessThanOrEqual(decimal.Zero) {
		return entity.LifecycleDepleted
	}
	if b.ExpiresOn != nil && b.ExpiresOn.Before(asOf) {
		return entity.LifecycleExpired
	}
	return entity.LifecycleActive
}

// NearExpiry indica si el lote vence dentro de la ventana dada y aún no venció.
// La ventana es configurable (INVENTORY_NEAR_EXPIRY_DAYS); no existe un estado
// almacenado "por vencer", así el criterio cambia sin migración.
func NearExpiry(b *entity.Batch, asOf time.Time, window time.Duration) bool {
	if b.ExpiresOn == nil {
		return false
	}
	if b.ExpiresOn.Before(asOf) {
		return false
	}
	return b.ExpiresOn.Before(asOf.Add(window))
}
