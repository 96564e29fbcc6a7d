package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
)

var asOf = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func batchWith(quality string, available int64, expiresOn *time.Time) *entity.Batch {
	return &entity.Batch{
		ID:                "B1",
		ProductID:         "P1",
		ManufacturedOn:    asOf.AddDate(0, -1, 0),
		ExpiresOn:         expiresOn,
		ReceivedQuantity:  decimal.NewFromInt(100),
		AvailableQuantity: decimal.NewFromInt(available),
		QualityState:      quality,
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestClassify_ActivoPorDefecto(t *testing.T) {
	b := batchWith(entity.QualityApproved, 50, datePtr(asOf.AddDate(0, 2, 0)))
	assert.Equal(t, entity.LifecycleActive, inventory.Classify(b, asOf))
}

func TestClassify_SinVencimientoNuncaVence(t *testing.T) {
	b := batchWith(entity.QualityApproved, 50, nil)
	assert.Equal(t, entity.LifecycleActive, inventory.Classify(b, asOf))
}

func TestClassify_Agotado(t *testing.T) {
	b := batchWith(entity.QualityApproved, 0, datePtr(asOf.AddDate(0, 2, 0)))
	assert.Equal(t, entity.LifecycleDepleted, inventory.Classify(b, asOf))
}

func TestClassify_Vencido(t *testing.T) {
	b := batchWith(entity.QualityApproved, 50, datePtr(asOf.AddDate(0, 0, -1)))
	assert.Equal(t, entity.LifecycleExpired, inventory.Classify(b, asOf))
}

// La precedencia es blocked > depleted > expired: un lote rechazado se reporta
// bloqueado aunque además esté vencido y agotado.
func TestClassify_PrecedenciaBloqueado(t *testing.T) {
	b := batchWith(entity.QualityRejected, 0, datePtr(asOf.AddDate(0, 0, -10)))
	assert.Equal(t, entity.LifecycleBlocked, inventory.Classify(b, asOf))

	b = batchWith(entity.QualityQuarantined, 50, datePtr(asOf.AddDate(0, 2, 0)))
	assert.Equal(t, entity.LifecycleBlocked, inventory.Classify(b, asOf))
}

func TestClassify_PrecedenciaAgotadoSobreVencido(t *testing.T) {
	b := batchWith(entity.QualityApproved, 0, datePtr(asOf.AddDate(0, 0, -1)))
	assert.Equal(t, entity.LifecycleDepleted, inventory.Classify(b, asOf))
}

func TestNearExpiry_DentroDeVentana(t *testing.T) {
	window := 30 * 24 * time.Hour

	dentro := batchWith(entity.QualityApproved, 50, datePtr(asOf.AddDate(0, 0, 10)))
	assert.True(t, inventory.NearExpiry(dentro, asOf, window))

	fuera := batchWith(entity.QualityApproved, 50, datePtr(asOf.AddDate(0, 0, 45)))
	assert.False(t, inventory.NearExpiry(fuera, asOf, window))
}

func TestNearExpiry_VencidoNoEsPorVencer(t *testing.T) {
	window := 30 * 24 * time.Hour
	b := batchWith(entity.QualityApproved, 50, datePtr(asOf.AddDate(0, 0, -1)))
	assert.False(t, inventory.NearExpiry(b, asOf, window))
}

func TestNearExpiry_SinVencimiento(t *testing.T) {
	b := batchWith(entity.QualityApproved, 50, nil)
	assert.False(t, inventory.NearExpiry(b, asOf, 30*24*time.Hour))
}
