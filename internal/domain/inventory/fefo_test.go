package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
)

func candidate(batchID string, expiresOn *time.Time, manufacturedOn time.Time, available, allocated int64) inventory.PickCandidate {
	return inventory.PickCandidate{
		Batch: &entity.Batch{
			ID:                batchID,
			ProductID:         "P1",
			ManufacturedOn:    manufacturedOn,
			ExpiresOn:         expiresOn,
			ReceivedQuantity:  decimal.NewFromInt(available),
			AvailableQuantity: decimal.NewFromInt(available),
			QualityState:      entity.QualityApproved,
		},
		Allocation: &entity.Allocation{
			LocationID: "L1",
			BatchID:    batchID,
			ProductID:  "P1",
			Quantity:   decimal.NewFromInt(allocated),
		},
	}
}

// Dos lotes con 10 unidades cada uno, vencimientos a 5 y 30 días: un pick de 15
// debe agotar primero el que vence antes y tomar el resto del otro.
func TestPlanPick_OrdenFEFO(t *testing.T) {
	pronto := candidate("B-pronto", datePtr(asOf.AddDate(0, 0, 5)), asOf.AddDate(0, -1, 0), 10, 10)
	tarde := candidate("B-tarde", datePtr(asOf.AddDate(0, 0, 30)), asOf.AddDate(0, -2, 0), 10, 10)

	// El orden de entrada no debe importar
	plan, err := inventory.PlanPick([]inventory.PickCandidate{tarde, pronto}, decimal.NewFromInt(15))
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "B-pronto", plan[0].BatchID)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(10)), "primero se agota el que vence antes")
	assert.Equal(t, "B-tarde", plan[1].BatchID)
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(5)))
}

// Los lotes sin vencimiento van al final; entre sí se ordenan por fabricación.
func TestPlanPick_SinVencimientoAlFinal(t *testing.T) {
	sinVenc := candidate("B-sin", nil, asOf.AddDate(0, -6, 0), 10, 10)
	conVenc := candidate("B-con", datePtr(asOf.AddDate(1, 0, 0)), asOf.AddDate(0, -1, 0), 10, 10)

	plan, err := inventory.PlanPick([]inventory.PickCandidate{sinVenc, conVenc}, decimal.NewFromInt(12))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "B-con", plan[0].BatchID)
	assert.Equal(t, "B-sin", plan[1].BatchID)
}

func TestPlanPick_EmpateVencimientoDesempataPorFabricacion(t *testing.T) {
	exp := datePtr(asOf.AddDate(0, 1, 0))
	viejo := candidate("B-viejo", exp, asOf.AddDate(0, -5, 0), 10, 10)
	nuevo := candidate("B-nuevo", exp, asOf.AddDate(0, -1, 0), 10, 10)

	plan, err := inventory.PlanPick([]inventory.PickCandidate{nuevo, viejo}, decimal.NewFromInt(15))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "B-viejo", plan[0].BatchID)
}

// El tope por tramo es min(asignación local, disponible del lote): un lote
// repartido entre ubicaciones no puede entregar aquí más de lo asignado aquí.
func TestPlanPick_TopePorAsignacionLocal(t *testing.T) {
	c := candidate("B1", datePtr(asOf.AddDate(0, 1, 0)), asOf.AddDate(0, -1, 0), 50, 8)

	plan, err := inventory.PlanPick([]inventory.PickCandidate{c}, decimal.NewFromInt(8))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(8)))

	_, err = inventory.PlanPick([]inventory.PickCandidate{c}, decimal.NewFromInt(9))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

// El error de stock insuficiente nombra lo solicitado y lo disponible.
func TestPlanPick_InsuficienteNombraCantidades(t *testing.T) {
	c := candidate("B1", datePtr(asOf.AddDate(0, 1, 0)), asOf.AddDate(0, -1, 0), 10, 10)

	_, err := inventory.PlanPick([]inventory.PickCandidate{c}, decimal.NewFromInt(25))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "25")
	assert.Contains(t, err.Error(), "10")
}

func TestPlanPick_CantidadInvalida(t *testing.T) {
	_, err := inventory.PlanPick(nil, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	_, err = inventory.PlanPick(nil, decimal.NewFromInt(-3))
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

func TestPlanPick_ExactoSinSobrante(t *testing.T) {
	a := candidate("A", datePtr(asOf.AddDate(0, 0, 3)), asOf.AddDate(0, -1, 0), 4, 4)
	b := candidate("B", datePtr(asOf.AddDate(0, 0, 9)), asOf.AddDate(0, -1, 0), 6, 6)

	plan, err := inventory.PlanPick([]inventory.PickCandidate{a, b}, decimal.NewFromInt(10))
	require.NoError(t, err)
	total := decimal.Zero
	for _, line := range plan {
		total = total.Add(line.Quantity)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(10)))
}
