package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
)

func load(id, zone, aisle, shelf string, capacity, occupied int64) inventory.LocationLoad {
	return inventory.LocationLoad{
		Location: &entity.Location{
			ID:          id,
			WarehouseID: "W1",
			Zone:        zone,
			Aisle:       aisle,
			Shelf:       shelf,
			MaxCapacity: decimal.NewFromInt(capacity),
		},
		Occupied: decimal.NewFromInt(occupied),
	}
}

func TestSuggestPlacement_MenorOcupacion(t *testing.T) {
	loads := []inventory.LocationLoad{
		load("L1", "A", "01", "1", 100, 80), // 0.80
		load("L2", "A", "01", "2", 100, 20), // 0.20
		load("L3", "A", "01", "3", 100, 50), // 0.50
	}
	chosen := inventory.SuggestPlacement(loads, decimal.NewFromInt(10))
	require.NotNil(t, chosen)
	assert.Equal(t, "L2", chosen.ID)
}

// Una ubicación con menor ratio pero sin espacio restante suficiente no
// participa: gana la siguiente con espacio.
func TestSuggestPlacement_DescartaSinEspacio(t *testing.T) {
	loads := []inventory.LocationLoad{
		load("L1", "A", "01", "1", 10, 2),   // 0.20 pero solo caben 8
		load("L2", "A", "01", "2", 100, 50), // 0.50 con espacio de sobra
	}
	chosen := inventory.SuggestPlacement(loads, decimal.NewFromInt(20))
	require.NotNil(t, chosen)
	assert.Equal(t, "L2", chosen.ID)
}

func TestSuggestPlacement_EmpatePorCodigoDePosicion(t *testing.T) {
	loads := []inventory.LocationLoad{
		load("L2", "B", "02", "1", 100, 40),
		load("L1", "A", "01", "1", 100, 40),
	}
	chosen := inventory.SuggestPlacement(loads, decimal.NewFromInt(10))
	require.NotNil(t, chosen)
	assert.Equal(t, "L1", chosen.ID, "empate de ratio se resuelve por código de posición ascendente")
}

func TestSuggestPlacement_NingunaConEspacio(t *testing.T) {
	loads := []inventory.LocationLoad{
		load("L1", "A", "01", "1", 10, 10),
		load("L2", "A", "01", "2", 10, 8),
	}
	assert.Nil(t, inventory.SuggestPlacement(loads, decimal.NewFromInt(5)))
}

func TestSuggestPlacement_SinUbicaciones(t *testing.T) {
	assert.Nil(t, inventory.SuggestPlacement(nil, decimal.NewFromInt(1)))
}

func TestLocationLoad_Ratio(t *testing.T) {
	l := load("L1", "A", "01", "1", 200, 50)
	assert.True(t, l.Ratio().Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, l.Remaining().Equal(decimal.NewFromInt(150)))

	// Capacidad cero se reporta llena, nunca división por cero
	zero := load("L2", "A", "01", "2", 0, 0)
	assert.True(t, zero.Ratio().Equal(decimal.NewFromInt(1)))
}
