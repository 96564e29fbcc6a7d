package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// LocationLoad empareja una ubicación con la suma de sus asignaciones actuales.
type LocationLoad struct {
	Location *entity.Location
	Occupied decimal.Decimal
}

// Ratio devuelve ocupado / capacidad, en [0,1] mientras se respete el invariante.
func (l LocationLoad) Ratio() decimal.Decimal {
	if l.Location.MaxCapacity.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(1)
	}
	return l.Occupied.Div(l.Location.MaxCapacity)
}

// Remaining devuelve la capacidad libre de la ubicación.
func (l LocationLoad) Remaining() decimal.Decimal {
	return l.Location.MaxCapacity.Sub(l.Occupied)
}

// SuggestPlacement elige la ubicación para colocar una recepción automática:
// la de menor ratio de ocupación con capacidad restante suficiente, empates
// por código de posición ascendente. Es una heurística de conveniencia, no un
// invariante: el ledger vuelve a validar capacidad al aplicar.
//
// Devuelve nil si ninguna ubicación tiene espacio.
func SuggestPlacement(loads []LocationLoad, quantity decimal.Decimal) *entity.Location {
	fits := make([]LocationLoad, 0, len(loads))
	for _, l := range loads {
		if l.Remaining().GreaterThanOrEqual(quantity) {
			fits = append(fits, l)
		}
	}
	if len(fits) == 0 {
		return nil
	}
	sort.SliceStable(fits, func(i, j int) bool {
		ri, rj := fits[i].Ratio(), fits[j].Ratio()
		if !ri.Equal(rj) {
			return ri.LessThan(rj)
		}
		return fits[i].Location.PositionCode() < fits[j].Location.PositionCode()
	})
	return fits[0].Location
}
