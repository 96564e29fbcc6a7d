package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
)

// LocationHandler maneja las consultas de ubicaciones y su ocupación.
type LocationHandler struct {
	locations *inventory.LocationMap
}

// NewLocationHandler construye el handler.
func NewLocationHandler(locations *inventory.LocationMap) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// GetLocation godoc
// @Summary      Consultar una ubicación con su ocupación y asignaciones
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	view, err := h.locations.GetLocation(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLocationDTO(view, true))
}

// ListLocations godoc
// @Summary      Listar ubicaciones de una bodega con su ocupación
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path  string  true  "ID de la bodega"
// @Success      200  {object}  map[string]any
// @Router       /api/warehouses/{warehouseId}/locations [get]
func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	views, err := h.locations.ListLocations(c.Context(), c.Params("warehouseId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LocationDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toLocationDTO(v, false))
	}
	return c.JSON(fiber.Map{"total": len(out), "locations": out})
}

func toLocationDTO(v *inventory.LocationView, withAllocations bool) dto.LocationDTO {
	out := dto.LocationDTO{
		ID:             v.Location.ID,
		WarehouseID:    v.Location.WarehouseID,
		PositionCode:   v.Location.PositionCode(),
		MaxCapacity:    v.Location.MaxCapacity,
		Occupied:       v.Occupied,
		OccupancyRatio: v.OccupancyRatio,
		NearFull:       v.NearFull,
	}
	if withAllocations {
		for _, a := range v.Allocations {
			out.Allocations = append(out.Allocations, dto.AllocationDTO{
				BatchID:   a.BatchID,
				ProductID: a.ProductID,
				Quantity:  a.Quantity,
			})
		}
	}
	return out
}
