package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CountHandler maneja el ciclo de vida de los conteos cíclicos (protegido).
type CountHandler struct {
	engine *inventory.CycleCountEngine
}

// NewCountHandler construye el handler.
func NewCountHandler(engine *inventory.CycleCountEngine) *CountHandler {
	return &CountHandler{engine: engine}
}

// Schedule godoc
// @Summary      Programar un conteo cíclico sobre una bodega o un producto
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScheduleCountRequest  true  "product_id vacío ⇒ toda la bodega"
// @Success      201   {object}  dto.CountDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/counts [post]
func (h *CountHandler) Schedule(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ScheduleCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	scope := entity.CountScope{WarehouseID: in.WarehouseID, ProductID: in.ProductID}
	count, err := h.engine.Schedule(c.Context(), scope, in.ScheduledDate, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCountDTO(count, false))
}

// Start godoc
// @Summary      Iniciar un conteo: congela su alcance y toma la foto del sistema
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/start [post]
func (h *CountHandler) Start(c *fiber.Ctx) error {
	count, err := h.engine.Start(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCountDTO(count, true))
}

// RecordCount godoc
// @Summary      Registrar la cantidad contada de un ítem
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                  true  "ID del conteo"
// @Param        itemId  path  string                  true  "ID del ítem"
// @Param        body    body  dto.RecordCountRequest  true  "Cantidad física contada"
// @Success      200  {object}  dto.CountItemDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/items/{itemId} [post]
func (h *CountHandler) RecordCount(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.engine.RecordCount(c.Context(), c.Params("id"), c.Params("itemId"), in.CountedQuantity, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCountItemDTO(item))
}

// Finalize godoc
// @Summary      Finalizar un conteo: emite una corrección por cada discrepancia
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/finalize [post]
func (h *CountHandler) Finalize(c *fiber.Ctx) error {
	count, err := h.engine.Finalize(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCountDTO(count, true))
}

// Cancel godoc
// @Summary      Cancelar un conteo y liberar su alcance
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      204  "Sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/cancel [post]
func (h *CountHandler) Cancel(c *fiber.Ctx) error {
	if err := h.engine.Cancel(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Report godoc
// @Summary      Reporte de exactitud de un conteo
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/report [get]
func (h *CountHandler) Report(c *fiber.Ctx) error {
	report, err := h.engine.Report(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.CountReportResponse{
		CountID:         report.Count.ID,
		Status:          report.Count.Status,
		TotalItems:      report.TotalItems,
		MatchedItems:    report.MatchedItems,
		Discrepancies:   report.Discrepancies,
		AccuracyPercent: report.AccuracyPercent,
	}
	for _, it := range report.Count.Items {
		resp.Items = append(resp.Items, toCountItemDTO(it))
	}
	return c.JSON(resp)
}

func toCountDTO(count *entity.InventoryCount, withItems bool) dto.CountDTO {
	out := dto.CountDTO{
		ID:            count.ID,
		WarehouseID:   count.Scope.WarehouseID,
		ProductID:     count.Scope.ProductID,
		ScheduledDate: count.ScheduledDate,
		Status:        count.Status,
	}
	if withItems {
		for _, it := range count.Items {
			out.Items = append(out.Items, toCountItemDTO(it))
		}
	}
	return out
}

func toCountItemDTO(it *entity.CountItem) dto.CountItemDTO {
	return dto.CountItemDTO{
		ID:              it.ID,
		ProductID:       it.ProductID,
		BatchID:         it.BatchID,
		LocationID:      it.LocationID,
		SystemQuantity:  it.SystemQuantity,
		CountedQuantity: it.CountedQuantity,
		Status:          it.Status,
	}
}
