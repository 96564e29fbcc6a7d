package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
)

// BatchHandler maneja la recepción y el ciclo de vida de lotes (protegido).
type BatchHandler struct {
	registry *inventory.BatchRegistry
}

// NewBatchHandler construye el handler.
func NewBatchHandler(registry *inventory.BatchRegistry) *BatchHandler {
	return &BatchHandler{registry: registry}
}

// Receive godoc
// @Summary      Recibir mercancía: crea el lote y su movimiento de recepción
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveBatchRequest  true  "to_location_id vacío ⇒ colocación automática en warehouse_id"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *BatchHandler) Receive(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceiveBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batch, movs, err := h.registry.Receive(c.Context(), inventory.ReceiveInput{
		ProductID:      in.ProductID,
		ManufacturedOn: in.ManufacturedOn,
		ExpiresOn:      in.ExpiresOn,
		Quantity:       in.Quantity,
		QualityState:   in.QualityState,
		WarehouseID:    in.WarehouseID,
		ToLocationID:   in.ToLocationID,
		ActorID:        actorID,
		ReasonCode:     in.ReasonCode,
		Reference:      in.ReferenceDocument,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementDTO(m))
	}
	view, err := h.registry.GetBatch(c.Context(), batch.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"batch":     toBatchDTO(view),
		"movements": out,
	})
}

// SetQualityState godoc
// @Summary      Cambiar el estado de calidad de un lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del lote"
// @Param        body  body  dto.SetQualityStateRequest  true  "approved, quarantined o rejected"
// @Success      200   {object}  dto.BatchDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/quality [patch]
func (h *BatchHandler) SetQualityState(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SetQualityStateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batchID := c.Params("id")
	if err := h.registry.SetQualityState(c.Context(), batchID, in.QualityState); err != nil {
		return respondError(c, err)
	}
	view, err := h.registry.GetBatch(c.Context(), batchID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBatchDTO(view))
}

// GetBatch godoc
// @Summary      Consultar un lote con su estado de ciclo de vida
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetBatch(c *fiber.Ctx) error {
	view, err := h.registry.GetBatch(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBatchDTO(view))
}

// ListBatchesForProduct godoc
// @Summary      Listar lotes de un producto
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        productId        path   string  true   "ID del producto"
// @Param        include_blocked  query  bool    false  "Incluir lotes bloqueados"
// @Success      200  {object}  map[string]any
// @Router       /api/products/{productId}/batches [get]
func (h *BatchHandler) ListBatchesForProduct(c *fiber.Ctx) error {
	includeBlocked := c.QueryBool("include_blocked", false)
	views, err := h.registry.ListBatchesForProduct(c.Context(), c.Params("productId"), includeBlocked)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BatchDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toBatchDTO(v))
	}
	return c.JSON(fiber.Map{"total": len(out), "batches": out})
}

func toBatchDTO(v *inventory.BatchView) dto.BatchDTO {
	return dto.BatchDTO{
		ID:                v.Batch.ID,
		ProductID:         v.Batch.ProductID,
		ManufacturedOn:    v.Batch.ManufacturedOn,
		ExpiresOn:         v.Batch.ExpiresOn,
		ReceivedQuantity:  v.Batch.ReceivedQuantity,
		AvailableQuantity: v.Batch.AvailableQuantity,
		QualityState:      v.Batch.QualityState,
		LifecycleState:    v.LifecycleState,
		NearExpiry:        v.NearExpiry,
	}
}
