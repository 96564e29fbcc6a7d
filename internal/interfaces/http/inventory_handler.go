package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// InventoryHandler maneja movimientos y niveles de stock (protegido).
type InventoryHandler struct {
	ledger *inventory.MovementLedger
	stock  *inventory.StockQuery
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.MovementLedger, stock *inventory.StockQuery) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, stock: stock}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario (pick, transfer, adjustment)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "type, product_id, quantity; batch_id opcional en pick (FEFO)"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movs, err := h.ledger.Record(c.Context(), inventory.RecordInput{
		Type:              in.Type,
		ProductID:         in.ProductID,
		BatchID:           in.BatchID,
		FromLocationID:    in.FromLocationID,
		ToLocationID:      in.ToLocationID,
		Quantity:          in.Quantity,
		ActorID:           actorID,
		ReasonCode:        in.ReasonCode,
		ReferenceDocument: in.ReferenceDocument,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementDTO(m))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movements": out})
}

// ListMovements godoc
// @Summary      Listar movimientos del log (orden estable, reanudable)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        batch_id    query  string  false  "Filtrar por lote"
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339)"
// @Success      200  {object}  map[string]any
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		BatchID:   c.Query("batch_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}

	movs, err := h.ledger.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementDTO(m))
	}
	return c.JSON(fiber.Map{
		"total":     len(out),
		"limit":     page.Limit,
		"offset":    page.Offset,
		"movements": out,
	})
}

// GetStockLevel godoc
// @Summary      Nivel de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{productId} [get]
func (h *InventoryHandler) GetStockLevel(c *fiber.Ctx) error {
	level, err := h.stock.GetStockLevel(c.Context(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.StockLevelResponse{
		ProductID:       level.Product.ID,
		SKU:             level.Product.SKU,
		Available:       level.Available,
		BelowReorderMin: level.BelowReorderMin,
		ReorderMin:      level.Product.ReorderMin,
		ReorderMax:      level.Product.ReorderMax,
	}
	for _, ls := range level.AllocatedByLocation {
		resp.AllocatedByLocation = append(resp.AllocatedByLocation, dto.LocationStockDTO{
			LocationID: ls.LocationID,
			Quantity:   ls.Quantity,
		})
	}
	for _, bv := range level.Batches {
		resp.Batches = append(resp.Batches, toBatchDTO(bv))
	}
	return c.JSON(resp)
}

func toMovementDTO(m *entity.StockMovement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:                m.ID,
		Timestamp:         m.Timestamp,
		Type:              m.Type,
		ProductID:         m.ProductID,
		BatchID:           m.BatchID,
		FromLocationID:    m.FromLocationID,
		ToLocationID:      m.ToLocationID,
		Quantity:          m.Quantity,
		ActorID:           m.ActorID,
		ReasonCode:        m.ReasonCode,
		ReferenceDocument: m.ReferenceDocument,
	}
}
