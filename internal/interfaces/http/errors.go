package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
)

// respondError mapea los centinelas de dominio a códigos HTTP. El mensaje
// conserva el texto envuelto en el punto donde se levantó el error, que nombra
// el invariante violado y las cantidades involucradas.
func respondError(c *fiber.Ctx, err error) error {
	type mapping struct {
		sentinel error
		status   int
		code     string
	}
	// Las violaciones de regla de negocio van como 409: la solicitud no puede
	// satisfacerse con el estado actual y no debe reintentarse sin cambiarla.
	mappings := []mapping{
		{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
		{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
		{domain.ErrInsufficientBatchQuantity, fiber.StatusConflict, "INSUFFICIENT_BATCH_QUANTITY"},
		{domain.ErrBatchBlocked, fiber.StatusConflict, "BATCH_BLOCKED"},
		{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{domain.ErrCapacityExceeded, fiber.StatusConflict, "CAPACITY_EXCEEDED"},
		{domain.ErrInsufficientAllocation, fiber.StatusConflict, "INSUFFICIENT_ALLOCATION"},
		{domain.ErrCountScopeConflict, fiber.StatusConflict, "COUNT_SCOPE_CONFLICT"},
		{domain.ErrAlreadyStarted, fiber.StatusConflict, "ALREADY_STARTED"},
		{domain.ErrAlreadyCounted, fiber.StatusConflict, "ALREADY_COUNTED"},
		{domain.ErrIncompleteCount, fiber.StatusConflict, "INCOMPLETE_COUNT"},
		{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	}
	for _, m := range mappings {
		if errors.Is(err, m.sentinel) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	// Fallo de infraestructura: clase distinta, el caller puede reintentar.
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
