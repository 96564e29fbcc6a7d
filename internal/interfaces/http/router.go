package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Registry  *inventory.BatchRegistry
	Ledger    *inventory.MovementLedger
	Stock     *inventory.StockQuery
	Locations *inventory.LocationMap
	Counts    *inventory.CycleCountEngine
	JWTSecret string
	Issuer    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Issuer))

	// Inventario: recepciones, movimientos y stock (protegido)
	invGroup := protected.Group("/inventory")
	batchHandler := NewBatchHandler(deps.Registry)
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Stock)
	invGroup.Post("/receipts", batchHandler.Receive)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/stock/:productId", inventoryHandler.GetStockLevel)

	// Lotes (protegido)
	batches := protected.Group("/batches")
	batches.Get("/:id", batchHandler.GetBatch)
	batches.Patch("/:id/quality", batchHandler.SetQualityState)
	protected.Get("/products/:productId/batches", batchHandler.ListBatchesForProduct)

	// Ubicaciones (protegido)
	locationHandler := NewLocationHandler(deps.Locations)
	protected.Get("/warehouses/:warehouseId/locations", locationHandler.ListLocations)
	protected.Get("/locations/:id", locationHandler.GetLocation)

	// Conteos cíclicos (protegido)
	counts := protected.Group("/counts")
	countHandler := NewCountHandler(deps.Counts)
	counts.Post("/", countHandler.Schedule)
	counts.Post("/:id/start", countHandler.Start)
	counts.Post("/:id/items/:itemId", countHandler.RecordCount)
	counts.Post("/:id/finalize", countHandler.Finalize)
	counts.Post("/:id/cancel", countHandler.Cancel)
	counts.Get("/:id/report", countHandler.Report)
}
