package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/cashbox"
	"github.com/jhoicas/Puntoventa-api/internal/application/creditnotes"
	"github.com/jhoicas/Puntoventa-api/internal/application/dispatch"
	"github.com/jhoicas/Puntoventa-api/internal/application/inventory"
	"github.com/jhoicas/Puntoventa-api/internal/application/payments"
	"github.com/jhoicas/Puntoventa-api/internal/application/sales"
	"github.com/jhoicas/Puntoventa-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *usecase.ProductUseCase
	CustomerUC   *usecase.CustomerUseCase
	SeriesUC     *usecase.SeriesUseCase
	Adjust       *inventory.AdjustUseCase
	Receipt      *inventory.ReceiptUseCase
	Kardex       *inventory.KardexUseCase
	CreateSale   *sales.CreateSaleUseCase
	SalesQuery   *sales.QueryUseCase
	CreateNote   *creditnotes.CreateNoteUseCase
	NotesQuery   *creditnotes.QueryUseCase
	PaymentsUC   *payments.UseCase
	CashboxUC    *cashbox.UseCase
	CreateGuide  *dispatch.CreateGuideUseCase
	GuidesQuery  *dispatch.QueryUseCase
}

// Router registra las rutas de la API. Toda ruta exige las cabeceras
// X-Tenant-ID y X-User-ID; no hay tenant ambiente.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	series := api.Group("/series")
	seriesHandler := NewSeriesHandler(deps.SeriesUC)
	series.Post("/", seriesHandler.Create)
	series.Get("/", seriesHandler.List)
	series.Delete("/:id", seriesHandler.Deactivate)

	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Adjust, deps.Receipt, deps.Kardex)
	invGroup.Post("/adjustments", inventoryHandler.Adjust)
	invGroup.Post("/receipts", inventoryHandler.Receive)
	invGroup.Get("/kardex/:productId", inventoryHandler.Kardex)

	salesGroup := api.Group("/sales")
	salesHandler := NewSalesHandler(deps.CreateSale, deps.SalesQuery)
	creditNoteHandler := NewCreditNoteHandler(deps.CreateNote, deps.NotesQuery)
	salesGroup.Post("/", salesHandler.Create)
	salesGroup.Get("/", salesHandler.List)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Get("/:id/credit-notes", creditNoteHandler.ListBySale)

	notes := api.Group("/credit-notes")
	notes.Post("/", creditNoteHandler.Create)
	notes.Get("/:id", creditNoteHandler.GetByID)

	paymentsHandler := NewPaymentsHandler(deps.PaymentsUC)
	api.Post("/receivables/payments", paymentsHandler.RegisterPayment)
	customers.Get("/:id/receivables", paymentsHandler.ListByCustomer)

	cash := api.Group("/cashbox")
	cashboxHandler := NewCashboxHandler(deps.CashboxUC)
	cash.Post("/sessions", cashboxHandler.Open)
	cash.Get("/sessions/:id", cashboxHandler.GetSnapshot)
	cash.Post("/sessions/:id/close", cashboxHandler.Close)
	cash.Post("/movements", cashboxHandler.ManualMovement)

	guides := api.Group("/dispatch-guides")
	dispatchHandler := NewDispatchHandler(deps.CreateGuide, deps.GuidesQuery)
	guides.Post("/", dispatchHandler.Create)
	guides.Get("/", dispatchHandler.List)
	guides.Get("/:id", dispatchHandler.GetByID)
}
