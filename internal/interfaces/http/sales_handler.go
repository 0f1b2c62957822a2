package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/application/sales"
)

// SalesHandler maneja la emisión y consulta de ventas.
type SalesHandler struct {
	create *sales.CreateSaleUseCase
	query  *sales.QueryUseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(create *sales.CreateSaleUseCase, query *sales.QueryUseCase) *SalesHandler {
	return &SalesHandler{create: create, query: query}
}

// Create emite una venta. La respuesta llega con el estado fiscal del
// primer intento: ACEPTADO, RECHAZADO o PENDIENTE si el facturador no
// respondió a tiempo.
// POST /api/sales
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	input := sales.CreateSaleInputDTO{
		TenantID:     tenantID,
		UserID:       userID,
		CustomerID:   in.CustomerID,
		DocKind:      in.DocKind,
		Condicion:    in.Condicion,
		MetodoPago:   in.MetodoPago,
		AbonoInicial: in.AbonoInicial,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, sales.SaleLineDTO{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			PrecioUnitario: l.PrecioUnitario,
		})
	}
	sale, err := h.create.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GetByID obtiene una venta con sus líneas.
// GET /api/sales/:id
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	sale, err := h.query.GetByID(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// List lista ventas con filtro de fechas opcional.
// GET /api/sales
func (h *SalesHandler) List(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "parámetro from inválido (RFC3339)")
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "parámetro to inválido (RFC3339)")
	}
	list, err := h.query.List(c.Context(), tenantID, from, to, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "sales": list})
}
