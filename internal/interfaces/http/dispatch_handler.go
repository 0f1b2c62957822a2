package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/dispatch"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
)

// DispatchHandler maneja guías de remisión.
type DispatchHandler struct {
	create *dispatch.CreateGuideUseCase
	query  *dispatch.QueryUseCase
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(create *dispatch.CreateGuideUseCase, query *dispatch.QueryUseCase) *DispatchHandler {
	return &DispatchHandler{create: create, query: query}
}

// Create emite una guía de remisión.
// POST /api/dispatch-guides
func (h *DispatchHandler) Create(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateGuideRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	input := dispatch.CreateGuideInputDTO{
		TenantID:            tenantID,
		UserID:              userID,
		MotivoTraslado:      in.MotivoTraslado,
		FechaInicioTraslado: in.FechaInicioTraslado,
		DireccionPartida:    in.DireccionPartida,
		DireccionLlegada:    in.DireccionLlegada,
		Modalidad:           in.Modalidad,
		PlacaVehiculo:       in.PlacaVehiculo,
		PesoBrutoTotal:      in.PesoBrutoTotal,
		NumeroBultos:        in.NumeroBultos,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, dispatch.GuideLineDTO{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnidadMedida: l.UnidadMedida,
		})
	}
	guide, err := h.create.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(guide)
}

// GetByID obtiene una guía con sus líneas.
// GET /api/dispatch-guides/:id
func (h *DispatchHandler) GetByID(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	guide, err := h.query.GetByID(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(guide)
}

// List lista guías.
// GET /api/dispatch-guides
func (h *DispatchHandler) List(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	list, err := h.query.List(c.Context(), tenantID, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "guides": list})
}
