package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/application/usecase"
)

// SeriesHandler administración de series de numeración.
type SeriesHandler struct {
	uc *usecase.SeriesUseCase
}

// NewSeriesHandler construye el handler.
func NewSeriesHandler(uc *usecase.SeriesUseCase) *SeriesHandler {
	return &SeriesHandler{uc: uc}
}

// Create registra una serie.
// POST /api/series
func (h *SeriesHandler) Create(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateSeriesRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	series, err := h.uc.Create(c.Context(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(series)
}

// List lista las series del tenant.
// GET /api/series
func (h *SeriesHandler) List(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	list, err := h.uc.List(c.Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "series": list})
}

// Deactivate apaga una serie.
// DELETE /api/series/:id
func (h *SeriesHandler) Deactivate(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	if err := h.uc.Deactivate(c.Context(), tenantID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "serie desactivada"})
}
