package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/cashbox"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
)

// CashboxHandler maneja sesiones y movimientos de caja.
type CashboxHandler struct {
	uc *cashbox.UseCase
}

// NewCashboxHandler construye el handler.
func NewCashboxHandler(uc *cashbox.UseCase) *CashboxHandler {
	return &CashboxHandler{uc: uc}
}

// Open abre una sesión de caja para el usuario.
// POST /api/cashbox/sessions
func (h *CashboxHandler) Open(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.OpenSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	session, err := h.uc.Open(c.Context(), tenantID, userID, in.MontoInicial)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Close cierra una sesión con arqueo.
// POST /api/cashbox/sessions/:id/close
func (h *CashboxHandler) Close(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	session, err := h.uc.Close(c.Context(), tenantID, c.Params("id"), in.MontoDeclarado)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// ManualMovement registra un ingreso o egreso manual en la sesión abierta
// del usuario.
// POST /api/cashbox/movements
func (h *CashboxHandler) ManualMovement(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	mov, err := h.uc.ManualMovement(c.Context(), tenantID, userID, in.Type, in.Description, in.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mov)
}

// GetSnapshot retorna la sesión con su saldo teórico derivado.
// GET /api/cashbox/sessions/:id
func (h *CashboxHandler) GetSnapshot(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	snapshot, err := h.uc.GetSnapshot(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}
