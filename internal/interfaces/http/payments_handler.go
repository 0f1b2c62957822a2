package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/application/payments"
)

// PaymentsHandler maneja abonos y consulta de cuentas por cobrar.
type PaymentsHandler struct {
	uc *payments.UseCase
}

// NewPaymentsHandler construye el handler.
func NewPaymentsHandler(uc *payments.UseCase) *PaymentsHandler {
	return &PaymentsHandler{uc: uc}
}

// RegisterPayment abona contra una cuenta por cobrar.
// POST /api/receivables/payments
func (h *PaymentsHandler) RegisterPayment(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.RegisterPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	payment, err := h.uc.RegisterPayment(c.Context(), payments.RegisterPaymentInputDTO{
		TenantID:     tenantID,
		UserID:       userID,
		ReceivableID: in.ReceivableID,
		Amount:       in.Amount,
		MetodoPago:   in.MetodoPago,
		Referencia:   in.Referencia,
		Notas:        in.Notas,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// ListByCustomer lista las cuentas de un cliente.
// GET /api/customers/:id/receivables
func (h *PaymentsHandler) ListByCustomer(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	onlyOpen := c.QueryBool("only_open", true)
	list, err := h.uc.ListByCustomer(c.Context(), tenantID, c.Params("id"), onlyOpen)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "receivables": list})
}
