package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/creditnotes"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
)

// CreditNoteHandler maneja la emisión y consulta de notas de crédito.
type CreditNoteHandler struct {
	create *creditnotes.CreateNoteUseCase
	query  *creditnotes.QueryUseCase
}

// NewCreditNoteHandler construye el handler.
func NewCreditNoteHandler(create *creditnotes.CreateNoteUseCase, query *creditnotes.QueryUseCase) *CreditNoteHandler {
	return &CreditNoteHandler{create: create, query: query}
}

// Create emite una nota de crédito contra una venta aceptada.
// POST /api/credit-notes
func (h *CreditNoteHandler) Create(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateCreditNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	input := creditnotes.CreateNoteInputDTO{
		TenantID: tenantID,
		UserID:   userID,
		SaleID:   in.SaleID,
		Kind:     in.Kind,
		Motivo:   in.Motivo,
		Amount:   in.Amount,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, creditnotes.NoteLineDTO{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	note, err := h.create.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// GetByID obtiene una nota con sus líneas.
// GET /api/credit-notes/:id
func (h *CreditNoteHandler) GetByID(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	note, err := h.query.GetByID(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(note)
}

// ListBySale lista las notas de una venta.
// GET /api/sales/:id/credit-notes
func (h *CreditNoteHandler) ListBySale(c *fiber.Ctx) error {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	list, err := h.query.ListBySale(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "credit_notes": list})
}
