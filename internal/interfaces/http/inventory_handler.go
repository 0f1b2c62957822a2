package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/application/inventory"
)

// InventoryHandler maneja ajustes, recepciones y consulta de Kardex.
type InventoryHandler struct {
	adjust  *inventory.AdjustUseCase
	receipt *inventory.ReceiptUseCase
	kardex  *inventory.KardexUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjust *inventory.AdjustUseCase, receipt *inventory.ReceiptUseCase, kardex *inventory.KardexUseCase) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, receipt: receipt, kardex: kardex}
}

// Adjust registra un ajuste manual de stock.
// POST /api/inventory/adjustments
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	mov, err := h.adjust.Adjust(c.Context(), inventory.AdjustInputDTO{
		TenantID:  tenantID,
		UserID:    userID,
		ProductID: in.ProductID,
		Direction: in.Direction,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mov)
}

// Receive registra una recepción de compra completa.
// POST /api/inventory/receipts
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	tenantID, userID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	input := inventory.ReceiptInputDTO{
		TenantID:  tenantID,
		UserID:    userID,
		Reference: in.Reference,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, inventory.ReceiptLineDTO{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			UnitCost:        l.UnitCost,
			CostIncludesIGV: l.CostIncludesIGV,
		})
	}
	result, err := h.receipt.Receive(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Kardex lista los movimientos de un producto.
// GET /api/inventory/kardex/:productId
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
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
	list, err := h.kardex.ListByProduct(c.Context(), tenantID, c.Params("productId"),
		from, to, c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// parseTimeQuery lee un parámetro de fecha RFC3339 opcional.
func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
