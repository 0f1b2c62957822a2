package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
)

// respondError traduce la taxonomía de errores del dominio a HTTP. Los
// conflictos de negocio (stock, numeración, caja, concurrencia) son 409:
// la petición era válida, el estado del sistema la rechazó.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	var excessErr *domain.AmountExceedsBalanceError
	var creditErr *domain.CreditBalanceError
	var liquidityErr *domain.InsufficientLiquidityError
	var roundingErr *domain.RoundingDefectError

	switch {
	case errors.Is(err, domain.ErrValidation):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado")
	case errors.Is(err, domain.ErrDuplicate):
		return respond(c, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe")
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return respond(c, fiber.StatusConflict, "CONCURRENCY_CONFLICT", err.Error())
	case errors.Is(err, domain.ErrSeriesNotConfigured):
		return respond(c, fiber.StatusConflict, "SERIES_NOT_CONFIGURED", err.Error())
	case errors.Is(err, domain.ErrCashSessionClosed):
		return respond(c, fiber.StatusConflict, "CASH_SESSION_CLOSED", err.Error())
	case errors.Is(err, domain.ErrSaleNotAccepted):
		return respond(c, fiber.StatusConflict, "SALE_NOT_ACCEPTED", err.Error())
	case errors.Is(err, domain.ErrSaleAlreadyVoided):
		return respond(c, fiber.StatusConflict, "SALE_ALREADY_VOIDED", err.Error())
	case errors.Is(err, domain.ErrCannotVoidWithPartialReturns):
		return respond(c, fiber.StatusConflict, "PARTIAL_RETURNS_EXIST", err.Error())
	case errors.As(err, &stockErr):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error())
	case errors.As(err, &excessErr):
		return respond(c, fiber.StatusConflict, "AMOUNT_EXCEEDS_BALANCE", excessErr.Error())
	case errors.As(err, &creditErr):
		return respond(c, fiber.StatusConflict, "CREDIT_BALANCE", creditErr.Error())
	case errors.As(err, &liquidityErr):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_LIQUIDITY", liquidityErr.Error())
	case errors.As(err, &roundingErr):
		return respond(c, fiber.StatusUnprocessableEntity, "ROUNDING_DEFECT", roundingErr.Error())
	default:
		return respond(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func respond(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}
