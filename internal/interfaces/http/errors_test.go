package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, err)
	})
	resp, reqErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, reqErr)
	return resp.StatusCode
}

func TestRespondError_MapeaLaTaxonomia(t *testing.T) {
	assert.Equal(t, 400, statusFor(t, domain.Validationf("cantidad inválida")))
	assert.Equal(t, 404, statusFor(t, domain.ErrNotFound))
	assert.Equal(t, 409, statusFor(t, domain.ErrDuplicate))
	assert.Equal(t, 409, statusFor(t, domain.ErrConcurrencyConflict))
	assert.Equal(t, 409, statusFor(t, domain.ErrSeriesNotConfigured))
	assert.Equal(t, 409, statusFor(t, domain.ErrCashSessionClosed))
	assert.Equal(t, 409, statusFor(t, domain.ErrSaleNotAccepted))
	assert.Equal(t, 409, statusFor(t, domain.ErrSaleAlreadyVoided))
	assert.Equal(t, 409, statusFor(t, domain.ErrCannotVoidWithPartialReturns))
	assert.Equal(t, 409, statusFor(t, &domain.InsufficientStockError{ProductName: "x"}))
	assert.Equal(t, 409, statusFor(t, &domain.AmountExceedsBalanceError{}))
	assert.Equal(t, 409, statusFor(t, &domain.CreditBalanceError{}))
	assert.Equal(t, 409, statusFor(t, &domain.InsufficientLiquidityError{}))
	assert.Equal(t, 422, statusFor(t, &domain.RoundingDefectError{
		Difference: decimal.RequireFromString("0.01"),
		Tolerance:  decimal.RequireFromString("0.001"),
	}))
	assert.Equal(t, 500, statusFor(t, assert.AnError))
}

func TestRequireIdentity_CortaSinCabeceras(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, _, ok := requireIdentity(c)
		if !ok {
			return nil
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderTenantID, "t1")
	req.Header.Set(HeaderUserID, "u1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
