package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
// Los errores de negocio abortan la transacción completa: ningún efecto
// parcial (ledger, cuenta por cobrar, caja) debe quedar visible.
var (
	ErrNotFound                     = errors.New("recurso no encontrado")
	ErrDuplicate                    = errors.New("el recurso ya existe")
	ErrValidation                   = errors.New("entrada inválida")
	ErrConcurrencyConflict          = errors.New("conflicto de concurrencia: otro proceso modificó el registro, reintente la operación completa")
	ErrSeriesNotConfigured          = errors.New("no existe una serie activa para este tipo de comprobante")
	ErrCashSessionClosed            = errors.New("la sesión de caja no está abierta")
	ErrSaleNotAccepted              = errors.New("la venta original no está aceptada por SUNAT")
	ErrSaleAlreadyVoided            = errors.New("la venta ya fue anulada totalmente, no se pueden emitir más notas de crédito")
	ErrCannotVoidWithPartialReturns = errors.New("no se puede anular totalmente una venta con devoluciones parciales previas")

	// ErrAdapterUnavailable nunca se propaga como fallo de la operación de
	// negocio: el comprobante queda PENDIENTE y lo recoge el barrido.
	ErrAdapterUnavailable = errors.New("facturador no disponible")
)

// InsufficientStockError indica que una salida dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductName string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: disponible %s, requerido %s",
		e.ProductName, e.Available.String(), e.Requested.String())
}

// AmountExceedsBalanceError indica que una nota de crédito excede el saldo
// disponible de la venta (total menos notas no rechazadas previas).
type AmountExceedsBalanceError struct {
	SaleTotal decimal.Decimal
	Credited  decimal.Decimal
	Requested decimal.Decimal
}

func (e *AmountExceedsBalanceError) Error() string {
	available := e.SaleTotal.Sub(e.Credited)
	return fmt.Sprintf("el monto excede el saldo disponible de la venta: total %s, ya devuelto %s, disponible %s, solicitado %s",
		e.SaleTotal.StringFixed(2), e.Credited.StringFixed(2), available.StringFixed(2), e.Requested.StringFixed(2))
}

// CreditBalanceError indica que el ajuste dejaría al cliente con saldo a
// favor (pagó más de lo que quedaría debiendo). El motor no lo resuelve
// automáticamente: requiere un vale de devolución emitido aparte.
type CreditBalanceError struct {
	Paid     decimal.Decimal
	NewTotal decimal.Decimal
}

func (e *CreditBalanceError) Error() string {
	return fmt.Sprintf("la nota de crédito genera saldo a favor del cliente: pagado %s contra nuevo total %s",
		e.Paid.StringFixed(2), e.NewTotal.StringFixed(2))
}

// InsufficientLiquidityError indica que la sesión de caja no tiene efectivo
// suficiente para un egreso (ej. devolución por nota de crédito).
type InsufficientLiquidityError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("saldo de caja insuficiente: disponible S/ %s, requerido S/ %s",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

// RoundingDefectError indica una discrepancia de redondeo mayor a la
// tolerancia configurada. No es un artefacto de redondeo: es un defecto y
// debe fallar en voz alta en lugar de corregirse en silencio.
type RoundingDefectError struct {
	Difference decimal.Decimal
	Tolerance  decimal.Decimal
}

func (e *RoundingDefectError) Error() string {
	return fmt.Sprintf("discrepancia de redondeo %s excede la tolerancia %s",
		e.Difference.String(), e.Tolerance.String())
}

// Validationf envuelve ErrValidation con detalle, preservando errors.Is.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
