package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuenta por cobrar. Los estados terminales (PAGADA,
// CANCELADA) se conservan para auditoría: una cuenta nunca se elimina.
const (
	ReceivableVigente   = "VIGENTE"
	ReceivablePorVencer = "POR_VENCER"
	ReceivableVencida   = "VENCIDA"
	ReceivablePagada    = "PAGADA"
	ReceivableCancelada = "CANCELADA"
)

// Receivable es la deuda de un cliente por una venta a crédito. La mutan
// los pagos y las notas de crédito que reducen deuda.
type Receivable struct {
	ID           string
	TenantID     string
	SaleID       string
	CustomerID   string
	Total        decimal.Decimal
	Paid         decimal.Decimal
	Balance      decimal.Decimal
	Estado       string
	FechaEmision time.Time
	Vencimiento  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOpen indica si la cuenta admite pagos o ajustes.
func (r *Receivable) IsOpen() bool {
	return r.Estado != ReceivablePagada && r.Estado != ReceivableCancelada
}

// Payment es un abono contra una cuenta por cobrar.
type Payment struct {
	ID           string
	TenantID     string
	ReceivableID string
	UserID       string
	Amount       decimal.Decimal
	MetodoPago   string
	Referencia   string
	Notas        string
	FechaPago    time.Time
}
