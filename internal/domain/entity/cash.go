package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de sesión de caja.
const (
	SessionAbierta = "ABIERTA"
	SessionCerrada = "CERRADA"
)

// Tipos de movimiento de caja.
const (
	CashIngreso = "INGRESO"
	CashEgreso  = "EGRESO"
)

// Clases de documento que pueden originar un movimiento de caja.
type CashRefKind string

const (
	CashRefVenta       CashRefKind = "VENTA"
	CashRefNotaCredito CashRefKind = "NOTA_CREDITO"
	CashRefPago        CashRefKind = "PAGO"
	CashRefManual      CashRefKind = "MANUAL"
)

// CashRef referencia al documento que originó un movimiento de caja
// (a lo sumo uno de venta, nota de crédito o pago; MANUAL va sin ID).
type CashRef struct {
	Kind CashRefKind
	ID   string
}

// CashSession es un turno de caja. El saldo teórico se deriva de los
// movimientos: apertura + ingresos − egresos.
type CashSession struct {
	ID              string
	TenantID        string
	UserID          string
	MontoInicial    decimal.Decimal
	Estado          string
	MontoDeclarado  *decimal.Decimal // al cierre
	MontoEsperado   *decimal.Decimal // al cierre
	Diferencia      *decimal.Decimal // declarado − esperado
	OpenedAt        time.Time
	ClosedAt        *time.Time
}

// CashMovement es una entrada append-only del libro de caja de una sesión.
type CashMovement struct {
	ID          string
	TenantID    string
	SessionID   string
	Type        string // INGRESO | EGRESO
	Amount      decimal.Decimal
	Description string
	Ref         CashRef
	Manual      bool
	CreatedAt   time.Time
}
