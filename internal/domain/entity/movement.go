package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (Kardex).
const (
	MovementEntradaCompra     = "ENTRADA_COMPRA"
	MovementEntradaDevolucion = "ENTRADA_DEVOLUCION"
	MovementEntradaAjuste     = "ENTRADA_AJUSTE"
	MovementSalidaVenta       = "SALIDA_VENTA"
	MovementSalidaAjuste      = "SALIDA_AJUSTE"
)

// IsInbound indica si el tipo de movimiento aumenta stock.
func IsInbound(movementType string) bool {
	switch movementType {
	case MovementEntradaCompra, MovementEntradaDevolucion, MovementEntradaAjuste:
		return true
	}
	return false
}

// Clases de documento que pueden originar un movimiento.
type RefKind string

const (
	RefVenta        RefKind = "VENTA"
	RefNotaCredito  RefKind = "NOTA_CREDITO"
	RefCompra       RefKind = "COMPRA"
	RefAjuste       RefKind = "AJUSTE"
)

// DocumentRef es la referencia tipada al documento que causó un movimiento
// (variante etiquetada en lugar de varias FKs nullables: exactamente una
// clase, y solo AJUSTE va sin ID de documento).
type DocumentRef struct {
	Kind RefKind
	ID   string // vacío solo para AJUSTE
}

func SaleRef(saleID string) DocumentRef        { return DocumentRef{Kind: RefVenta, ID: saleID} }
func CreditNoteRef(noteID string) DocumentRef  { return DocumentRef{Kind: RefNotaCredito, ID: noteID} }
func GoodsReceiptRef(id string) DocumentRef    { return DocumentRef{Kind: RefCompra, ID: id} }
func AdjustmentRef() DocumentRef               { return DocumentRef{Kind: RefAjuste} }

// InventoryMovement es una entrada inmutable del Kardex. Se crea una vez y
// nunca se edita ni se borra: un ajuste mal registrado se corrige con el
// ajuste inverso. Para cada producto, ordenadas por creación, las entradas
// encadenan: BalanceAfter de una es BalanceBefore de la siguiente.
type InventoryMovement struct {
	ID            string
	TenantID      string
	ProductID     string
	Type          string
	Quantity      decimal.Decimal // siempre positiva; el signo lo da Type
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	UnitCost      *decimal.Decimal // snapshot de costo; nil en salidas sin costo
	Ref           DocumentRef
	Reason        string // solo ajustes manuales
	CreatedBy     string
	CreatedAt     time.Time
}
