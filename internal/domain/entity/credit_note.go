package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de nota de crédito (catálogo SUNAT 07, simplificado).
const (
	NCAnulacion          = "ANULACION_DE_LA_OPERACION"
	NCDevolucionTotal    = "DEVOLUCION_TOTAL"
	NCDevolucionParcial  = "DEVOLUCION_PARCIAL"
	NCDescuentoGlobal    = "DESCUENTO_GLOBAL"
	NCCorreccionTexto    = "CORRECCION_DESCRIPCION"
)

// IsFullReversal indica si el tipo anula la operación completa.
func IsFullReversal(kind string) bool {
	return kind == NCAnulacion || kind == NCDevolucionTotal
}

// ReturnsStock indica si el tipo implica devolución de mercadería.
func ReturnsStock(kind string) bool {
	switch kind {
	case NCAnulacion, NCDevolucionTotal, NCDevolucionParcial:
		return true
	}
	return false
}

// ReducesDebt indica si el tipo reduce la deuda de una venta a crédito.
// La corrección de texto no toca deuda ni stock.
func ReducesDebt(kind string) bool {
	return kind != NCCorreccionTexto
}

// CreditNote referencia una venta original y registra su reversión. Los
// efectos de negocio (stock, cuenta por cobrar, caja) se aplican al crearla;
// el estado fiscal solo cambia con la respuesta del facturador.
type CreditNote struct {
	ID                string
	TenantID          string
	SaleID            string
	UserID            string
	SeriesID          string
	SeriesCode        string
	Number            int64
	Kind              string
	Motivo            string
	Total             decimal.Decimal
	StockRetornado    bool
	EfectivoDevuelto  bool
	EstadoSUNAT       string
	XMLURL            string
	CDRURL            string
	HashCPE           string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Lines []CreditNoteLine
}

// NumeroCompleto retorna el identificador legal de la nota, ej. FC01-45.
func (n *CreditNote) NumeroCompleto() string {
	return FormatNumero(n.SeriesCode, n.Number)
}

// CreditNoteLine es el detalle con el mismo snapshot fiscal que SaleLine.
type CreditNoteLine struct {
	ID             string
	TenantID       string
	CreditNoteID   string
	ProductID      string
	ProductName    string
	Quantity       decimal.Decimal
	PrecioUnitario decimal.Decimal
	ValorUnitario  decimal.Decimal
	IGVTotal       decimal.Decimal
	TasaIGV        decimal.Decimal
}
