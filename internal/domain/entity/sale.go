package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de envío a SUNAT de un comprobante.
const (
	SUNATPendiente = "PENDIENTE"
	SUNATAceptado  = "ACEPTADO"
	SUNATRechazado = "RECHAZADO"
)

// Condición de pago de una venta.
const (
	CondicionContado = "CONTADO"
	CondicionCredito = "CREDITO"
)

// Sale es la cabecera de una venta con su asignación de serie+correlativo
// y su estado fiscal. Una venta persistida nunca se borra; una venta
// ACEPTADA solo se revierte con nota de crédito.
type Sale struct {
	ID            string
	TenantID      string
	CustomerID    string // vacío para venta sin cliente identificado
	UserID        string
	CashSessionID string
	SeriesID      string
	SeriesCode    string
	Number        int64
	DocKind       string // FACTURA | BOLETA
	Gravado       decimal.Decimal
	IGV           decimal.Decimal
	Total         decimal.Decimal
	Condicion     string // CONTADO | CREDITO
	MetodoPago    string
	EstadoSUNAT   string
	Anulada       bool
	XMLURL        string
	CDRURL        string
	HashCPE       string
	CodigoQR      string
	FechaEmision  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Lines []SaleLine
}

// NumeroCompleto retorna el identificador legal del comprobante, ej. F001-123.
func (s *Sale) NumeroCompleto() string {
	return FormatNumero(s.SeriesCode, s.Number)
}

// ResultadoFiscal es la respuesta del facturador que se persiste sobre el
// comprobante: estado final y artefactos (XML, CDR, hash, QR).
type ResultadoFiscal struct {
	Estado      string // ACEPTADO | RECHAZADO | PENDIENTE
	XMLURL      string
	CDRURL      string
	HashCPE     string
	CodigoQR    string
	Observacion string
}

// SaleLine es el detalle de venta con snapshot fiscal inmutable: precio,
// descomposición base/IGV y costo quedan congelados al momento de la venta
// aunque el producto cambie después (necesario para márgenes históricos y
// para reconstruir el comprobante en el barrido).
type SaleLine struct {
	ID             string
	TenantID       string
	SaleID         string
	ProductID      string
	ProductName    string // snapshot para reconstruir el payload del facturador
	Quantity       decimal.Decimal
	PrecioUnitario decimal.Decimal // CON IGV, 2 decimales
	ValorUnitario  decimal.Decimal // base sin IGV, 4 decimales
	IGVTotal       decimal.Decimal // IGV de la línea, 2 decimales
	TasaIGV        decimal.Decimal // porcentaje, ej. 18
	CostoUnitario  decimal.Decimal // costo promedio al momento de la venta
}
