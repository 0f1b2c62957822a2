package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse formato estándar de error de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateProductRequest alta de producto.
type CreateProductRequest struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	AfectacionIGV string          `json:"afectacion_igv"`
}

// UpdateProductRequest edición de datos comerciales.
type UpdateProductRequest struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	AfectacionIGV string          `json:"afectacion_igv"`
}

// CreateCustomerRequest alta de cliente.
type CreateCustomerRequest struct {
	Name        string `json:"name"`
	RazonSocial string `json:"razon_social"`
	Documento   string `json:"documento"`
	RUC         string `json:"ruc"`
	Direccion   string `json:"direccion"`
	Email       string `json:"email"`
	DiasCredito int    `json:"dias_credito"`
}

// CreateSeriesRequest alta de serie de numeración.
type CreateSeriesRequest struct {
	Kind string `json:"kind"`
	Code string `json:"code"`
}

// AdjustStockRequest ajuste manual de inventario.
type AdjustStockRequest struct {
	ProductID string          `json:"product_id"`
	Direction string          `json:"direction"` // ENTRADA | SALIDA
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
}

// ReceiptLineRequest línea de una recepción de compra.
type ReceiptLineRequest struct {
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	CostIncludesIGV bool            `json:"cost_includes_igv"`
}

// CreateReceiptRequest recepción de mercadería.
type CreateReceiptRequest struct {
	Reference string               `json:"reference"`
	Lines     []ReceiptLineRequest `json:"lines"`
}

// SaleLineRequest línea de venta. PrecioUnitario nulo usa el precio vigente
// del producto.
type SaleLineRequest struct {
	ProductID      string           `json:"product_id"`
	Quantity       decimal.Decimal  `json:"quantity"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario,omitempty"`
}

// CreateSaleRequest emisión de una venta.
type CreateSaleRequest struct {
	CustomerID   string            `json:"customer_id"`
	DocKind      string            `json:"doc_kind"` // vacío resuelve por cliente
	Condicion    string            `json:"condicion"`
	MetodoPago   string            `json:"metodo_pago"`
	AbonoInicial decimal.Decimal   `json:"abono_inicial"`
	Lines        []SaleLineRequest `json:"lines"`
}

// NoteLineRequest línea de devolución parcial.
type NoteLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateCreditNoteRequest emisión de nota de crédito contra una venta.
type CreateCreditNoteRequest struct {
	SaleID string            `json:"sale_id"`
	Kind   string            `json:"kind"`
	Motivo string            `json:"motivo"`
	Amount decimal.Decimal   `json:"amount"` // solo DESCUENTO_GLOBAL
	Lines  []NoteLineRequest `json:"lines"`  // solo DEVOLUCION_PARCIAL
}

// RegisterPaymentRequest abono contra una cuenta por cobrar.
type RegisterPaymentRequest struct {
	ReceivableID string          `json:"receivable_id"`
	Amount       decimal.Decimal `json:"amount"`
	MetodoPago   string          `json:"metodo_pago"`
	Referencia   string          `json:"referencia"`
	Notas        string          `json:"notas"`
}

// OpenSessionRequest apertura de caja.
type OpenSessionRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial"`
}

// CloseSessionRequest cierre de caja con arqueo.
type CloseSessionRequest struct {
	MontoDeclarado decimal.Decimal `json:"monto_declarado"`
}

// CashMovementRequest ingreso o egreso manual de caja.
type CashMovementRequest struct {
	Type        string          `json:"type"` // INGRESO | EGRESO
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// GuideLineRequest línea de guía de remisión.
type GuideLineRequest struct {
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnidadMedida string          `json:"unidad_medida"`
}

// CreateGuideRequest emisión de guía de remisión.
type CreateGuideRequest struct {
	MotivoTraslado      string             `json:"motivo_traslado"`
	FechaInicioTraslado time.Time          `json:"fecha_inicio_traslado"`
	DireccionPartida    string             `json:"direccion_partida"`
	DireccionLlegada    string             `json:"direccion_llegada"`
	Modalidad           string             `json:"modalidad"`
	PlacaVehiculo       string             `json:"placa_vehiculo"`
	PesoBrutoTotal      decimal.Decimal    `json:"peso_bruto_total"`
	NumeroBultos        int                `json:"numero_bultos"`
	Lines               []GuideLineRequest `json:"lines"`
}
