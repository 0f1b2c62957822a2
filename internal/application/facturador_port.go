package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ItemFiscal es una línea del documento enviado al facturador, armada solo
// desde snapshots persistidos (nunca desde el estado vivo del producto).
type ItemFiscal struct {
	Descripcion    string
	Cantidad       decimal.Decimal
	ValorUnitario  decimal.Decimal // sin IGV, 4 decimales
	PrecioUnitario decimal.Decimal // con IGV, 2 decimales
	IGV            decimal.Decimal
	TasaIGV        decimal.Decimal
	UnidadMedida   string
}

// DatosTraslado son los metadatos de una guía de remisión.
type DatosTraslado struct {
	Motivo           string
	FechaInicio      time.Time
	DireccionPartida string
	DireccionLlegada string
	Modalidad        string
	PlacaVehiculo    string
	PesoBruto        decimal.Decimal
	Bultos           int
}

// DocumentoFiscal es la representación genérica de un comprobante a emitir.
type DocumentoFiscal struct {
	Tipo          string // FACTURA | BOLETA | NOTA_CREDITO | GUIA_REMISION
	Serie         string
	Numero        int64
	FechaEmision  time.Time
	ClienteDoc    string
	ClienteNombre string
	Gravado       decimal.Decimal
	IGV           decimal.Decimal
	Total         decimal.Decimal
	Items         []ItemFiscal

	// Solo notas de crédito.
	DocReferencia string // número completo del comprobante afectado, ej. F001-123
	TipoNota      string
	MotivoNota    string

	// Solo guías de remisión.
	Traslado *DatosTraslado
}

// Respuesta es el resultado del facturador. Exito=false con error nil es un
// rechazo de negocio (RECHAZADO); un error de transporte o timeout deja el
// documento PENDIENTE.
type Respuesta struct {
	Exito        bool
	Estado       string
	XMLURL       string
	CDRURL       string
	HashCPE      string
	CodigoQR     string
	CodigoError  string
	DetalleError string
}

// Facturador es el puerto hacia la pasarela fiscal. Las implementaciones
// deben respetar el timeout del contexto.
type Facturador interface {
	EmitirComprobante(ctx context.Context, doc *DocumentoFiscal) (*Respuesta, error)
	EmitirNotaCredito(ctx context.Context, doc *DocumentoFiscal) (*Respuesta, error)
	EmitirGuiaRemision(ctx context.Context, doc *DocumentoFiscal) (*Respuesta, error)
}
