package facturador

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

var _ application.Facturador = (*Mock)(nil)

// Mock es el facturador de desarrollo: acepta todo comprobante bien formado
// de manera determinística, sin red. El hash se deriva del XML real, así el
// flujo completo (armado de documento, URLs, persistencia del resultado) se
// ejercita igual que con el gateway.
type Mock struct {
	baseURL string
	log     zerolog.Logger
}

// NewMock construye el simulador. baseURL es el prefijo de los enlaces
// ficticios a XML y CDR.
func NewMock(baseURL string, log zerolog.Logger) *Mock {
	if baseURL == "" {
		baseURL = "https://cpe.local"
	}
	return &Mock{baseURL: baseURL, log: log}
}

// EmitirComprobante simula la emisión de una factura o boleta.
func (m *Mock) EmitirComprobante(ctx context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return m.emitir(ctx, doc)
}

// EmitirNotaCredito simula la emisión de una nota de crédito.
func (m *Mock) EmitirNotaCredito(ctx context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	if doc != nil && doc.DocReferencia == "" {
		return &application.Respuesta{
			Exito:        false,
			Estado:       entity.SUNATRechazado,
			CodigoError:  "2116",
			DetalleError: "nota de crédito sin documento de referencia",
		}, nil
	}
	return m.emitir(ctx, doc)
}

// EmitirGuiaRemision simula la emisión de una guía de remisión.
func (m *Mock) EmitirGuiaRemision(ctx context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return m.emitir(ctx, doc)
}

func (m *Mock) emitir(ctx context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("emitir %s: %w", doc.Tipo, err)
	}
	xml, err := BuildXML(doc)
	if err != nil {
		return nil, fmt.Errorf("armar XML: %w", err)
	}
	sum := sha256.Sum256(xml)
	hash := hex.EncodeToString(sum[:])
	numero := fmt.Sprintf("%s-%d", doc.Serie, doc.Numero)

	m.log.Debug().Str("documento", numero).Str("tipo", doc.Tipo).Msg("facturador mock: aceptado")

	return &application.Respuesta{
		Exito:    true,
		Estado:   entity.SUNATAceptado,
		XMLURL:   fmt.Sprintf("%s/xml/%s.xml", m.baseURL, numero),
		CDRURL:   fmt.Sprintf("%s/cdr/R-%s.zip", m.baseURL, numero),
		HashCPE:  hash,
		CodigoQR: fmt.Sprintf("%s|%s|%s", numero, doc.Total.StringFixed(2), hash[:16]),
	}, nil
}
