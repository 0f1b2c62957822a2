package facturador

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

var _ application.Facturador = (*NubefactClient)(nil)

// NubefactClient habla con un gateway de facturación estilo Nubefact:
// POST JSON con el comprobante más su XML UBL, respuesta JSON con el
// veredicto de SUNAT y los enlaces a los artefactos.
//
// Los errores de transporte (red, timeout, 5xx) se retornan como error y
// envuelven domain.ErrAdapterUnavailable: el llamador deja el documento
// PENDIENTE y el barrido lo reintenta. Un rechazo de negocio llega como
// Respuesta con Exito=false, sin error.
type NubefactClient struct {
	httpClient *http.Client
	url        string
	token      string
	log        zerolog.Logger
}

// NewNubefactClient construye el cliente. El timeout viene en el http.Client
// del llamador además del contexto por operación.
func NewNubefactClient(httpClient *http.Client, url, token string, log zerolog.Logger) *NubefactClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &NubefactClient{httpClient: httpClient, url: url, token: token, log: log}
}

type nubefactItem struct {
	Descripcion          string `json:"descripcion"`
	Cantidad             string `json:"cantidad"`
	ValorUnitario        string `json:"valor_unitario"`
	PrecioUnitario       string `json:"precio_unitario"`
	IGV                  string `json:"igv"`
	PorcentajeIGV        string `json:"porcentaje_de_igv"`
	UnidadDeMedida       string `json:"unidad_de_medida"`
}

type nubefactRequest struct {
	Operacion            string         `json:"operacion"`
	TipoDeComprobante    string         `json:"tipo_de_comprobante"`
	Serie                string         `json:"serie"`
	Numero               int64          `json:"numero"`
	FechaDeEmision       string         `json:"fecha_de_emision"`
	ClienteNumero        string         `json:"cliente_numero_de_documento,omitempty"`
	ClienteDenominacion  string         `json:"cliente_denominacion"`
	TotalGravada         string         `json:"total_gravada"`
	TotalIGV             string         `json:"total_igv"`
	Total                string         `json:"total"`
	Items                []nubefactItem `json:"items"`
	DocumentoQueModifica string         `json:"documento_que_se_modifica,omitempty"`
	TipoDeNota           string         `json:"tipo_de_nota_de_credito,omitempty"`
	MotivoDeNota         string         `json:"motivo,omitempty"`
	XML                  string         `json:"xml"`
}

type nubefactResponse struct {
	Aceptada           bool   `json:"aceptada_por_sunat"`
	EnlaceXML          string `json:"enlace_del_xml"`
	EnlaceCDR          string `json:"enlace_del_cdr"`
	CodigoHash         string `json:"codigo_hash"`
	CadenaParaCodigoQR string `json:"cadena_para_codigo_qr"`
	CodigoError        string `json:"sunat_responsecode"`
	Errors             string `json:"errors"`
}

// EmitirComprobante envía una factura o boleta.
func (c *NubefactClient) EmitirComprobante(ctx context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return c.emitir(ctx, "generar_comprobante", doc)
}

// EmitirNotaCredito envía una nota de crédito.
func (c *NubefactClient) EmitirNotaCredito(ctx context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return c.emitir(ctx, "generar_comprobante", doc)
}

// EmitirGuiaRemision envía una guía de remisión.
func (c *NubefactClient) EmitirGuiaRemision(ctx context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return c.emitir(ctx, "generar_guia", doc)
}

func (c *NubefactClient) emitir(ctx context.Context, operacion string, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	xml, err := BuildXML(doc)
	if err != nil {
		return nil, fmt.Errorf("armar XML: %w", err)
	}

	payload := nubefactRequest{
		Operacion:           operacion,
		TipoDeComprobante:   doc.Tipo,
		Serie:               doc.Serie,
		Numero:              doc.Numero,
		FechaDeEmision:      doc.FechaEmision.Format("2006-01-02"),
		ClienteNumero:       doc.ClienteDoc,
		ClienteDenominacion: doc.ClienteNombre,
		TotalGravada:        doc.Gravado.StringFixed(2),
		TotalIGV:            doc.IGV.StringFixed(2),
		Total:               doc.Total.StringFixed(2),
		DocumentoQueModifica: doc.DocReferencia,
		TipoDeNota:          doc.TipoNota,
		MotivoDeNota:        doc.MotivoNota,
		XML:                 string(xml),
	}
	for _, item := range doc.Items {
		payload.Items = append(payload.Items, nubefactItem{
			Descripcion:    item.Descripcion,
			Cantidad:       item.Cantidad.String(),
			ValorUnitario:  item.ValorUnitario.String(),
			PrecioUnitario: item.PrecioUnitario.StringFixed(2),
			IGV:            item.IGV.StringFixed(2),
			PorcentajeIGV:  item.TasaIGV.String(),
			UnidadDeMedida: unidadOrDefault(item.UnidadMedida),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("armar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token token="+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAdapterUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrAdapterUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: gateway respondió %d", domain.ErrAdapterUnavailable, resp.StatusCode)
	}

	var out nubefactResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: respuesta ilegible: %v", domain.ErrAdapterUnavailable, err)
	}

	if !out.Aceptada {
		c.log.Warn().
			Str("documento", fmt.Sprintf("%s-%d", doc.Serie, doc.Numero)).
			Str("codigo", out.CodigoError).
			Str("detalle", out.Errors).
			Msg("comprobante rechazado por SUNAT")
		return &application.Respuesta{
			Exito:        false,
			Estado:       entity.SUNATRechazado,
			CodigoError:  out.CodigoError,
			DetalleError: out.Errors,
		}, nil
	}

	return &application.Respuesta{
		Exito:    true,
		Estado:   entity.SUNATAceptado,
		XMLURL:   out.EnlaceXML,
		CDRURL:   out.EnlaceCDR,
		HashCPE:  out.CodigoHash,
		CodigoQR: out.CadenaParaCodigoQR,
	}, nil
}
