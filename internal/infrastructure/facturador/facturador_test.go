package facturador

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

func docDePrueba() *application.DocumentoFiscal {
	return &application.DocumentoFiscal{
		Tipo:          entity.DocKindBoleta,
		Serie:         "B001",
		Numero:        42,
		FechaEmision:  time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		ClienteNombre: "CLIENTE GENERICO",
		Gravado:       decimal.RequireFromString("100.00"),
		IGV:           decimal.RequireFromString("18.00"),
		Total:         decimal.RequireFromString("118.00"),
		Items: []application.ItemFiscal{
			{
				Descripcion:    "Gaseosa 500ml",
				Cantidad:       decimal.NewFromInt(2),
				ValorUnitario:  decimal.RequireFromString("50.0000"),
				PrecioUnitario: decimal.RequireFromString("59.00"),
				IGV:            decimal.RequireFromString("18.00"),
				TasaIGV:        decimal.NewFromInt(18),
			},
		},
	}
}

func TestBuildXML_ContieneDatosDelComprobante(t *testing.T) {
	xml, err := BuildXML(docDePrueba())
	require.NoError(t, err)

	s := string(xml)
	assert.Contains(t, s, "<cbc:ID>B001-42</cbc:ID>")
	assert.Contains(t, s, "<cbc:IssueDate>2025-03-10</cbc:IssueDate>")
	assert.Contains(t, s, "Gaseosa 500ml")
	assert.Contains(t, s, "<cbc:PayableAmount>118.00</cbc:PayableAmount>")
}

func TestBuildXML_NotaLlevaReferencia(t *testing.T) {
	doc := docDePrueba()
	doc.Tipo = entity.DocKindNotaCredito
	doc.DocReferencia = "B001-40"
	doc.TipoNota = entity.NCDevolucionParcial
	doc.MotivoNota = "devolución de mercadería"

	xml, err := BuildXML(doc)
	require.NoError(t, err)

	s := string(xml)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(strings.SplitN(s, "\n", 2)[1]), "<CreditNote"))
	assert.Contains(t, s, "<cbc:ID>B001-40</cbc:ID>")
	assert.Contains(t, s, "devolución de mercadería")
}

func TestMock_AceptaDeterministicamente(t *testing.T) {
	m := NewMock("", zerolog.Nop())

	r1, err := m.EmitirComprobante(context.Background(), docDePrueba())
	require.NoError(t, err)
	r2, err := m.EmitirComprobante(context.Background(), docDePrueba())
	require.NoError(t, err)

	assert.True(t, r1.Exito)
	assert.Equal(t, entity.SUNATAceptado, r1.Estado)
	assert.Equal(t, r1.HashCPE, r2.HashCPE)
	assert.Contains(t, r1.XMLURL, "B001-42")
}

func TestMock_RechazaNotaSinReferencia(t *testing.T) {
	m := NewMock("", zerolog.Nop())

	doc := docDePrueba()
	doc.Tipo = entity.DocKindNotaCredito

	resp, err := m.EmitirNotaCredito(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, resp.Exito)
	assert.Equal(t, entity.SUNATRechazado, resp.Estado)
}

func TestNubefact_Aceptado(t *testing.T) {
	var got nubefactRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Token token=secreto", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(nubefactResponse{
			Aceptada:   true,
			EnlaceXML:  "https://cdn/x.xml",
			EnlaceCDR:  "https://cdn/r.zip",
			CodigoHash: "abc123",
		})
	}))
	defer srv.Close()

	c := NewNubefactClient(srv.Client(), srv.URL, "secreto", zerolog.Nop())
	resp, err := c.EmitirComprobante(context.Background(), docDePrueba())
	require.NoError(t, err)

	assert.True(t, resp.Exito)
	assert.Equal(t, entity.SUNATAceptado, resp.Estado)
	assert.Equal(t, "abc123", resp.HashCPE)
	assert.Equal(t, "B001", got.Serie)
	assert.Equal(t, "118.00", got.Total)
	assert.NotEmpty(t, got.XML)
}

func TestNubefact_RechazoDeNegocio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(nubefactResponse{
			Aceptada:    false,
			CodigoError: "2324",
			Errors:      "el documento de referencia no existe",
		})
	}))
	defer srv.Close()

	c := NewNubefactClient(srv.Client(), srv.URL, "t", zerolog.Nop())
	resp, err := c.EmitirComprobante(context.Background(), docDePrueba())
	require.NoError(t, err)

	assert.False(t, resp.Exito)
	assert.Equal(t, entity.SUNATRechazado, resp.Estado)
	assert.Equal(t, "2324", resp.CodigoError)
}

func TestNubefact_ErroresDeTransporte(t *testing.T) {
	t.Run("5xx del gateway", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewNubefactClient(srv.Client(), srv.URL, "t", zerolog.Nop())
		_, err := c.EmitirComprobante(context.Background(), docDePrueba())
		assert.ErrorIs(t, err, domain.ErrAdapterUnavailable)
	})

	t.Run("timeout de contexto", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		c := NewNubefactClient(srv.Client(), srv.URL, "t", zerolog.Nop())
		_, err := c.EmitirComprobante(ctx, docDePrueba())
		assert.ErrorIs(t, err, domain.ErrAdapterUnavailable)
	})
}
