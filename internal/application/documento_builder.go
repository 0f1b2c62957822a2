package application

import (
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// Los documentos enviados al facturador se arman exclusivamente desde los
// snapshots persistidos (líneas congeladas, nombre fiscal del cliente al
// momento de la venta). Así el barrido puede reconstruir el mismo payload
// aunque productos o clientes hayan cambiado después.

// BuildDocumentoVenta arma el payload de una venta. El cliente puede ser
// nil (venta a público general).
func BuildDocumentoVenta(sale *entity.Sale, customer *entity.Customer) *DocumentoFiscal {
	doc := &DocumentoFiscal{
		Tipo:          sale.DocKind,
		Serie:         sale.SeriesCode,
		Numero:        sale.Number,
		FechaEmision:  sale.FechaEmision,
		ClienteNombre: "CLIENTE GENERICO",
		Gravado:       sale.Gravado,
		IGV:           sale.IGV,
		Total:         sale.Total,
	}
	if customer != nil {
		doc.ClienteNombre = customer.FiscalName()
		if customer.RUC != "" {
			doc.ClienteDoc = customer.RUC
		} else {
			doc.ClienteDoc = customer.Documento
		}
	}
	for _, ln := range sale.Lines {
		doc.Items = append(doc.Items, ItemFiscal{
			Descripcion:    ln.ProductName,
			Cantidad:       ln.Quantity,
			ValorUnitario:  ln.ValorUnitario,
			PrecioUnitario: ln.PrecioUnitario,
			IGV:            ln.IGVTotal,
			TasaIGV:        ln.TasaIGV,
			UnidadMedida:   "NIU",
		})
	}
	return doc
}

// BuildDocumentoNota arma el payload de una nota de crédito referenciando
// el comprobante afectado.
func BuildDocumentoNota(note *entity.CreditNote, sale *entity.Sale, customer *entity.Customer) *DocumentoFiscal {
	doc := &DocumentoFiscal{
		Tipo:          entity.DocKindNotaCredito,
		Serie:         note.SeriesCode,
		Numero:        note.Number,
		FechaEmision:  note.CreatedAt,
		ClienteNombre: "CLIENTE GENERICO",
		Total:         note.Total,
		DocReferencia: sale.NumeroCompleto(),
		TipoNota:      note.Kind,
		MotivoNota:    note.Motivo,
	}
	if customer != nil {
		doc.ClienteNombre = customer.FiscalName()
		if customer.RUC != "" {
			doc.ClienteDoc = customer.RUC
		} else {
			doc.ClienteDoc = customer.Documento
		}
	}
	for _, ln := range note.Lines {
		doc.Items = append(doc.Items, ItemFiscal{
			Descripcion:    ln.ProductName,
			Cantidad:       ln.Quantity,
			ValorUnitario:  ln.ValorUnitario,
			PrecioUnitario: ln.PrecioUnitario,
			IGV:            ln.IGVTotal,
			TasaIGV:        ln.TasaIGV,
			UnidadMedida:   "NIU",
		})
		doc.Gravado = doc.Gravado.Add(ln.ValorUnitario.Mul(ln.Quantity))
		doc.IGV = doc.IGV.Add(ln.IGVTotal)
	}
	doc.Gravado = doc.Gravado.Round(2)
	doc.IGV = doc.IGV.Round(2)
	return doc
}

// BuildDocumentoGuia arma el payload de una guía de remisión.
func BuildDocumentoGuia(guide *entity.DispatchGuide) *DocumentoFiscal {
	doc := &DocumentoFiscal{
		Tipo:         entity.DocKindGuiaRemision,
		Serie:        guide.SeriesCode,
		Numero:       guide.Number,
		FechaEmision: guide.CreatedAt,
		Traslado: &DatosTraslado{
			Motivo:           guide.MotivoTraslado,
			FechaInicio:      guide.FechaInicioTraslado,
			DireccionPartida: guide.DireccionPartida,
			DireccionLlegada: guide.DireccionLlegada,
			Modalidad:        guide.Modalidad,
			PlacaVehiculo:    guide.PlacaVehiculo,
			PesoBruto:        guide.PesoBrutoTotal,
			Bultos:           guide.NumeroBultos,
		},
	}
	for _, ln := range guide.Lines {
		doc.Items = append(doc.Items, ItemFiscal{
			Descripcion:  ln.ProductName,
			Cantidad:     ln.Quantity,
			UnidadMedida: ln.UnidadMedida,
		})
	}
	return doc
}
