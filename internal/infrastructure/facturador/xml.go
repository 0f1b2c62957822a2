package facturador

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/jhoicas/Puntoventa-api/internal/application"
)

// Namespaces UBL 2.1 usados por SUNAT.
const (
	nsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// rootNameFor mapea el tipo de documento al elemento raíz UBL.
func rootNameFor(tipo string) string {
	switch tipo {
	case "NOTA_CREDITO":
		return "CreditNote"
	case "GUIA_REMISION":
		return "DespatchAdvice"
	default:
		return "Invoice"
	}
}

// BuildXML arma la representación UBL del comprobante como la espera el
// gateway. Solo usa los snapshots del documento: nombres, precios y
// descomposición congelados al momento de la emisión.
func BuildXML(doc *application.DocumentoFiscal) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("documento nil")
	}

	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := x.CreateElement(rootNameFor(doc.Tipo))
	root.CreateAttr("xmlns", nsInvoice)
	root.CreateAttr("xmlns:cac", nsCac)
	root.CreateAttr("xmlns:cbc", nsCbc)

	root.CreateElement("cbc:UBLVersionID").SetText("2.1")
	root.CreateElement("cbc:ID").SetText(fmt.Sprintf("%s-%d", doc.Serie, doc.Numero))
	root.CreateElement("cbc:IssueDate").SetText(doc.FechaEmision.Format("2006-01-02"))

	customer := root.CreateElement("cac:AccountingCustomerParty")
	party := customer.CreateElement("cac:Party")
	party.CreateElement("cbc:RegistrationName").SetText(doc.ClienteNombre)
	if doc.ClienteDoc != "" {
		party.CreateElement("cbc:ID").SetText(doc.ClienteDoc)
	}

	if doc.DocReferencia != "" {
		ref := root.CreateElement("cac:BillingReference")
		inv := ref.CreateElement("cac:InvoiceDocumentReference")
		inv.CreateElement("cbc:ID").SetText(doc.DocReferencia)
		inv.CreateElement("cbc:DocumentTypeCode").SetText(doc.TipoNota)
		if doc.MotivoNota != "" {
			ref.CreateElement("cbc:Note").SetText(doc.MotivoNota)
		}
	}

	if t := doc.Traslado; t != nil {
		shipment := root.CreateElement("cac:Shipment")
		shipment.CreateElement("cbc:HandlingCode").SetText(t.Motivo)
		shipment.CreateElement("cbc:GrossWeightMeasure").SetText(t.PesoBruto.String())
		shipment.CreateElement("cbc:TotalPackagesQuantity").SetText(fmt.Sprintf("%d", t.Bultos))
		stage := shipment.CreateElement("cac:ShipmentStage")
		stage.CreateElement("cbc:TransportModeCode").SetText(t.Modalidad)
		if t.PlacaVehiculo != "" {
			stage.CreateElement("cbc:ID").SetText(t.PlacaVehiculo)
		}
		delivery := shipment.CreateElement("cac:Delivery")
		delivery.CreateElement("cbc:DeliveryAddress").SetText(t.DireccionLlegada)
		delivery.CreateElement("cbc:DespatchAddress").SetText(t.DireccionPartida)
	}

	if !doc.Total.IsZero() || doc.Traslado == nil {
		tax := root.CreateElement("cac:TaxTotal")
		tax.CreateElement("cbc:TaxAmount").SetText(doc.IGV.StringFixed(2))
		sub := tax.CreateElement("cac:TaxSubtotal")
		sub.CreateElement("cbc:TaxableAmount").SetText(doc.Gravado.StringFixed(2))
		sub.CreateElement("cbc:TaxAmount").SetText(doc.IGV.StringFixed(2))

		total := root.CreateElement("cac:LegalMonetaryTotal")
		total.CreateElement("cbc:LineExtensionAmount").SetText(doc.Gravado.StringFixed(2))
		total.CreateElement("cbc:PayableAmount").SetText(doc.Total.StringFixed(2))
	}

	for i, item := range doc.Items {
		line := root.CreateElement("cac:InvoiceLine")
		line.CreateElement("cbc:ID").SetText(fmt.Sprintf("%d", i+1))
		qty := line.CreateElement("cbc:InvoicedQuantity")
		qty.CreateAttr("unitCode", unidadOrDefault(item.UnidadMedida))
		qty.SetText(item.Cantidad.String())
		line.CreateElement("cbc:LineExtensionAmount").SetText(item.ValorUnitario.Mul(item.Cantidad).StringFixed(2))
		itemEl := line.CreateElement("cac:Item")
		itemEl.CreateElement("cbc:Description").SetText(item.Descripcion)
		price := line.CreateElement("cac:Price")
		price.CreateElement("cbc:PriceAmount").SetText(item.ValorUnitario.String())
	}

	x.Indent(2)
	return x.WriteToBytes()
}

func unidadOrDefault(u string) string {
	if u == "" {
		return "NIU"
	}
	return u
}
