package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modalidades de transporte de una guía de remisión.
const (
	TransportePrivado = "PRIVADO"
	TransportePublico = "PUBLICO"
)

// DispatchGuide es una guía de remisión electrónica (traslado de
// mercadería). Participa del barrido fiscal igual que ventas y notas.
type DispatchGuide struct {
	ID                  string
	TenantID            string
	UserID              string
	SeriesID            string
	SeriesCode          string
	Number              int64
	MotivoTraslado      string
	FechaInicioTraslado time.Time
	DireccionPartida    string
	DireccionLlegada    string
	Modalidad           string // PRIVADO | PUBLICO
	PlacaVehiculo       string
	PesoBrutoTotal      decimal.Decimal
	NumeroBultos        int
	EstadoSUNAT         string
	XMLURL              string
	CDRURL              string
	HashCPE             string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Lines []DispatchGuideLine
}

// NumeroCompleto retorna el identificador legal de la guía, ej. T001-12.
func (g *DispatchGuide) NumeroCompleto() string {
	return FormatNumero(g.SeriesCode, g.Number)
}

// DispatchGuideLine es el detalle de una guía.
type DispatchGuideLine struct {
	ID              string
	TenantID        string
	DispatchGuideID string
	ProductID       string
	ProductName     string
	Quantity        decimal.Decimal
	UnidadMedida    string // código SUNAT, ej. NIU
}
