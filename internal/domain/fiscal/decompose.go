// Package fiscal contiene la aritmética de descomposición de precios con
// IGV incluido. Todo es puro y con decimales exactos: el redondeo
// (half-up) se aplica una sola vez, al final, nunca sobre intermedios.
package fiscal

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
)

// Tasa de IGV por defecto en Perú (18%).
var DefaultRate = decimal.NewFromInt(18)

// DefaultTolerance es la tolerancia de ajuste al agregar líneas (política
// configurable, no ley: el 0.05 viene del sistema original sin rationale
// documentado).
var DefaultTolerance = decimal.RequireFromString("0.05")

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// Breakdown es el desglose de un monto CON IGV incluido.
// Invariante: Base + Tax == Total al céntimo, siempre.
type Breakdown struct {
	Base  decimal.Decimal // 2 decimales
	Base4 decimal.Decimal // base a 4 decimales, para snapshots de línea
	Tax   decimal.Decimal // 2 decimales
	Total decimal.Decimal // 2 decimales
}

// Decompose descompone un monto con IGV incluido según la tasa (porcentaje,
// ej. 18; 0 para exonerados). base = total / (1 + tasa/100). El IGV se
// redondea half-up a 2 decimales y la base se deriva por resta, de modo que
// la suma reconstruye el total exacto.
func Decompose(total, ratePct decimal.Decimal) Breakdown {
	t := total.Round(2)
	if ratePct.IsZero() {
		return Breakdown{Base: t, Base4: total.Round(4), Tax: decimal.Zero.Round(2), Total: t}
	}
	divisor := one.Add(ratePct.Div(hundred))
	baseExact := total.DivRound(divisor, 12)
	tax := total.Sub(baseExact).Round(2)
	return Breakdown{
		Base:  t.Sub(tax),
		Base4: baseExact.Round(4),
		Tax:   tax,
		Total: t,
	}
}

// Line es una línea a agregar en un comprobante: precio unitario CON IGV,
// cantidad y tasa aplicable.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	RatePct   decimal.Decimal
}

// Totals son los totales fiscales de un comprobante.
// Invariante: Gravado + IGV == Total.
type Totals struct {
	Gravado decimal.Decimal
	IGV     decimal.Decimal
	Total   decimal.Decimal
}

// AggregateLines agrega N líneas en los totales del documento. El total es
// la suma EXACTA de los precios ingresados; si el redondeo por línea de
// base e IGV difiere del total exacto en a lo sumo `tolerance`, la
// diferencia se absorbe en el componente IGV (nunca en la base). Una
// diferencia mayor es un defecto y retorna RoundingDefectError.
func AggregateLines(lines []Line, tolerance decimal.Decimal) (Totals, error) {
	var gravado, igv, total decimal.Decimal
	for _, ln := range lines {
		subtotal := ln.UnitPrice.Mul(ln.Quantity)
		bd := Decompose(ln.UnitPrice, ln.RatePct)
		gravado = gravado.Add(bd.Base4.Mul(ln.Quantity))
		igv = igv.Add(subtotal.Sub(bd.Base4.Mul(ln.Quantity)))
		total = total.Add(subtotal)
	}

	gravadoR := gravado.Round(2)
	igvR := igv.Round(2)
	totalR := total.Round(2)

	diff := totalR.Sub(gravadoR.Add(igvR))
	if !diff.IsZero() {
		if diff.Abs().GreaterThan(tolerance) {
			return Totals{}, &domain.RoundingDefectError{Difference: diff, Tolerance: tolerance}
		}
		igvR = igvR.Add(diff)
	}

	return Totals{Gravado: gravadoR, IGV: igvR, Total: totalR}, nil
}

// Config es la configuración tributaria del tenant.
type Config struct {
	TasaImpuesto      decimal.Decimal // porcentaje, ej. 18
	ExoneradoRegional bool            // ej. Amazonía: todo a 0%
}

// RateFor resuelve la tasa de IGV según jerarquía: exoneración regional del
// tenant, luego afectación del producto, luego tasa del tenant.
func RateFor(cfg Config, afectacion string) decimal.Decimal {
	if cfg.ExoneradoRegional {
		return decimal.Zero
	}
	if afectacion == "EXONERADO" || afectacion == "INAFECTO" {
		return decimal.Zero
	}
	return cfg.TasaImpuesto
}

// WeightedAverageCost calcula el costo promedio ponderado tras una entrada:
// ((stock * costo) + (cantidad * costoEntrada)) / (stock + cantidad).
func WeightedAverageCost(stock, cost, inQty, inCost decimal.Decimal) decimal.Decimal {
	sum := stock.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return stock.Mul(cost).Add(inQty.Mul(inCost)).DivRound(sum, 6)
}
