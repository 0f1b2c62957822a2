package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/fiscal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestDecompose_VectorSUNAT valida el vector de referencia: S/ 118.00 con
// IGV 18% debe descomponerse exactamente en base 100.00 e IGV 18.00.
func TestDecompose_VectorSUNAT(t *testing.T) {
	bd := fiscal.Decompose(d("118.00"), fiscal.DefaultRate)

	assert.True(t, bd.Base.Equal(d("100.00")), "base = %s", bd.Base)
	assert.True(t, bd.Tax.Equal(d("18.00")), "igv = %s", bd.Tax)
	assert.True(t, bd.Total.Equal(d("118.00")))
}

// TestDecompose_RoundTrip verifica la propiedad base + igv == total al
// céntimo para un barrido de montos y tasas, incluyendo los que no dividen
// exacto (ej. 0.01, 99.99, 33.33).
func TestDecompose_RoundTrip(t *testing.T) {
	amounts := []string{"0.01", "0.10", "1.00", "9.99", "33.33", "59.00", "99.99", "118.00", "1250.75", "999999.99"}
	rates := []string{"0", "10", "18"}

	for _, a := range amounts {
		for _, r := range rates {
			bd := fiscal.Decompose(d(a), d(r))
			assert.True(t, bd.Base.Add(bd.Tax).Equal(bd.Total),
				"monto %s tasa %s: %s + %s != %s", a, r, bd.Base, bd.Tax, bd.Total)
			assert.True(t, bd.Total.Equal(d(a)))
			assert.False(t, bd.Base.IsNegative())
			assert.False(t, bd.Tax.IsNegative())
		}
	}
}

// TestDecompose_Exonerado: tasa 0 devuelve todo como base.
func TestDecompose_Exonerado(t *testing.T) {
	bd := fiscal.Decompose(d("50.00"), decimal.Zero)
	assert.True(t, bd.Base.Equal(d("50.00")))
	assert.True(t, bd.Tax.IsZero())
}

// TestAggregateLines_SumaExacta: el total del documento es la suma exacta
// de los precios ingresados y gravado+igv lo reconstruyen.
func TestAggregateLines_SumaExacta(t *testing.T) {
	lines := []fiscal.Line{
		{UnitPrice: d("118.00"), Quantity: d("10"), RatePct: fiscal.DefaultRate},
		{UnitPrice: d("59.00"), Quantity: d("5"), RatePct: fiscal.DefaultRate},
	}

	tot, err := fiscal.AggregateLines(lines, fiscal.DefaultTolerance)
	require.NoError(t, err)

	assert.True(t, tot.Total.Equal(d("1475.00")), "total = %s", tot.Total)
	assert.True(t, tot.Gravado.Equal(d("1250.00")), "gravado = %s", tot.Gravado)
	assert.True(t, tot.IGV.Equal(d("225.00")), "igv = %s", tot.IGV)
	assert.True(t, tot.Gravado.Add(tot.IGV).Equal(tot.Total))
}

// TestAggregateLines_AbsorbeEnIGV: cuando el redondeo por línea difiere del
// total exacto en un céntimo, la diferencia se absorbe en el IGV, nunca en
// la base.
func TestAggregateLines_AbsorbeEnIGV(t *testing.T) {
	// Precios que fuerzan fracciones de céntimo en la base
	lines := []fiscal.Line{
		{UnitPrice: d("10.01"), Quantity: d("3"), RatePct: fiscal.DefaultRate},
		{UnitPrice: d("0.07"), Quantity: d("11"), RatePct: fiscal.DefaultRate},
		{UnitPrice: d("33.33"), Quantity: d("7"), RatePct: fiscal.DefaultRate},
	}

	tot, err := fiscal.AggregateLines(lines, fiscal.DefaultTolerance)
	require.NoError(t, err)
	assert.True(t, tot.Gravado.Add(tot.IGV).Equal(tot.Total),
		"gravado %s + igv %s != total %s", tot.Gravado, tot.IGV, tot.Total)

	// La base es la suma redondeada de bases por línea, sin ajuste.
	var baseEsperada decimal.Decimal
	for _, ln := range lines {
		bd := fiscal.Decompose(ln.UnitPrice, ln.RatePct)
		baseEsperada = baseEsperada.Add(bd.Base4.Mul(ln.Quantity))
	}
	assert.True(t, tot.Gravado.Equal(baseEsperada.Round(2)))
}

// TestAggregateLines_DefectoFallaFuerte: una discrepancia mayor a la
// tolerancia no se corrige en silencio.
//
// 50 x 0.07 produce gravado 2.9650 e IGV 0.5350: ambas mitades redondean
// hacia arriba y la suma de componentes excede el total exacto en un céntimo.
func TestAggregateLines_DefectoFallaFuerte(t *testing.T) {
	lines := []fiscal.Line{
		{UnitPrice: d("0.07"), Quantity: d("50"), RatePct: fiscal.DefaultRate},
	}

	_, err := fiscal.AggregateLines(lines, d("0.001"))
	require.Error(t, err)

	var defect *domain.RoundingDefectError
	require.ErrorAs(t, err, &defect)
	assert.True(t, defect.Tolerance.Equal(d("0.001")))
	assert.True(t, defect.Difference.Abs().Equal(d("0.01")), "diff = %s", defect.Difference)

	// Con la tolerancia por defecto el céntimo se absorbe en el IGV.
	tot, err := fiscal.AggregateLines(lines, fiscal.DefaultTolerance)
	require.NoError(t, err)
	assert.True(t, tot.Total.Equal(d("3.50")))
	assert.True(t, tot.Gravado.Equal(d("2.97")), "gravado = %s", tot.Gravado)
	assert.True(t, tot.IGV.Equal(d("0.53")), "igv = %s", tot.IGV)
	assert.True(t, tot.Gravado.Add(tot.IGV).Equal(tot.Total))
}

// TestRateFor_Jerarquia: exoneración regional > afectación producto > tasa tenant.
func TestRateFor_Jerarquia(t *testing.T) {
	cfg := fiscal.Config{TasaImpuesto: fiscal.DefaultRate}

	assert.True(t, fiscal.RateFor(cfg, "GRAVADO").Equal(fiscal.DefaultRate))
	assert.True(t, fiscal.RateFor(cfg, "EXONERADO").IsZero())
	assert.True(t, fiscal.RateFor(cfg, "INAFECTO").IsZero())

	cfg.ExoneradoRegional = true
	assert.True(t, fiscal.RateFor(cfg, "GRAVADO").IsZero())
}

// TestWeightedAverageCost: promedio ponderado clásico y caso stock cero.
func TestWeightedAverageCost(t *testing.T) {
	// 10 unidades a 5.00 + 10 unidades a 7.00 = costo 6.00
	got := fiscal.WeightedAverageCost(d("10"), d("5.00"), d("10"), d("7.00"))
	assert.True(t, got.Equal(d("6.00")), "costo = %s", got)

	// Sin stock previo: costo = costo de entrada
	got = fiscal.WeightedAverageCost(decimal.Zero, decimal.Zero, d("4"), d("2.50"))
	assert.True(t, got.Equal(d("2.50")))
}
