package creditnotes_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/application/apptest"
	"github.com/jhoicas/Puntoventa-api/internal/application/creditnotes"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

const tenant = "t1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *apptest.Store
	fact  *apptest.FakeFacturador
	uc    *creditnotes.CreateNoteUseCase
}

// newFixture deja una venta CONTADO aceptada de 236.00 (2 x 118.00) y una
// sesión de caja abierta con 150.00 de apertura.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}
	repos := store.Repos()
	uc := creditnotes.NewCreateNoteUseCase(
		store.Runner(), fact, repos.CreditNotes, repos.Customers,
		2*time.Second, zerolog.Nop(),
	)

	store.Products["p1"] = &entity.Product{
		ID: "p1", TenantID: tenant, SKU: "A-1", Name: "Gaseosa 500ml",
		Price: d("118.00"), Cost: d("60.00"), Stock: d("48"), Version: 2,
		AfectacionIGV: entity.AfectacionGravado,
	}
	store.Series["snc"] = &entity.DocumentSeries{
		ID: "snc", TenantID: tenant, Kind: entity.DocKindNotaCredito, Code: "FC01", IsActive: true,
	}
	store.CashSessions["cs1"] = &entity.CashSession{
		ID: "cs1", TenantID: tenant, UserID: "u1",
		MontoInicial: d("150.00"), Estado: entity.SessionAbierta, OpenedAt: time.Now(),
	}
	store.Sales["v1"] = &entity.Sale{
		ID: "v1", TenantID: tenant, UserID: "u1", CashSessionID: "cs1",
		SeriesID: "sb", SeriesCode: "B001", Number: 1,
		DocKind: entity.DocKindBoleta,
		Gravado: d("200.00"), IGV: d("36.00"), Total: d("236.00"),
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		EstadoSUNAT: entity.SUNATAceptado,
		Lines: []entity.SaleLine{{
			ID: "l1", TenantID: tenant, SaleID: "v1", ProductID: "p1",
			ProductName: "Gaseosa 500ml", Quantity: d("2"),
			PrecioUnitario: d("118.00"), ValorUnitario: d("100.0000"),
			IGVTotal: d("36.00"), TasaIGV: d("18"), CostoUnitario: d("60.00"),
		}},
		FechaEmision: time.Now(), CreatedAt: time.Now(),
	}
	return &fixture{store: store, fact: fact, uc: uc}
}

func TestCreate_VentaNoAceptada(t *testing.T) {
	f := newFixture(t)
	f.store.Sales["v1"].EstadoSUNAT = entity.SUNATPendiente

	_, err := f.uc.Create(context.Background(), creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDevolucionTotal, Motivo: "cliente desiste",
	})
	require.ErrorIs(t, err, domain.ErrSaleNotAccepted)
	assert.Empty(t, f.store.CreditNotes)
}

func TestCreate_DevolucionTotalConEfectivo(t *testing.T) {
	f := newFixture(t)
	// Saldo suficiente para devolver 236.00.
	f.store.CashSessions["cs1"].MontoInicial = d("300.00")

	note, err := f.uc.Create(context.Background(), creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDevolucionTotal, Motivo: "cliente desiste",
	})
	require.NoError(t, err)

	assert.Equal(t, "FC01", note.SeriesCode)
	assert.Equal(t, int64(1), note.Number)
	assert.True(t, note.Total.Equal(d("236.00")))
	assert.True(t, note.StockRetornado)
	assert.True(t, note.EfectivoDevuelto)
	assert.Equal(t, entity.SUNATAceptado, note.EstadoSUNAT)

	// Mercadería de vuelta con referencia a la nota.
	assert.True(t, f.store.Products["p1"].Stock.Equal(d("50")))
	require.Len(t, f.store.Movements, 1)
	assert.Equal(t, entity.MovementEntradaDevolucion, f.store.Movements[0].Type)
	assert.Equal(t, entity.RefNotaCredito, f.store.Movements[0].Ref.Kind)

	// Egreso de caja por el total devuelto.
	require.Len(t, f.store.CashMovements, 1)
	assert.Equal(t, entity.CashEgreso, f.store.CashMovements[0].Type)
	assert.True(t, f.store.CashMovements[0].Amount.Equal(d("236.00")))

	// La venta queda anulada.
	assert.True(t, f.store.Sales["v1"].Anulada)

	// El documento enviado referencia al comprobante original.
	require.Equal(t, 1, f.fact.CallCount())
	assert.Equal(t, "B001-1", f.fact.Calls[0].DocReferencia)
}

func TestCreate_SegundaNotaSobreVentaAnulada(t *testing.T) {
	f := newFixture(t)
	f.store.CashSessions["cs1"].MontoInicial = d("300.00")
	ctx := context.Background()

	_, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDevolucionTotal, Motivo: "cliente desiste",
	})
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDescuentoGlobal, Motivo: "intento tardío", Amount: d("10.00"),
	})
	require.ErrorIs(t, err, domain.ErrSaleAlreadyVoided)
}

// 50% devuelto y luego 60% solicitado: la segunda nota excede el saldo
// disponible de la venta y se rechaza completa.
func TestCreate_SumaDeNotasNoExcedeLaVenta(t *testing.T) {
	f := newFixture(t)
	f.store.CashSessions["cs1"].MontoInicial = d("500.00")
	ctx := context.Background()

	// 50%: una unidad de dos.
	_, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDevolucionParcial, Motivo: "unidad defectuosa",
		Lines: []creditnotes.NoteLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)

	// 60%: descuento global de 141.60 sobre saldo disponible 118.00.
	_, err = f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDescuentoGlobal, Motivo: "compensación", Amount: d("141.60"),
	})
	var exceeds *domain.AmountExceedsBalanceError
	require.ErrorAs(t, err, &exceeds)
	assert.True(t, exceeds.SaleTotal.Equal(d("236.00")))
	assert.True(t, exceeds.Credited.Equal(d("118.00")))
	assert.True(t, exceeds.Requested.Equal(d("141.60")))
	assert.Len(t, f.store.CreditNotes, 1, "la segunda nota no deja rastro")
}

func TestCreate_AnulacionConDevolucionesParcialesPrevias(t *testing.T) {
	f := newFixture(t)
	f.store.CashSessions["cs1"].MontoInicial = d("500.00")
	ctx := context.Background()

	_, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDevolucionParcial, Motivo: "unidad defectuosa",
		Lines: []creditnotes.NoteLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCAnulacion, Motivo: "anular todo",
	})
	require.ErrorIs(t, err, domain.ErrCannotVoidWithPartialReturns)
	assert.False(t, f.store.Sales["v1"].Anulada)
}

// Devolución en efectivo contra saldo teórico de caja 150: 200 se rechaza
// sin efecto alguno, 120 entra y deja el saldo en 30.
func TestCreate_LiquidezDeCaja(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Venta de 200.00 para descontar montos exactos.
	f.store.Sales["v1"].Total = d("200.00")
	f.store.Sales["v1"].Gravado = d("169.49")
	f.store.Sales["v1"].IGV = d("30.51")

	_, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDescuentoGlobal, Motivo: "ajuste comercial", Amount: d("200.00"),
	})
	var liq *domain.InsufficientLiquidityError
	require.ErrorAs(t, err, &liq)
	assert.True(t, liq.Available.Equal(d("150.00")))
	assert.True(t, liq.Requested.Equal(d("200.00")))
	assert.Empty(t, f.store.CreditNotes)
	assert.Empty(t, f.store.CashMovements)
	assert.Equal(t, int64(0), f.store.Series["snc"].Correlativo)

	note, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDescuentoGlobal, Motivo: "ajuste comercial", Amount: d("120.00"),
	})
	require.NoError(t, err)
	assert.True(t, note.EfectivoDevuelto)

	ingresos, egresos, err := f.store.Repos().Cash.SumMovements(ctx, tenant, "cs1")
	require.NoError(t, err)
	saldo := d("150.00").Add(ingresos).Sub(egresos)
	assert.True(t, saldo.Equal(d("30.00")), "saldo final = %s", saldo)
}

// Nota sobre venta a crédito: reduce el total de la cuenta por cobrar; si
// lo pagado superaría el nuevo total, se rechaza con CreditBalanceError.
func TestCreate_ReduccionDeCuentaPorCobrar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Sales["v1"].Condicion = entity.CondicionCredito
	f.store.Sales["v1"].CustomerID = "c1"
	f.store.Customers["c1"] = &entity.Customer{ID: "c1", TenantID: tenant, RUC: "20123456789", RazonSocial: "ACME SAC"}
	f.store.Receivables["r1"] = &entity.Receivable{
		ID: "r1", TenantID: tenant, SaleID: "v1", CustomerID: "c1",
		Total: d("236.00"), Paid: d("100.00"), Balance: d("136.00"),
		Estado: entity.ReceivableVigente, Vencimiento: time.Now().AddDate(0, 0, 30),
	}

	// 236 − 150 = 86 < 100 pagado: saldo a favor, rechazado.
	_, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDescuentoGlobal, Motivo: "descuento", Amount: d("150.00"),
	})
	var cb *domain.CreditBalanceError
	require.ErrorAs(t, err, &cb)
	assert.True(t, cb.Paid.Equal(d("100.00")))
	assert.True(t, cb.NewTotal.Equal(d("86.00")))
	assert.True(t, f.store.Receivables["r1"].Total.Equal(d("236.00")), "sin efecto parcial")

	// 236 − 100 = 136 ≥ 100 pagado: procede y ajusta el saldo.
	_, err = f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDescuentoGlobal, Motivo: "descuento", Amount: d("100.00"),
	})
	require.NoError(t, err)
	rec := f.store.Receivables["r1"]
	assert.True(t, rec.Total.Equal(d("136.00")))
	assert.True(t, rec.Balance.Equal(d("36.00")))
	assert.Equal(t, entity.ReceivableVigente, rec.Estado)
	assert.Empty(t, f.store.CashMovements, "una venta a crédito no devuelve efectivo de caja")
}

func TestCreate_AnulacionCancelaCuentaPorCobrar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Sales["v1"].Condicion = entity.CondicionCredito
	f.store.Sales["v1"].CustomerID = "c1"
	f.store.Customers["c1"] = &entity.Customer{ID: "c1", TenantID: tenant, RUC: "20123456789"}
	f.store.Receivables["r1"] = &entity.Receivable{
		ID: "r1", TenantID: tenant, SaleID: "v1", CustomerID: "c1",
		Total: d("236.00"), Paid: d("0"), Balance: d("236.00"),
		Estado: entity.ReceivableVigente, Vencimiento: time.Now().AddDate(0, 0, 30),
	}

	note, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCAnulacion, Motivo: "error de emisión",
	})
	require.NoError(t, err)

	rec := f.store.Receivables["r1"]
	assert.True(t, rec.Balance.IsZero())
	assert.Equal(t, entity.ReceivableCancelada, rec.Estado)
	assert.True(t, f.store.Sales["v1"].Anulada)
	assert.True(t, note.StockRetornado)
}

// Una anulación sobre una cuenta con abonos dejaría saldo a favor del
// cliente (nuevo total cero): se rechaza sin efecto alguno.
func TestCreate_AnulacionConAbonosPrevios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Sales["v1"].Condicion = entity.CondicionCredito
	f.store.Sales["v1"].CustomerID = "c1"
	f.store.Customers["c1"] = &entity.Customer{ID: "c1", TenantID: tenant, RUC: "20123456789"}
	f.store.Receivables["r1"] = &entity.Receivable{
		ID: "r1", TenantID: tenant, SaleID: "v1", CustomerID: "c1",
		Total: d("236.00"), Paid: d("100.00"), Balance: d("136.00"),
		Estado: entity.ReceivableVigente, Vencimiento: time.Now().AddDate(0, 0, 30),
	}

	_, err := f.uc.Create(ctx, creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCAnulacion, Motivo: "error de emisión",
	})
	var cb *domain.CreditBalanceError
	require.ErrorAs(t, err, &cb)
	assert.True(t, cb.Paid.Equal(d("100.00")))
	assert.True(t, cb.NewTotal.IsZero())

	rec := f.store.Receivables["r1"]
	assert.True(t, rec.Balance.Equal(d("136.00")), "la cuenta no se toca")
	assert.Equal(t, entity.ReceivableVigente, rec.Estado)
	assert.False(t, f.store.Sales["v1"].Anulada)
	assert.Empty(t, f.store.CreditNotes)
	assert.True(t, f.store.Products["p1"].Stock.Equal(d("48")), "sin retorno de stock")
}

// La corrección de texto no toca stock, deuda ni caja.
func TestCreate_CorreccionSinEfectosDeNegocio(t *testing.T) {
	f := newFixture(t)

	note, err := f.uc.Create(context.Background(), creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCCorreccionTexto, Motivo: "razón social mal escrita",
	})
	require.NoError(t, err)

	assert.False(t, note.StockRetornado)
	assert.False(t, note.EfectivoDevuelto)
	assert.Empty(t, f.store.Movements)
	assert.Empty(t, f.store.CashMovements)
	assert.True(t, f.store.Products["p1"].Stock.Equal(d("48")))
}

func TestCreate_FacturadorCaidoDejaNotaPendiente(t *testing.T) {
	f := newFixture(t)
	f.store.CashSessions["cs1"].MontoInicial = d("300.00")
	f.fact.Respond = func(*application.DocumentoFiscal) (*application.Respuesta, error) {
		return nil, context.DeadlineExceeded
	}

	note, err := f.uc.Create(context.Background(), creditnotes.CreateNoteInputDTO{
		TenantID: tenant, UserID: "u1", SaleID: "v1",
		Kind: entity.NCDevolucionTotal, Motivo: "cliente desiste",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SUNATPendiente, note.EstadoSUNAT)
	assert.True(t, f.store.Sales["v1"].Anulada, "los efectos de negocio quedan firmes")
}
