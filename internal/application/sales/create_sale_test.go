package sales_test

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
	"github.com/jhoicas/Puntoventa-api/internal/application/sales"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/fiscal"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

const tenant = "t1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *apptest.Store
	fact  *apptest.FakeFacturador
	uc    *sales.CreateSaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}
	repos := store.Repos()
	uc := sales.NewCreateSaleUseCase(
		store.Runner(), fact, repos.Sales, repos.Customers,
		fiscal.Config{TasaImpuesto: fiscal.DefaultRate},
		fiscal.DefaultTolerance,
		2*time.Second,
		zerolog.Nop(),
	)

	store.Products["p1"] = &entity.Product{
		ID: "p1", TenantID: tenant, SKU: "A-1", Name: "Gaseosa 500ml",
		Price: d("118.00"), Cost: d("60.00"), Stock: d("50"), Version: 1,
		AfectacionIGV: entity.AfectacionGravado,
	}
	store.Series["sb"] = &entity.DocumentSeries{
		ID: "sb", TenantID: tenant, Kind: entity.DocKindBoleta, Code: "B001", IsActive: true,
	}
	store.Series["sf"] = &entity.DocumentSeries{
		ID: "sf", TenantID: tenant, Kind: entity.DocKindFactura, Code: "F001", IsActive: true,
	}
	store.CashSessions["cs1"] = &entity.CashSession{
		ID: "cs1", TenantID: tenant, UserID: "u1",
		MontoInicial: d("100.00"), Estado: entity.SessionAbierta, OpenedAt: time.Now(),
	}
	return &fixture{store: store, fact: fact, uc: uc}
}

func TestCreate_ContadoBoleta(t *testing.T) {
	f := newFixture(t)

	sale, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1",
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("2")}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DocKindBoleta, sale.DocKind)
	assert.Equal(t, "B001", sale.SeriesCode)
	assert.Equal(t, int64(1), sale.Number)
	assert.True(t, sale.Total.Equal(d("236.00")))
	assert.True(t, sale.Gravado.Equal(d("200.00")), "gravado = %s", sale.Gravado)
	assert.True(t, sale.IGV.Equal(d("36.00")))

	// Snapshot de línea: valor unitario a 4 decimales y costo congelado.
	require.Len(t, sale.Lines, 1)
	ln := sale.Lines[0]
	assert.True(t, ln.ValorUnitario.Equal(d("100.0000")))
	assert.True(t, ln.CostoUnitario.Equal(d("60.00")))

	// Inventario descargado con referencia a la venta.
	assert.True(t, f.store.Products["p1"].Stock.Equal(d("48")))
	require.Len(t, f.store.Movements, 1)
	assert.Equal(t, entity.RefVenta, f.store.Movements[0].Ref.Kind)
	assert.Equal(t, sale.ID, f.store.Movements[0].Ref.ID)

	// Ingreso en caja por el total.
	require.Len(t, f.store.CashMovements, 1)
	assert.Equal(t, entity.CashIngreso, f.store.CashMovements[0].Type)
	assert.True(t, f.store.CashMovements[0].Amount.Equal(d("236.00")))

	// El facturador aceptó después del commit.
	assert.Equal(t, entity.SUNATAceptado, sale.EstadoSUNAT)
	assert.Equal(t, entity.SUNATAceptado, f.store.Sales[sale.ID].EstadoSUNAT)
	assert.Equal(t, 1, f.fact.CallCount())
}

func TestCreate_FacturadorCaidoDejaPendiente(t *testing.T) {
	f := newFixture(t)
	f.fact.Respond = func(*application.DocumentoFiscal) (*application.Respuesta, error) {
		return nil, context.DeadlineExceeded
	}

	sale, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1",
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err, "el facturador caído nunca falla la venta")

	assert.Equal(t, entity.SUNATPendiente, sale.EstadoSUNAT)
	assert.Equal(t, entity.SUNATPendiente, f.store.Sales[sale.ID].EstadoSUNAT)
	assert.True(t, f.store.Products["p1"].Stock.Equal(d("49")), "la venta no se revierte")
}

// saleRepoConCtx falla las escrituras cuando el contexto ya fue cancelado,
// como haría un repositorio real sobre la red.
type saleRepoConCtx struct {
	repository.SaleRepository
}

func (r *saleRepoConCtx) UpdateEstadoSUNAT(ctx context.Context, tenantID, id string, res *entity.ResultadoFiscal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.SaleRepository.UpdateEstadoSUNAT(ctx, tenantID, id, res)
}

// El cliente puede cortar la petición mientras el facturador responde; el
// resultado aceptado debe persistirse igual, sin esperar al barrido.
func TestCreate_PeticionCanceladaNoPierdeElResultado(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}
	repos := store.Repos()
	uc := sales.NewCreateSaleUseCase(
		store.Runner(), fact, &saleRepoConCtx{repos.Sales}, repos.Customers,
		fiscal.Config{TasaImpuesto: fiscal.DefaultRate},
		fiscal.DefaultTolerance,
		2*time.Second,
		zerolog.Nop(),
	)
	store.Products["p1"] = &entity.Product{
		ID: "p1", TenantID: tenant, SKU: "A-1", Name: "Gaseosa 500ml",
		Price: d("118.00"), Cost: d("60.00"), Stock: d("50"), Version: 1,
		AfectacionIGV: entity.AfectacionGravado,
	}
	store.Series["sb"] = &entity.DocumentSeries{
		ID: "sb", TenantID: tenant, Kind: entity.DocKindBoleta, Code: "B001", IsActive: true,
	}
	store.CashSessions["cs1"] = &entity.CashSession{
		ID: "cs1", TenantID: tenant, UserID: "u1",
		MontoInicial: d("100.00"), Estado: entity.SessionAbierta, OpenedAt: time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	fact.Respond = func(doc *application.DocumentoFiscal) (*application.Respuesta, error) {
		cancel()
		return apptest.Acepta(doc)
	}

	sale, err := uc.Create(ctx, sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1",
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SUNATAceptado, sale.EstadoSUNAT)
	assert.Equal(t, entity.SUNATAceptado, store.Sales[sale.ID].EstadoSUNAT)
}

func TestCreate_RechazoSUNAT(t *testing.T) {
	f := newFixture(t)
	f.fact.Respond = func(*application.DocumentoFiscal) (*application.Respuesta, error) {
		return &application.Respuesta{
			Exito: false, Estado: entity.SUNATRechazado,
			CodigoError: "2017", DetalleError: "numero de documento del receptor invalido",
		}, nil
	}

	sale, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1",
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SUNATRechazado, f.store.Sales[sale.ID].EstadoSUNAT)
}

func TestCreate_SinSesionDeCaja(t *testing.T) {
	f := newFixture(t)
	f.store.CashSessions["cs1"].Estado = entity.SessionCerrada

	_, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1",
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrCashSessionClosed)
	assert.Empty(t, f.store.Sales)
	assert.Equal(t, 0, f.fact.CallCount())
}

func TestCreate_FacturaResueltaPorRUC(t *testing.T) {
	f := newFixture(t)
	f.store.Customers["c1"] = &entity.Customer{
		ID: "c1", TenantID: tenant, RazonSocial: "ACME SAC", RUC: "20123456789",
	}

	sale, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1", CustomerID: "c1",
		Condicion: entity.CondicionContado, MetodoPago: "TRANSFERENCIA",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocKindFactura, sale.DocKind)
	assert.Equal(t, "F001", sale.SeriesCode)

	require.Equal(t, 1, f.fact.CallCount())
	doc := f.fact.Calls[0]
	assert.Equal(t, "ACME SAC", doc.ClienteNombre)
	assert.Equal(t, "20123456789", doc.ClienteDoc)
}

func TestCreate_FacturaSinRUCInvalida(t *testing.T) {
	f := newFixture(t)
	f.store.Customers["c2"] = &entity.Customer{ID: "c2", TenantID: tenant, Name: "Juan", Documento: "41234567"}

	_, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1", CustomerID: "c2", DocKind: entity.DocKindFactura,
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.Sales)
}

func TestCreate_CreditoAbreCuentaPorCobrar(t *testing.T) {
	f := newFixture(t)
	f.store.Customers["c1"] = &entity.Customer{
		ID: "c1", TenantID: tenant, RazonSocial: "ACME SAC", RUC: "20123456789", DiasCredito: 15,
	}

	sale, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1", CustomerID: "c1",
		Condicion: entity.CondicionCredito, MetodoPago: "EFECTIVO",
		AbonoInicial: d("100.00"),
		Lines:        []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("2")}},
	})
	require.NoError(t, err)

	require.Len(t, f.store.Receivables, 1)
	var rec *entity.Receivable
	for _, r := range f.store.Receivables {
		rec = r
	}
	assert.Equal(t, sale.ID, rec.SaleID)
	assert.True(t, rec.Total.Equal(d("236.00")))
	assert.True(t, rec.Paid.Equal(d("100.00")))
	assert.True(t, rec.Balance.Equal(d("136.00")))
	assert.Equal(t, entity.ReceivableVigente, rec.Estado)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 15), rec.Vencimiento, time.Minute)

	// El abono inicial genera pago y entra a caja; el resto no.
	require.Len(t, f.store.Payments, 1)
	require.Len(t, f.store.CashMovements, 1)
	assert.True(t, f.store.CashMovements[0].Amount.Equal(d("100.00")))
	assert.Equal(t, entity.CashRefPago, f.store.CashMovements[0].Ref.Kind)
}

func TestCreate_AbonoMayorAlTotal(t *testing.T) {
	f := newFixture(t)
	f.store.Customers["c1"] = &entity.Customer{ID: "c1", TenantID: tenant, RUC: "20123456789"}

	_, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1", CustomerID: "c1",
		Condicion: entity.CondicionCredito, MetodoPago: "EFECTIVO",
		AbonoInicial: d("500.00"),
		Lines:        []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.Sales)
	assert.Empty(t, f.store.Receivables)
	assert.True(t, f.store.Products["p1"].Stock.Equal(d("50")), "rollback completo")
}

// El rechazo por stock aborta todo: ni venta, ni correlativo consumido,
// ni movimiento de caja.
func TestCreate_StockInsuficienteSinEfectosParciales(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1",
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("51")}},
	})
	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)

	assert.Empty(t, f.store.Sales)
	assert.Empty(t, f.store.CashMovements)
	assert.Equal(t, int64(0), f.store.Series["sb"].Correlativo, "el correlativo vuelve con el rollback")
	assert.Equal(t, 0, f.fact.CallCount())
}
