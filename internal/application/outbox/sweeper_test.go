package outbox_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/application/apptest"
	"github.com/jhoicas/Puntoventa-api/internal/application/outbox"
	"github.com/jhoicas/Puntoventa-api/internal/application/sales"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/fiscal"
)

const tenant = "t1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newSweeper(store *apptest.Store, fact *apptest.FakeFacturador, cfg outbox.Config) *outbox.Sweeper {
	repos := store.Repos()
	return outbox.NewSweeper(
		repos.Sales, repos.CreditNotes, repos.Dispatch, repos.Customers,
		fact, cfg, zerolog.Nop(),
	)
}

func seedSale(store *apptest.Store, id, estado string, age time.Duration) {
	store.Sales[id] = &entity.Sale{
		ID: id, TenantID: tenant, SeriesCode: "B001", Number: int64(len(store.Sales) + 1),
		DocKind: entity.DocKindBoleta, Total: d("118.00"), Gravado: d("100.00"), IGV: d("18.00"),
		Condicion: entity.CondicionContado, EstadoSUNAT: estado,
		FechaEmision: time.Now().Add(-age), CreatedAt: time.Now().Add(-age),
		Lines: []entity.SaleLine{{
			ProductName: "Item", Quantity: d("1"),
			PrecioUnitario: d("118.00"), ValorUnitario: d("100.0000"),
			IGVTotal: d("18.00"), TasaIGV: d("18"),
		}},
	}
}

// El barrido solo toma documentos PENDIENTE más antiguos que la ventana de
// gracia; los recién emitidos le pertenecen al envío síncrono.
func TestRun_SoloPendientesFueraDeGracia(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}

	seedSale(store, "vieja", entity.SUNATPendiente, 10*time.Minute)
	seedSale(store, "reciente", entity.SUNATPendiente, 1*time.Minute)
	seedSale(store, "aceptada", entity.SUNATAceptado, 20*time.Minute)
	seedSale(store, "rechazada", entity.SUNATRechazado, 20*time.Minute)

	sw := newSweeper(store, fact, outbox.Config{Grace: 5 * time.Minute})
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Ventas.Processed)
	assert.Equal(t, 1, stats.Ventas.Accepted)
	assert.Equal(t, entity.SUNATAceptado, store.Sales["vieja"].EstadoSUNAT)
	assert.Equal(t, entity.SUNATPendiente, store.Sales["reciente"].EstadoSUNAT)
	assert.Equal(t, 1, fact.CallCount())
}

func TestRun_LoteAcotadoYMasAntiguasPrimero(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}

	seedSale(store, "v1", entity.SUNATPendiente, 30*time.Minute)
	seedSale(store, "v2", entity.SUNATPendiente, 20*time.Minute)
	seedSale(store, "v3", entity.SUNATPendiente, 10*time.Minute)

	sw := newSweeper(store, fact, outbox.Config{Grace: 5 * time.Minute, BatchSize: 2})
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Ventas.Processed)
	assert.Equal(t, entity.SUNATAceptado, store.Sales["v1"].EstadoSUNAT)
	assert.Equal(t, entity.SUNATAceptado, store.Sales["v2"].EstadoSUNAT)
	assert.Equal(t, entity.SUNATPendiente, store.Sales["v3"].EstadoSUNAT, "fuera del lote, queda para la próxima pasada")
}

// Un documento que falla no detiene la pasada: los demás se procesan y la
// falla queda contada.
func TestRun_UnaFallaNoDetieneLaPasada(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}
	fact.Respond = func(doc *application.DocumentoFiscal) (*application.Respuesta, error) {
		if doc.Numero == 1 {
			return nil, context.DeadlineExceeded
		}
		return apptest.Acepta(doc)
	}

	seedSale(store, "v1", entity.SUNATPendiente, 30*time.Minute)
	seedSale(store, "v2", entity.SUNATPendiente, 20*time.Minute)

	sw := newSweeper(store, fact, outbox.Config{Grace: 5 * time.Minute})
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Ventas.Processed)
	assert.Equal(t, 1, stats.Ventas.Failed)
	assert.Equal(t, 1, stats.Ventas.Accepted)
	assert.Equal(t, entity.SUNATPendiente, store.Sales["v1"].EstadoSUNAT)
	assert.Equal(t, entity.SUNATAceptado, store.Sales["v2"].EstadoSUNAT)
}

func TestRun_RechazoQuedaRegistrado(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}
	fact.Respond = func(doc *application.DocumentoFiscal) (*application.Respuesta, error) {
		return &application.Respuesta{Exito: false, Estado: entity.SUNATRechazado, CodigoError: "3033"}, nil
	}
	seedSale(store, "v1", entity.SUNATPendiente, 30*time.Minute)

	sw := newSweeper(store, fact, outbox.Config{Grace: 5 * time.Minute})
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Ventas.Rejected)
	assert.Equal(t, entity.SUNATRechazado, store.Sales["v1"].EstadoSUNAT)
}

// Las tres familias participan del barrido.
func TestRun_TodasLasFamilias(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}

	seedSale(store, "v1", entity.SUNATAceptado, 30*time.Minute)
	store.CreditNotes["n1"] = &entity.CreditNote{
		ID: "n1", TenantID: tenant, SaleID: "v1", SeriesCode: "FC01", Number: 1,
		Kind: entity.NCDevolucionTotal, Motivo: "x", Total: d("118.00"),
		EstadoSUNAT: entity.SUNATPendiente, CreatedAt: time.Now().Add(-20 * time.Minute),
	}
	store.Guides["g1"] = &entity.DispatchGuide{
		ID: "g1", TenantID: tenant, SeriesCode: "T001", Number: 1,
		MotivoTraslado: "VENTA", Modalidad: entity.TransportePrivado,
		EstadoSUNAT: entity.SUNATPendiente, CreatedAt: time.Now().Add(-20 * time.Minute),
	}

	sw := newSweeper(store, fact, outbox.Config{Grace: 5 * time.Minute})
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Ventas.Processed)
	assert.Equal(t, 1, stats.Notas.Accepted)
	assert.Equal(t, 1, stats.Guias.Accepted)
	assert.Equal(t, entity.SUNATAceptado, store.CreditNotes["n1"].EstadoSUNAT)
	assert.Equal(t, entity.SUNATAceptado, store.Guides["g1"].EstadoSUNAT)
}

// Ciclo completo: la venta se crea con el facturador caído y queda
// PENDIENTE; cuando la pasarela vuelve, el barrido la lleva a ACEPTADO.
func TestRun_ReconciliaVentaQueQuedoPendiente(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}
	fact.Respond = func(*application.DocumentoFiscal) (*application.Respuesta, error) {
		return nil, context.DeadlineExceeded
	}

	store.Products["p1"] = &entity.Product{
		ID: "p1", TenantID: tenant, SKU: "A-1", Name: "Gaseosa 500ml",
		Price: d("118.00"), Cost: d("60.00"), Stock: d("10"), Version: 1,
		AfectacionIGV: entity.AfectacionGravado,
	}
	store.Series["sb"] = &entity.DocumentSeries{
		ID: "sb", TenantID: tenant, Kind: entity.DocKindBoleta, Code: "B001", IsActive: true,
	}
	store.CashSessions["cs1"] = &entity.CashSession{
		ID: "cs1", TenantID: tenant, UserID: "u1",
		MontoInicial: d("0"), Estado: entity.SessionAbierta, OpenedAt: time.Now(),
	}

	repos := store.Repos()
	createSale := sales.NewCreateSaleUseCase(
		store.Runner(), fact, repos.Sales, repos.Customers,
		fiscal.Config{TasaImpuesto: fiscal.DefaultRate}, fiscal.DefaultTolerance,
		time.Second, zerolog.Nop(),
	)
	sale, err := createSale.Create(context.Background(), sales.CreateSaleInputDTO{
		TenantID: tenant, UserID: "u1",
		Condicion: entity.CondicionContado, MetodoPago: "EFECTIVO",
		Lines: []sales.SaleLineDTO{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)
	require.Equal(t, entity.SUNATPendiente, store.Sales[sale.ID].EstadoSUNAT)

	// La pasarela se recupera; el documento ya superó la gracia.
	fact.Respond = nil
	store.Sales[sale.ID].CreatedAt = time.Now().Add(-10 * time.Minute)

	sw := newSweeper(store, fact, outbox.Config{Grace: 5 * time.Minute})
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Ventas.Accepted)
	assert.Equal(t, entity.SUNATAceptado, store.Sales[sale.ID].EstadoSUNAT)
	assert.NotEmpty(t, store.Sales[sale.ID].HashCPE)
}

// Dos pasadas simultáneas no se solapan: la segunda retorna de inmediato
// con ErrSweepInProgress.
func TestRun_NoReentrante(t *testing.T) {
	store := apptest.NewStore()
	fact := &apptest.FakeFacturador{}

	entered := make(chan struct{})
	release := make(chan struct{})
	fact.Respond = func(doc *application.DocumentoFiscal) (*application.Respuesta, error) {
		close(entered)
		<-release
		return apptest.Acepta(doc)
	}
	seedSale(store, "v1", entity.SUNATPendiente, 30*time.Minute)

	sw := newSweeper(store, fact, outbox.Config{Grace: 5 * time.Minute})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := sw.Run(context.Background())
		assert.NoError(t, err)
	}()

	<-entered
	_, err := sw.Run(context.Background())
	require.ErrorIs(t, err, outbox.ErrSweepInProgress)

	close(release)
	wg.Wait()
}
