package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/application/apptest"
	"github.com/jhoicas/Puntoventa-api/internal/application/payments"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

const tenant = "t1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed(store *apptest.Store, balance string) {
	total := d("300.00")
	paid := total.Sub(d(balance))
	store.Receivables["r1"] = &entity.Receivable{
		ID: "r1", TenantID: tenant, SaleID: "v1", CustomerID: "c1",
		Total: total, Paid: paid, Balance: d(balance),
		Estado: entity.ReceivableVigente, Vencimiento: time.Now().AddDate(0, 0, 30),
	}
	store.CashSessions["cs1"] = &entity.CashSession{
		ID: "cs1", TenantID: tenant, UserID: "u1",
		MontoInicial: d("50.00"), Estado: entity.SessionAbierta, OpenedAt: time.Now(),
	}
}

func TestRegisterPayment_AbonoParcialYTotal(t *testing.T) {
	store := apptest.NewStore()
	seed(store, "300.00")
	uc := payments.NewUseCase(store.Runner(), store.Repos().Receivables)
	ctx := context.Background()

	_, err := uc.RegisterPayment(ctx, payments.RegisterPaymentInputDTO{
		TenantID: tenant, UserID: "u1", ReceivableID: "r1",
		Amount: d("100.00"), MetodoPago: payments.MetodoEfectivo,
	})
	require.NoError(t, err)

	rec := store.Receivables["r1"]
	assert.True(t, rec.Balance.Equal(d("200.00")))
	assert.Equal(t, entity.ReceivableVigente, rec.Estado)
	require.Len(t, store.CashMovements, 1, "el efectivo entra a caja")
	assert.True(t, store.CashMovements[0].Amount.Equal(d("100.00")))

	_, err = uc.RegisterPayment(ctx, payments.RegisterPaymentInputDTO{
		TenantID: tenant, UserID: "u1", ReceivableID: "r1",
		Amount: d("200.00"), MetodoPago: "TRANSFERENCIA",
	})
	require.NoError(t, err)

	rec = store.Receivables["r1"]
	assert.True(t, rec.Balance.IsZero())
	assert.Equal(t, entity.ReceivablePagada, rec.Estado)
	assert.Len(t, store.CashMovements, 1, "una transferencia no toca la caja")
}

func TestRegisterPayment_RechazosSinEfecto(t *testing.T) {
	store := apptest.NewStore()
	seed(store, "80.00")
	uc := payments.NewUseCase(store.Runner(), store.Repos().Receivables)
	ctx := context.Background()

	// Más que el saldo.
	_, err := uc.RegisterPayment(ctx, payments.RegisterPaymentInputDTO{
		TenantID: tenant, UserID: "u1", ReceivableID: "r1",
		Amount: d("100.00"), MetodoPago: "TRANSFERENCIA",
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, store.Receivables["r1"].Balance.Equal(d("80.00")))
	assert.Empty(t, store.Payments)

	// Cuenta terminal.
	store.Receivables["r1"].Estado = entity.ReceivableCancelada
	_, err = uc.RegisterPayment(ctx, payments.RegisterPaymentInputDTO{
		TenantID: tenant, UserID: "u1", ReceivableID: "r1",
		Amount: d("10.00"), MetodoPago: "TRANSFERENCIA",
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAgingJob_Reclasifica(t *testing.T) {
	store := apptest.NewStore()
	now := time.Now()

	mk := func(id string, venc time.Time, estado string) {
		store.Receivables[id] = &entity.Receivable{
			ID: id, TenantID: tenant, Total: d("100"), Balance: d("100"),
			Estado: estado, Vencimiento: venc,
		}
	}
	mk("vencida", now.AddDate(0, 0, -3), entity.ReceivableVigente)
	mk("porVencer", now.AddDate(0, 0, 5), entity.ReceivableVigente)
	mk("vigente", now.AddDate(0, 0, 20), entity.ReceivablePorVencer)
	mk("pagada", now.AddDate(0, 0, -10), entity.ReceivablePagada)

	job := payments.NewAgingJob(store.Repos().Receivables, 7, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, entity.ReceivableVencida, store.Receivables["vencida"].Estado)
	assert.Equal(t, entity.ReceivablePorVencer, store.Receivables["porVencer"].Estado)
	assert.Equal(t, entity.ReceivableVigente, store.Receivables["vigente"].Estado)
	assert.Equal(t, entity.ReceivablePagada, store.Receivables["pagada"].Estado, "los estados terminales no se tocan")
}
