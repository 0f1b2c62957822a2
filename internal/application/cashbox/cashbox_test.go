package cashbox_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/application/apptest"
	"github.com/jhoicas/Puntoventa-api/internal/application/cashbox"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

const tenant = "t1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUC(store *apptest.Store) *cashbox.UseCase {
	return cashbox.NewUseCase(store.Runner(), store.Repos().Cash)
}

func TestOpen_UnaSesionAbiertaPorUsuario(t *testing.T) {
	store := apptest.NewStore()
	uc := newUC(store)
	ctx := context.Background()

	session, err := uc.Open(ctx, tenant, "u1", d("100.00"))
	require.NoError(t, err)
	assert.Equal(t, entity.SessionAbierta, session.Estado)

	_, err = uc.Open(ctx, tenant, "u1", d("50.00"))
	require.ErrorIs(t, err, domain.ErrValidation)

	// Otro usuario sí puede abrir la suya.
	_, err = uc.Open(ctx, tenant, "u2", d("0"))
	require.NoError(t, err)
}

func TestManualMovement_EgresoValidaSaldoTeorico(t *testing.T) {
	store := apptest.NewStore()
	uc := newUC(store)
	ctx := context.Background()

	session, err := uc.Open(ctx, tenant, "u1", d("150.00"))
	require.NoError(t, err)

	// 200 > 150 disponible: rechazado sin efecto.
	_, err = uc.ManualMovement(ctx, tenant, "u1", entity.CashEgreso, "pago proveedor", d("200.00"))
	var liq *domain.InsufficientLiquidityError
	require.ErrorAs(t, err, &liq)
	assert.True(t, liq.Available.Equal(d("150.00")))
	assert.True(t, liq.Requested.Equal(d("200.00")))
	assert.Empty(t, store.CashMovements)

	// 120 sí entra; saldo final 30.
	_, err = uc.ManualMovement(ctx, tenant, "u1", entity.CashEgreso, "pago proveedor", d("120.00"))
	require.NoError(t, err)

	snap, err := uc.GetSnapshot(ctx, tenant, session.ID)
	require.NoError(t, err)
	assert.True(t, snap.Saldo.Equal(d("30.00")), "saldo = %s", snap.Saldo)
}

func TestClose_CalculaEsperadoYDiferencia(t *testing.T) {
	store := apptest.NewStore()
	uc := newUC(store)
	ctx := context.Background()

	session, err := uc.Open(ctx, tenant, "u1", d("100.00"))
	require.NoError(t, err)

	_, err = uc.ManualMovement(ctx, tenant, "u1", entity.CashIngreso, "venta mostrador", d("80.00"))
	require.NoError(t, err)
	_, err = uc.ManualMovement(ctx, tenant, "u1", entity.CashEgreso, "compra útiles", d("30.00"))
	require.NoError(t, err)

	closed, err := uc.Close(ctx, tenant, session.ID, d("145.00"))
	require.NoError(t, err)

	assert.Equal(t, entity.SessionCerrada, closed.Estado)
	require.NotNil(t, closed.MontoEsperado)
	assert.True(t, closed.MontoEsperado.Equal(d("150.00")))
	assert.True(t, closed.Diferencia.Equal(d("-5.00")), "diferencia = %s", closed.Diferencia)

	// Cerrada no admite más movimientos ni un segundo cierre.
	_, err = uc.ManualMovement(ctx, tenant, "u1", entity.CashIngreso, "tarde", d("1.00"))
	require.ErrorIs(t, err, domain.ErrCashSessionClosed)
	_, err = uc.Close(ctx, tenant, session.ID, d("145.00"))
	require.ErrorIs(t, err, domain.ErrCashSessionClosed)
}
