package numbering_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Puntoventa-api/internal/application/apptest"
	"github.com/jhoicas/Puntoventa-api/internal/application/numbering"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

const tenant = "t1"

func seedSeries(s *apptest.Store, id, kind, code string, active bool) {
	s.Series[id] = &entity.DocumentSeries{
		ID: id, TenantID: tenant, Kind: kind, Code: code, IsActive: active,
	}
}

func TestNext_CorrelativosConsecutivosSinHuecos(t *testing.T) {
	store := apptest.NewStore()
	seedSeries(store, "s1", entity.DocKindBoleta, "B001", true)
	repos := store.Repos()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		a, err := numbering.Next(ctx, repos.Series, tenant, entity.DocKindBoleta)
		require.NoError(t, err)
		assert.Equal(t, want, a.Number)
		assert.Equal(t, "B001", a.SeriesCode)
	}
	assert.Equal(t, int64(5), store.Series["s1"].Correlativo)
}

func TestNext_SinSerieActiva(t *testing.T) {
	store := apptest.NewStore()
	seedSeries(store, "s1", entity.DocKindFactura, "F001", false)

	_, err := numbering.Next(context.Background(), store.Repos().Series, tenant, entity.DocKindFactura)
	require.ErrorIs(t, err, domain.ErrSeriesNotConfigured)
}

func TestNext_SeriesIndependientesPorTipo(t *testing.T) {
	store := apptest.NewStore()
	seedSeries(store, "s1", entity.DocKindBoleta, "B001", true)
	seedSeries(store, "s2", entity.DocKindFactura, "F001", true)
	repos := store.Repos()
	ctx := context.Background()

	a1, err := numbering.Next(ctx, repos.Series, tenant, entity.DocKindBoleta)
	require.NoError(t, err)
	a2, err := numbering.Next(ctx, repos.Series, tenant, entity.DocKindFactura)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a1.Number)
	assert.Equal(t, int64(1), a2.Number)
}

func TestKindForCustomer(t *testing.T) {
	conRUC := &entity.Customer{ID: "c1", TenantID: tenant, RUC: "20123456789"}
	sinRUC := &entity.Customer{ID: "c2", TenantID: tenant, Documento: "44556677"}

	kind, err := numbering.KindForCustomer(conRUC, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DocKindFactura, kind)

	kind, err = numbering.KindForCustomer(sinRUC, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DocKindBoleta, kind)

	kind, err = numbering.KindForCustomer(nil, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DocKindBoleta, kind)

	_, err = numbering.KindForCustomer(sinRUC, entity.DocKindFactura)
	require.ErrorIs(t, err, domain.ErrValidation)

	kind, err = numbering.KindForCustomer(conRUC, entity.DocKindBoleta)
	require.NoError(t, err)
	assert.Equal(t, entity.DocKindBoleta, kind)
}
