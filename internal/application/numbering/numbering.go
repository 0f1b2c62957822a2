// Package numbering asigna serie y correlativo a los comprobantes. La
// numeración es legal: única, monotónica y sin huecos dentro de cada serie.
package numbering

import (
	"context"
	"errors"

	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// Assignment es el número asignado a un comprobante.
type Assignment struct {
	SeriesID   string
	SeriesCode string
	Number     int64
}

// Next asigna el siguiente correlativo de la serie activa del tipo dado.
// Debe llamarse dentro de la transacción que persiste el comprobante y
// solo después de que toda validación capaz de abortar haya pasado: si la
// transacción se revierte, el contador vuelve con ella y no queda hueco.
func Next(ctx context.Context, seriesRepo repository.SeriesRepository, tenantID, kind string) (*Assignment, error) {
	series, err := seriesRepo.GetActiveByKind(ctx, tenantID, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSeriesNotConfigured
		}
		return nil, err
	}

	n, err := seriesRepo.NextCorrelativo(ctx, tenantID, series.ID)
	if err != nil {
		return nil, err
	}
	return &Assignment{SeriesID: series.ID, SeriesCode: series.Code, Number: n}, nil
}

// KindForCustomer resuelve el tipo de comprobante de venta: RUC presente
// habilita FACTURA; sin cliente o sin RUC corresponde BOLETA.
func KindForCustomer(customer *entity.Customer, requested string) (string, error) {
	switch requested {
	case entity.DocKindFactura:
		if customer == nil || !customer.HasRUC() {
			return "", domain.Validationf("FACTURA requiere cliente con RUC")
		}
		return entity.DocKindFactura, nil
	case entity.DocKindBoleta:
		return entity.DocKindBoleta, nil
	case "":
		if customer != nil && customer.HasRUC() {
			return entity.DocKindFactura, nil
		}
		return entity.DocKindBoleta, nil
	}
	return "", domain.Validationf("tipo de comprobante inválido: %s", requested)
}
