package repository

import (
	"context"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// SeriesRepository define el puerto de persistencia para series de numeración.
type SeriesRepository interface {
	Create(ctx context.Context, series *entity.DocumentSeries) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.DocumentSeries, error)
	GetActiveByKind(ctx context.Context, tenantID, kind string) (*entity.DocumentSeries, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.DocumentSeries, error)
	Update(ctx context.Context, series *entity.DocumentSeries) error

	// NextCorrelativo incrementa y retorna el correlativo de la serie en una
	// sola sentencia atómica. Nunca debe llamarse fuera de la transacción que
	// persiste el documento: un correlativo consumido sin documento es un
	// hueco en la numeración legal.
	NextCorrelativo(ctx context.Context, tenantID, seriesID string) (int64, error)
}
