package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// SeriesUseCase administración de series de numeración. La emisión de
// correlativos no pasa por aquí: eso es NextCorrelativo dentro de la
// transacción del documento.
type SeriesUseCase struct {
	repo repository.SeriesRepository
}

// NewSeriesUseCase construye el caso de uso.
func NewSeriesUseCase(repo repository.SeriesRepository) *SeriesUseCase {
	return &SeriesUseCase{repo: repo}
}

// Create registra una serie nueva con correlativo en cero.
func (uc *SeriesUseCase) Create(ctx context.Context, tenantID string, in dto.CreateSeriesRequest) (*entity.DocumentSeries, error) {
	switch in.Kind {
	case entity.DocKindFactura, entity.DocKindBoleta, entity.DocKindNotaCredito, entity.DocKindGuiaRemision:
	default:
		return nil, domain.Validationf("tipo de comprobante inválido: %s", in.Kind)
	}
	if in.Code == "" {
		return nil, domain.Validationf("el código de la serie es obligatorio")
	}
	now := time.Now()
	series := &entity.DocumentSeries{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Kind:        in.Kind,
		Code:        in.Code,
		Correlativo: 0,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, series); err != nil {
		return nil, err
	}
	return series, nil
}

// List lista las series del tenant.
func (uc *SeriesUseCase) List(ctx context.Context, tenantID string) ([]*entity.DocumentSeries, error) {
	return uc.repo.ListByTenant(ctx, tenantID)
}

// Deactivate apaga una serie. Los documentos emitidos conservan su número.
func (uc *SeriesUseCase) Deactivate(ctx context.Context, tenantID, id string) error {
	series, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	series.IsActive = false
	return uc.repo.Update(ctx, series)
}
