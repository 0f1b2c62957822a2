package dispatch

import (
	"context"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// QueryUseCase lecturas de guías de remisión.
type QueryUseCase struct {
	guides repository.DispatchRepository
}

// NewQueryUseCase construye el caso de uso de lectura.
func NewQueryUseCase(guides repository.DispatchRepository) *QueryUseCase {
	return &QueryUseCase{guides: guides}
}

// GetByID obtiene una guía con sus líneas.
func (uc *QueryUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.DispatchGuide, error) {
	return uc.guides.GetByID(ctx, tenantID, id)
}

// List lista guías con paginación.
func (uc *QueryUseCase) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.DispatchGuide, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.guides.ListByTenant(ctx, tenantID, limit, offset)
}
