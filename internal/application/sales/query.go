package sales

import (
	"context"
	"time"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// QueryUseCase consulta ventas persistidas.
type QueryUseCase struct {
	sales repository.SaleRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(sales repository.SaleRepository) *QueryUseCase {
	return &QueryUseCase{sales: sales}
}

// GetByID retorna la venta con sus líneas.
func (uc *QueryUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return uc.sales.GetByID(ctx, tenantID, id)
}

// List retorna ventas del tenant en el rango dado, más recientes primero.
func (uc *QueryUseCase) List(ctx context.Context, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.sales.ListByTenant(ctx, tenantID, from, to, limit, offset)
}
