package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, tenantID, id string) error

	// UpdateStockVersioned aplica el nuevo stock solo si la versión leída
	// sigue vigente. Retorna domain.ErrConcurrencyConflict si otra
	// transacción ganó la carrera.
	UpdateStockVersioned(ctx context.Context, tenantID, id string, newStock decimal.Decimal, readVersion int64) error

	// UpdateCost actualiza el costo promedio ponderado tras una entrada.
	UpdateCost(ctx context.Context, tenantID, id string, cost decimal.Decimal) error
}
