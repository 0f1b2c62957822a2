package repository

import (
	"context"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para clientes.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Customer, error)
	GetByDocumento(ctx context.Context, tenantID, numeroDocumento string) (*entity.Customer, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
}
