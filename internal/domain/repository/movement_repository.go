package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para el libro de
// movimientos de inventario. El libro es append-only: no hay Update ni Delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryMovement, error)
	ListByProduct(ctx context.Context, tenantID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByRef(ctx context.Context, tenantID string, ref entity.DocumentRef) ([]*entity.InventoryMovement, error)
}
