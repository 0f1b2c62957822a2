package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// KardexUseCase consulta el libro de movimientos de un producto.
type KardexUseCase struct {
	movements repository.MovementRepository
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(movements repository.MovementRepository) *KardexUseCase {
	return &KardexUseCase{movements: movements}
}

// ListByProduct retorna los movimientos del producto en el rango dado,
// más recientes primero.
func (uc *KardexUseCase) ListByProduct(ctx context.Context, tenantID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.movements.ListByProduct(ctx, tenantID, productID, from, to, limit, offset)
}
