package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// ApplyInput es la entrada de la primitiva del ledger.
type ApplyInput struct {
	TenantID  string
	ProductID string
	Type      string // ENTRADA_* | SALIDA_*
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	Ref       entity.DocumentRef
	Reason    string
	UserID    string
}

// Apply es la única vía para mutar stock. Lee el producto, calcula el saldo
// resultante, rechaza salidas que dejarían saldo negativo y aplica la
// actualización condicionada a la versión leída; cero filas afectadas
// significa que otra transacción ganó la carrera y se retorna
// ErrConcurrencyConflict sin reintento. El movimiento se inserta con la
// cadena de saldos (BalanceBefore/BalanceAfter) en la misma transacción del
// caller.
func Apply(ctx context.Context, r application.Repos, in ApplyInput) (*entity.InventoryMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.Validationf("la cantidad debe ser mayor a cero")
	}

	product, err := r.Products.GetByID(ctx, in.TenantID, in.ProductID)
	if err != nil {
		return nil, err
	}

	var newBalance decimal.Decimal
	if entity.IsInbound(in.Type) {
		newBalance = product.Stock.Add(in.Quantity)
	} else {
		newBalance = product.Stock.Sub(in.Quantity)
		if newBalance.IsNegative() {
			return nil, &domain.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   in.Quantity,
			}
		}
	}

	if err := r.Products.UpdateStockVersioned(ctx, in.TenantID, in.ProductID, newBalance, product.Version); err != nil {
		return nil, err
	}

	mov := &entity.InventoryMovement{
		ID:            uuid.New().String(),
		TenantID:      in.TenantID,
		ProductID:     in.ProductID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		BalanceBefore: product.Stock,
		BalanceAfter:  newBalance,
		UnitCost:      in.UnitCost,
		Ref:           in.Ref,
		Reason:        in.Reason,
		CreatedBy:     in.UserID,
		CreatedAt:     time.Now(),
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
