package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/fiscal"
)

// ReceiptUseCase registra entradas de mercadería (compras). Cada línea
// genera un movimiento ENTRADA_COMPRA con snapshot de costo y recalcula el
// costo promedio ponderado del producto.
type ReceiptUseCase struct {
	txRunner application.TxRunner
	cfg      fiscal.Config
}

// NewReceiptUseCase construye el caso de uso con la configuración
// tributaria del tenant.
func NewReceiptUseCase(txRunner application.TxRunner, cfg fiscal.Config) *ReceiptUseCase {
	return &ReceiptUseCase{txRunner: txRunner, cfg: cfg}
}

// ReceiptLineDTO es una línea de entrada. UnitCost es el costo unitario tal
// como viene del proveedor; si CostIncludesIGV, se descompone y el costo
// neto es el que se promedia.
type ReceiptLineDTO struct {
	ProductID       string
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	CostIncludesIGV bool
}

// ReceiptInputDTO entrada de una recepción de compra.
type ReceiptInputDTO struct {
	TenantID  string
	UserID    string
	Reference string // número de documento del proveedor, opcional
	Lines     []ReceiptLineDTO
}

// ReceiptResult resume la recepción aplicada.
type ReceiptResult struct {
	ReceiptID string
	Movements []*entity.InventoryMovement
}

// Receive aplica todas las líneas en una sola transacción: o entra la
// compra completa o no entra nada.
func (uc *ReceiptUseCase) Receive(ctx context.Context, input ReceiptInputDTO) (*ReceiptResult, error) {
	if len(input.Lines) == 0 {
		return nil, domain.Validationf("la recepción no tiene líneas")
	}
	for _, ln := range input.Lines {
		if !ln.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.Validationf("cantidad inválida para producto %s", ln.ProductID)
		}
		if ln.UnitCost.IsNegative() {
			return nil, domain.Validationf("costo inválido para producto %s", ln.ProductID)
		}
	}

	receiptID := uuid.New().String()
	result := &ReceiptResult{ReceiptID: receiptID}

	err := uc.txRunner.Run(ctx, func(r application.Repos) error {
		for _, ln := range input.Lines {
			product, err := r.Products.GetByID(ctx, input.TenantID, ln.ProductID)
			if err != nil {
				return err
			}

			netCost := ln.UnitCost
			if ln.CostIncludesIGV {
				rate := fiscal.RateFor(uc.cfg, product.AfectacionIGV)
				netCost = fiscal.Decompose(ln.UnitCost, rate).Base4
			}

			newCost := fiscal.WeightedAverageCost(product.Stock, product.Cost, ln.Quantity, netCost)

			mov, err := Apply(ctx, r, ApplyInput{
				TenantID:  input.TenantID,
				ProductID: ln.ProductID,
				Type:      entity.MovementEntradaCompra,
				Quantity:  ln.Quantity,
				UnitCost:  &netCost,
				Ref:       entity.GoodsReceiptRef(receiptID),
				Reason:    input.Reference,
				UserID:    input.UserID,
			})
			if err != nil {
				return err
			}
			if err := r.Products.UpdateCost(ctx, input.TenantID, ln.ProductID, newCost); err != nil {
				return err
			}
			result.Movements = append(result.Movements, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
