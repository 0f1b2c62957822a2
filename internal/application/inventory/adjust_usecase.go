package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// AdjustUseCase registra ajustes manuales de inventario. Un ajuste mal
// registrado no se edita: se corrige con el ajuste inverso.
type AdjustUseCase struct {
	txRunner application.TxRunner
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(txRunner application.TxRunner) *AdjustUseCase {
	return &AdjustUseCase{txRunner: txRunner}
}

// AdjustInputDTO entrada de un ajuste manual. Direction es ENTRADA o SALIDA.
type AdjustInputDTO struct {
	TenantID  string
	UserID    string
	ProductID string
	Direction string
	Quantity  decimal.Decimal
	Reason    string
}

const (
	DirectionEntrada = "ENTRADA"
	DirectionSalida  = "SALIDA"
)

// Adjust valida la entrada y aplica el ajuste vía ledger en su propia
// transacción. El motivo es obligatorio: queda en el Kardex como única
// explicación del ajuste.
func (uc *AdjustUseCase) Adjust(ctx context.Context, input AdjustInputDTO) (*entity.InventoryMovement, error) {
	if input.Reason == "" {
		return nil, domain.Validationf("el motivo del ajuste es obligatorio")
	}
	var movType string
	switch input.Direction {
	case DirectionEntrada:
		movType = entity.MovementEntradaAjuste
	case DirectionSalida:
		movType = entity.MovementSalidaAjuste
	default:
		return nil, domain.Validationf("dirección de ajuste inválida: %s", input.Direction)
	}

	var mov *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(r application.Repos) error {
		var err error
		mov, err = Apply(ctx, r, ApplyInput{
			TenantID:  input.TenantID,
			ProductID: input.ProductID,
			Type:      movType,
			Quantity:  input.Quantity,
			Ref:       entity.AdjustmentRef(),
			Reason:    input.Reason,
			UserID:    input.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}
