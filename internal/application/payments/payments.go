// Package payments registra abonos contra cuentas por cobrar y mantiene
// su clasificación por vencimiento.
package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/application/cashbox"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// DiasPorVencer es la antelación con la que una cuenta pasa a POR_VENCER.
const DiasPorVencer = 7

// MetodoEfectivo marca los abonos que entran físicamente a la caja.
const MetodoEfectivo = "EFECTIVO"

// UseCase registra pagos y consulta cuentas por cobrar.
type UseCase struct {
	txRunner    application.TxRunner
	receivables repository.ReceivableRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner application.TxRunner, receivables repository.ReceivableRepository) *UseCase {
	return &UseCase{txRunner: txRunner, receivables: receivables}
}

// RegisterPaymentInputDTO entrada de un abono.
type RegisterPaymentInputDTO struct {
	TenantID     string
	UserID       string
	ReceivableID string
	Amount       decimal.Decimal
	MetodoPago   string
	Referencia   string
	Notas        string
}

// RegisterPayment abona contra una cuenta abierta. Rechaza cuentas
// terminales y montos que excedan el saldo; un abono en efectivo entra a
// la sesión de caja abierta del usuario.
func (uc *UseCase) RegisterPayment(ctx context.Context, input RegisterPaymentInputDTO) (*entity.Payment, error) {
	if !input.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.Validationf("el monto del abono debe ser mayor a cero")
	}

	var payment *entity.Payment
	err := uc.txRunner.Run(ctx, func(r application.Repos) error {
		rec, err := r.Receivables.GetByID(ctx, input.TenantID, input.ReceivableID)
		if err != nil {
			return err
		}
		if !rec.IsOpen() {
			return domain.Validationf("la cuenta por cobrar está %s y no admite abonos", rec.Estado)
		}
		if input.Amount.GreaterThan(rec.Balance) {
			return domain.Validationf("el abono %s excede el saldo pendiente %s",
				input.Amount.StringFixed(2), rec.Balance.StringFixed(2))
		}

		now := time.Now()
		payment = &entity.Payment{
			ID:           uuid.New().String(),
			TenantID:     input.TenantID,
			ReceivableID: rec.ID,
			UserID:       input.UserID,
			Amount:       input.Amount,
			MetodoPago:   input.MetodoPago,
			Referencia:   input.Referencia,
			Notas:        input.Notas,
			FechaPago:    now,
		}
		if err := r.Receivables.CreatePayment(ctx, payment); err != nil {
			return err
		}

		rec.Paid = rec.Paid.Add(input.Amount)
		rec.Balance = rec.Total.Sub(rec.Paid)
		if rec.Balance.IsZero() {
			rec.Estado = entity.ReceivablePagada
		}
		rec.UpdatedAt = now
		if err := r.Receivables.Update(ctx, rec); err != nil {
			return err
		}

		if input.MetodoPago == MetodoEfectivo {
			session, err := r.Cash.GetOpenSessionByUser(ctx, input.TenantID, input.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.ErrCashSessionClosed
				}
				return err
			}
			if _, err := cashbox.RecordMovement(ctx, r, cashbox.MovementInput{
				TenantID:    input.TenantID,
				SessionID:   session.ID,
				Type:        entity.CashIngreso,
				Amount:      input.Amount,
				Description: "Cobranza cuenta " + rec.ID,
				Ref:         entity.CashRef{Kind: entity.CashRefPago, ID: payment.ID},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ListByCustomer retorna las cuentas del cliente, opcionalmente solo las
// abiertas, ordenadas por vencimiento.
func (uc *UseCase) ListByCustomer(ctx context.Context, tenantID, customerID string, onlyOpen bool) ([]*entity.Receivable, error) {
	return uc.receivables.ListByCustomer(ctx, tenantID, customerID, onlyOpen)
}

// AgingJob reclasifica las cuentas abiertas por vencimiento. Corre bajo el
// scheduler, separado del barrido fiscal.
type AgingJob struct {
	receivables repository.ReceivableRepository
	diasAviso   int
	log         zerolog.Logger
}

// NewAgingJob construye el job. diasAviso es la antelación para POR_VENCER.
func NewAgingJob(receivables repository.ReceivableRepository, diasAviso int, log zerolog.Logger) *AgingJob {
	if diasAviso <= 0 {
		diasAviso = DiasPorVencer
	}
	return &AgingJob{receivables: receivables, diasAviso: diasAviso, log: log}
}

// Run ejecuta una pasada de reclasificación.
func (j *AgingJob) Run(ctx context.Context) error {
	changed, err := j.receivables.ReclassifyAging(ctx, time.Now(), j.diasAviso)
	if err != nil {
		j.log.Error().Err(err).Msg("reclasificación de cuentas por cobrar falló")
		return err
	}
	if changed > 0 {
		j.log.Info().Int64("cuentas", changed).Msg("cuentas por cobrar reclasificadas")
	}
	return nil
}
