// Package cashbox administra sesiones de caja y su libro de movimientos.
// El saldo teórico nunca se almacena: se deriva de apertura + ingresos −
// egresos, así el cierre no puede desalinearse del libro.
package cashbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// TheoreticalBalance calcula el saldo teórico de la sesión: monto inicial
// más ingresos menos egresos.
func TheoreticalBalance(ctx context.Context, cash repository.CashRepository, tenantID, sessionID string) (decimal.Decimal, error) {
	session, err := cash.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	ingresos, egresos, err := cash.SumMovements(ctx, tenantID, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	return session.MontoInicial.Add(ingresos).Sub(egresos), nil
}

// MovementInput es la entrada de un movimiento de caja.
type MovementInput struct {
	TenantID    string
	SessionID   string
	Type        string // INGRESO | EGRESO
	Amount      decimal.Decimal
	Description string
	Ref         entity.CashRef
	Manual      bool
}

// RecordMovement registra un movimiento en la sesión dentro de la
// transacción del caller. La sesión debe estar ABIERTA; un EGRESO exige
// saldo teórico suficiente.
func RecordMovement(ctx context.Context, r application.Repos, in MovementInput) (*entity.CashMovement, error) {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.Validationf("el monto del movimiento de caja debe ser mayor a cero")
	}
	session, err := r.Cash.GetSession(ctx, in.TenantID, in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Estado != entity.SessionAbierta {
		return nil, domain.ErrCashSessionClosed
	}
	if in.Type == entity.CashEgreso {
		balance, err := TheoreticalBalance(ctx, r.Cash, in.TenantID, in.SessionID)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(in.Amount) {
			return nil, &domain.InsufficientLiquidityError{Available: balance, Requested: in.Amount}
		}
	}

	mov := &entity.CashMovement{
		ID:          uuid.New().String(),
		TenantID:    in.TenantID,
		SessionID:   in.SessionID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Ref:         in.Ref,
		Manual:      in.Manual,
		CreatedAt:   time.Now(),
	}
	if err := r.Cash.CreateMovement(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// UseCase expone las operaciones de sesión de caja.
type UseCase struct {
	txRunner application.TxRunner
	cash     repository.CashRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner application.TxRunner, cash repository.CashRepository) *UseCase {
	return &UseCase{txRunner: txRunner, cash: cash}
}

// Open abre una sesión para el usuario. Un usuario solo puede tener una
// sesión ABIERTA a la vez.
func (uc *UseCase) Open(ctx context.Context, tenantID, userID string, montoInicial decimal.Decimal) (*entity.CashSession, error) {
	if montoInicial.IsNegative() {
		return nil, domain.Validationf("el monto inicial no puede ser negativo")
	}
	if _, err := uc.cash.GetOpenSessionByUser(ctx, tenantID, userID); err == nil {
		return nil, domain.Validationf("el usuario ya tiene una sesión de caja abierta")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	session := &entity.CashSession{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		UserID:       userID,
		MontoInicial: montoInicial,
		Estado:       entity.SessionAbierta,
		OpenedAt:     time.Now(),
	}
	if err := uc.cash.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Close cierra la sesión: calcula el esperado desde el libro, guarda el
// declarado y la diferencia.
func (uc *UseCase) Close(ctx context.Context, tenantID, sessionID string, declarado decimal.Decimal) (*entity.CashSession, error) {
	var closed *entity.CashSession
	err := uc.txRunner.Run(ctx, func(r application.Repos) error {
		session, err := r.Cash.GetSession(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		if session.Estado != entity.SessionAbierta {
			return domain.ErrCashSessionClosed
		}
		esperado, err := TheoreticalBalance(ctx, r.Cash, tenantID, sessionID)
		if err != nil {
			return err
		}
		diferencia := declarado.Sub(esperado)
		now := time.Now()

		session.Estado = entity.SessionCerrada
		session.MontoDeclarado = &declarado
		session.MontoEsperado = &esperado
		session.Diferencia = &diferencia
		session.ClosedAt = &now
		if err := r.Cash.UpdateSession(ctx, session); err != nil {
			return err
		}
		closed = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// ManualMovement registra un ingreso o egreso manual en la sesión abierta
// del usuario.
func (uc *UseCase) ManualMovement(ctx context.Context, tenantID, userID, movType, description string, amount decimal.Decimal) (*entity.CashMovement, error) {
	if movType != entity.CashIngreso && movType != entity.CashEgreso {
		return nil, domain.Validationf("tipo de movimiento inválido: %s", movType)
	}
	if description == "" {
		return nil, domain.Validationf("la descripción del movimiento manual es obligatoria")
	}
	session, err := uc.cash.GetOpenSessionByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCashSessionClosed
		}
		return nil, err
	}

	var mov *entity.CashMovement
	err = uc.txRunner.Run(ctx, func(r application.Repos) error {
		var err error
		mov, err = RecordMovement(ctx, r, MovementInput{
			TenantID:    tenantID,
			SessionID:   session.ID,
			Type:        movType,
			Amount:      amount,
			Description: description,
			Ref:         entity.CashRef{Kind: entity.CashRefManual},
			Manual:      true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// Snapshot es el estado corriente de una sesión para consulta.
type Snapshot struct {
	Session  *entity.CashSession
	Ingresos decimal.Decimal
	Egresos  decimal.Decimal
	Saldo    decimal.Decimal
}

// GetSnapshot retorna la sesión con sus acumulados y saldo teórico.
func (uc *UseCase) GetSnapshot(ctx context.Context, tenantID, sessionID string) (*Snapshot, error) {
	session, err := uc.cash.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	ingresos, egresos, err := uc.cash.SumMovements(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Session:  session,
		Ingresos: ingresos,
		Egresos:  egresos,
		Saldo:    session.MontoInicial.Add(ingresos).Sub(egresos),
	}, nil
}
