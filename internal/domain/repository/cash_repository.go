package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// CashRepository define el puerto de persistencia para sesiones y
// movimientos de caja.
type CashRepository interface {
	CreateSession(ctx context.Context, session *entity.CashSession) error
	GetSession(ctx context.Context, tenantID, id string) (*entity.CashSession, error)

	// GetOpenSessionByUser retorna la sesión ABIERTA del usuario, o
	// domain.ErrNotFound si no tiene ninguna.
	GetOpenSessionByUser(ctx context.Context, tenantID, userID string) (*entity.CashSession, error)

	UpdateSession(ctx context.Context, session *entity.CashSession) error

	CreateMovement(ctx context.Context, movement *entity.CashMovement) error
	ListMovements(ctx context.Context, tenantID, sessionID string) ([]*entity.CashMovement, error)

	// SumMovements retorna (ingresos, egresos) acumulados de la sesión.
	SumMovements(ctx context.Context, tenantID, sessionID string) (decimal.Decimal, decimal.Decimal, error)
}
