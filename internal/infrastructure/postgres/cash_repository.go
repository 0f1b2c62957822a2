package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

var _ repository.CashRepository = (*CashRepo)(nil)

// CashRepo implementación del puerto CashRepository sobre PostgreSQL.
type CashRepo struct {
	q Querier
}

// NewCashRepository construye el adaptador de persistencia para caja.
func NewCashRepository(q Querier) *CashRepo {
	return &CashRepo{q: q}
}

const sessionColumns = `id, tenant_id, user_id, monto_inicial, estado, monto_declarado, monto_esperado, diferencia, opened_at, closed_at`

// CreateSession persiste una sesión de caja. Un índice parcial único sobre
// (tenant, user) WHERE estado = 'ABIERTA' garantiza una sola sesión abierta
// por usuario.
func (r *CashRepo) CreateSession(ctx context.Context, s *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (id, tenant_id, user_id, monto_inicial, estado, monto_declarado, monto_esperado, diferencia, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.TenantID, s.UserID, s.MontoInicial, s.Estado,
		s.MontoDeclarado, s.MontoEsperado, s.Diferencia, s.OpenedAt, s.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

// GetSession obtiene una sesión por tenant e ID.
func (r *CashRepo) GetSession(ctx context.Context, tenantID, id string) (*entity.CashSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE tenant_id = $1 AND id = $2`
	return r.scanSession(r.q.QueryRow(ctx, query, tenantID, id), "get cash session")
}

// GetOpenSessionByUser retorna la sesión ABIERTA del usuario, o ErrNotFound.
func (r *CashRepo) GetOpenSessionByUser(ctx context.Context, tenantID, userID string) (*entity.CashSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE tenant_id = $1 AND user_id = $2 AND estado = $3`
	return r.scanSession(r.q.QueryRow(ctx, query, tenantID, userID, entity.SessionAbierta), "get open cash session")
}

func (r *CashRepo) scanSession(row pgx.Row, op string) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(
		&s.ID, &s.TenantID, &s.UserID, &s.MontoInicial, &s.Estado,
		&s.MontoDeclarado, &s.MontoEsperado, &s.Diferencia, &s.OpenedAt, &s.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// UpdateSession persiste el cierre de una sesión.
func (r *CashRepo) UpdateSession(ctx context.Context, s *entity.CashSession) error {
	query := `
		UPDATE cash_sessions SET estado = $3, monto_declarado = $4, monto_esperado = $5, diferencia = $6, closed_at = $7
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query, s.TenantID, s.ID, s.Estado, s.MontoDeclarado, s.MontoEsperado, s.Diferencia, s.ClosedAt)
	if err != nil {
		return fmt.Errorf("update cash session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateMovement persiste un movimiento del libro de caja.
func (r *CashRepo) CreateMovement(ctx context.Context, m *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (id, tenant_id, session_id, movement_type, amount, description, ref_kind, ref_id, manual, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.SessionID, m.Type, m.Amount, m.Description,
		string(m.Ref.Kind), nullIfEmpty(m.Ref.ID), m.Manual, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// ListMovements lista los movimientos de una sesión en orden cronológico.
func (r *CashRepo) ListMovements(ctx context.Context, tenantID, sessionID string) ([]*entity.CashMovement, error) {
	query := `
		SELECT id, tenant_id, session_id, movement_type, amount, description, ref_kind, ref_id, manual, created_at
		FROM cash_movements WHERE tenant_id = $1 AND session_id = $2 ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		var refKind string
		var refID *string
		if err := rows.Scan(&m.ID, &m.TenantID, &m.SessionID, &m.Type, &m.Amount,
			&m.Description, &refKind, &refID, &m.Manual, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		m.Ref = entity.CashRef{Kind: entity.CashRefKind(refKind), ID: orEmpty(refID)}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumMovements retorna (ingresos, egresos) acumulados de la sesión en una
// sola consulta. El saldo teórico nunca se almacena: siempre se deriva.
func (r *CashRepo) SumMovements(ctx context.Context, tenantID, sessionID string) (decimal.Decimal, decimal.Decimal, error) {
	var ingresos, egresos decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(amount) FILTER (WHERE movement_type = $3), 0),
			COALESCE(SUM(amount) FILTER (WHERE movement_type = $4), 0)
		 FROM cash_movements WHERE tenant_id = $1 AND session_id = $2`,
		tenantID, sessionID, entity.CashIngreso, entity.CashEgreso,
	).Scan(&ingresos, &egresos)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum cash movements: %w", err)
	}
	return ingresos, egresos, nil
}
