package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL.
// El libro es append-only: no hay UPDATE ni DELETE sobre inventory_movements.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de persistencia para movimientos de inventario.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, tenant_id, product_id, movement_type, quantity, balance_before, balance_after, unit_cost, ref_kind, ref_id, reason, created_by, created_at`

// Create persiste un movimiento del Kardex.
func (r *MovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (id, tenant_id, product_id, movement_type, quantity, balance_before, balance_after, unit_cost, ref_kind, ref_id, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ProductID, m.Type, m.Quantity,
		m.BalanceBefore, m.BalanceAfter, m.UnitCost,
		string(m.Ref.Kind), nullIfEmpty(m.Ref.ID), m.Reason, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por tenant e ID.
func (r *MovementRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE tenant_id = $1 AND id = $2`
	row := r.q.QueryRow(ctx, query, tenantID, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByProduct lista el Kardex de un producto ordenado por creación
// ascendente (el orden en que encadenan los saldos), con filtro opcional
// de fechas y paginación.
func (r *MovementRepo) ListByProduct(ctx context.Context, tenantID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE tenant_id = $1 AND product_id = $2
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at ASC, id ASC
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, tenantID, productID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListByRef lista los movimientos originados por un documento concreto.
func (r *MovementRepo) ListByRef(ctx context.Context, tenantID string, ref entity.DocumentRef) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE tenant_id = $1 AND ref_kind = $2 AND ref_id = $3
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, tenantID, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("list movements by ref: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	var refKind string
	var refID *string
	err := row.Scan(
		&m.ID, &m.TenantID, &m.ProductID, &m.Type, &m.Quantity,
		&m.BalanceBefore, &m.BalanceAfter, &m.UnitCost,
		&refKind, &refID, &m.Reason, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Ref = entity.DocumentRef{Kind: entity.RefKind(refKind), ID: orEmpty(refID)}
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
