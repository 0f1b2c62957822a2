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

var _ repository.ReceivableRepository = (*ReceivableRepo)(nil)

// ReceivableRepo implementación del puerto ReceivableRepository sobre PostgreSQL.
type ReceivableRepo struct {
	q Querier
}

// NewReceivableRepository construye el adaptador de persistencia para cuentas por cobrar.
func NewReceivableRepository(q Querier) *ReceivableRepo {
	return &ReceivableRepo{q: q}
}

const receivableColumns = `id, tenant_id, sale_id, customer_id, total, paid, balance, estado, fecha_emision, vencimiento, created_at, updated_at`

// Create persiste una cuenta por cobrar. (tenant, sale) es único: una venta
// a crédito genera exactamente una cuenta.
func (r *ReceivableRepo) Create(ctx context.Context, rec *entity.Receivable) error {
	query := `
		INSERT INTO receivables (id, tenant_id, sale_id, customer_id, total, paid, balance, estado, fecha_emision, vencimiento, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.TenantID, rec.SaleID, rec.CustomerID, rec.Total, rec.Paid,
		rec.Balance, rec.Estado, rec.FechaEmision, rec.Vencimiento, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receivable: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por tenant e ID.
func (r *ReceivableRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivables WHERE tenant_id = $1 AND id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, tenantID, id), "get receivable")
}

// GetBySale obtiene la cuenta generada por una venta a crédito.
func (r *ReceivableRepo) GetBySale(ctx context.Context, tenantID, saleID string) (*entity.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivables WHERE tenant_id = $1 AND sale_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, tenantID, saleID), "get receivable by sale")
}

func (r *ReceivableRepo) scanOne(row pgx.Row, op string) (*entity.Receivable, error) {
	var rec entity.Receivable
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.SaleID, &rec.CustomerID, &rec.Total, &rec.Paid,
		&rec.Balance, &rec.Estado, &rec.FechaEmision, &rec.Vencimiento, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// ListByCustomer lista las cuentas de un cliente, opcionalmente solo las abiertas.
func (r *ReceivableRepo) ListByCustomer(ctx context.Context, tenantID, customerID string, onlyOpen bool) ([]*entity.Receivable, error) {
	query := `SELECT ` + receivableColumns + `
		FROM receivables
		WHERE tenant_id = $1 AND customer_id = $2
		  AND (NOT $3 OR estado NOT IN ($4, $5))
		ORDER BY vencimiento ASC`
	rows, err := r.q.Query(ctx, query, tenantID, customerID, onlyOpen, entity.ReceivablePagada, entity.ReceivableCancelada)
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListByEstado lista cuentas por estado con paginación.
func (r *ReceivableRepo) ListByEstado(ctx context.Context, tenantID, estado string, limit, offset int) ([]*entity.Receivable, error) {
	query := `SELECT ` + receivableColumns + `
		FROM receivables WHERE tenant_id = $1 AND estado = $2
		ORDER BY vencimiento ASC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, estado, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receivables by estado: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *ReceivableRepo) collect(rows pgx.Rows) ([]*entity.Receivable, error) {
	var list []*entity.Receivable
	for rows.Next() {
		var rec entity.Receivable
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.SaleID, &rec.CustomerID, &rec.Total, &rec.Paid,
			&rec.Balance, &rec.Estado, &rec.FechaEmision, &rec.Vencimiento, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan receivable: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// Update persiste los montos y el estado recalculados por el caso de uso.
func (r *ReceivableRepo) Update(ctx context.Context, rec *entity.Receivable) error {
	query := `
		UPDATE receivables SET total = $3, paid = $4, balance = $5, estado = $6, vencimiento = $7, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query, rec.TenantID, rec.ID, rec.Total, rec.Paid, rec.Balance, rec.Estado, rec.Vencimiento)
	if err != nil {
		return fmt.Errorf("update receivable: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreatePayment persiste un abono.
func (r *ReceivableRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO receivable_payments (id, tenant_id, receivable_id, user_id, amount, metodo_pago, referencia, notas, fecha_pago)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, p.ReceivableID, p.UserID, p.Amount, p.MetodoPago, p.Referencia, p.Notas, p.FechaPago,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListPayments lista los abonos de una cuenta en orden cronológico.
func (r *ReceivableRepo) ListPayments(ctx context.Context, tenantID, receivableID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, tenant_id, receivable_id, user_id, amount, metodo_pago, referencia, notas, fecha_pago
		FROM receivable_payments WHERE tenant_id = $1 AND receivable_id = $2 ORDER BY fecha_pago ASC`
	rows, err := r.q.Query(ctx, query, tenantID, receivableID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ReceivableID, &p.UserID, &p.Amount,
			&p.MetodoPago, &p.Referencia, &p.Notas, &p.FechaPago); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ReclassifyAging recalcula el estado de todas las cuentas abiertas según
// su vencimiento respecto de `now`, en una sola sentencia. Cruza tenants.
func (r *ReceivableRepo) ReclassifyAging(ctx context.Context, now time.Time, warning int) (int64, error) {
	query := `
		UPDATE receivables SET estado = nuevo, updated_at = now()
		FROM (
			SELECT id,
				CASE
					WHEN vencimiento < $1 THEN $3
					WHEN vencimiento < $1 + make_interval(days => $2) THEN $4
					ELSE $5
				END AS nuevo
			FROM receivables
			WHERE estado NOT IN ($6, $7)
		) AS calc
		WHERE receivables.id = calc.id AND receivables.estado <> calc.nuevo`
	cmd, err := r.q.Exec(ctx, query,
		now, warning,
		entity.ReceivableVencida, entity.ReceivablePorVencer, entity.ReceivableVigente,
		entity.ReceivablePagada, entity.ReceivableCancelada,
	)
	if err != nil {
		return 0, fmt.Errorf("reclassify aging: %w", err)
	}
	return cmd.RowsAffected(), nil
}
