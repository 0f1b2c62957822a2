package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

var _ repository.SeriesRepository = (*SeriesRepo)(nil)

// SeriesRepo implementación del puerto SeriesRepository sobre PostgreSQL.
type SeriesRepo struct {
	q Querier
}

// NewSeriesRepository construye el adaptador de persistencia para series de numeración.
func NewSeriesRepository(q Querier) *SeriesRepo {
	return &SeriesRepo{q: q}
}

const seriesColumns = `id, tenant_id, kind, code, correlativo_actual, is_active, created_at, updated_at`

// Create persiste una serie nueva. (tenant, code) es único.
func (r *SeriesRepo) Create(ctx context.Context, s *entity.DocumentSeries) error {
	query := `
		INSERT INTO document_series (id, tenant_id, kind, code, correlativo_actual, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.TenantID, s.Kind, s.Code, s.Correlativo, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert series: %w", err)
	}
	return nil
}

// GetByID obtiene una serie por tenant e ID.
func (r *SeriesRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.DocumentSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM document_series WHERE tenant_id = $1 AND id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, tenantID, id), "get series")
}

// GetActiveByKind obtiene la serie activa para un tipo de comprobante.
func (r *SeriesRepo) GetActiveByKind(ctx context.Context, tenantID, kind string) (*entity.DocumentSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM document_series WHERE tenant_id = $1 AND kind = $2 AND is_active ORDER BY created_at ASC LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, tenantID, kind), "get active series")
}

func (r *SeriesRepo) scanOne(row pgx.Row, op string) (*entity.DocumentSeries, error) {
	var s entity.DocumentSeries
	err := row.Scan(&s.ID, &s.TenantID, &s.Kind, &s.Code, &s.Correlativo, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// ListByTenant lista todas las series del tenant.
func (r *SeriesRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.DocumentSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM document_series WHERE tenant_id = $1 ORDER BY kind, code`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentSeries
	for rows.Next() {
		var s entity.DocumentSeries
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Kind, &s.Code, &s.Correlativo, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Update cambia código o bandera de actividad. El correlativo no se toca
// por aquí: solo avanza vía NextCorrelativo.
func (r *SeriesRepo) Update(ctx context.Context, s *entity.DocumentSeries) error {
	query := `UPDATE document_series SET code = $3, is_active = $4, updated_at = now() WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query, s.TenantID, s.ID, s.Code, s.IsActive)
	if err != nil {
		return fmt.Errorf("update series: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextCorrelativo incrementa y retorna el correlativo en una sola sentencia.
// El UPDATE toma lock de fila hasta el commit de la transacción que envuelve
// al llamador: dos emisiones simultáneas sobre la misma serie se serializan
// y cada una recibe un número distinto. Si la transacción hace rollback, el
// incremento se deshace con ella y no queda hueco en la numeración.
func (r *SeriesRepo) NextCorrelativo(ctx context.Context, tenantID, seriesID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`UPDATE document_series SET correlativo_actual = correlativo_actual + 1, updated_at = now()
		 WHERE tenant_id = $1 AND id = $2
		 RETURNING correlativo_actual`,
		tenantID, seriesID,
	).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("next correlativo: %w", err)
	}
	return n, nil
}
