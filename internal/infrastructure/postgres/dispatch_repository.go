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

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo implementación del puerto DispatchRepository sobre PostgreSQL.
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador de persistencia para guías de remisión.
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

const guideColumns = `id, tenant_id, user_id, series_id, series_code, numero, motivo_traslado, fecha_inicio_traslado, direccion_partida, direccion_llegada, modalidad, placa_vehiculo, peso_bruto_total, numero_bultos, estado_sunat, xml_url, cdr_url, hash_cpe, created_at, updated_at`

// Create persiste la guía con sus líneas.
func (r *DispatchRepo) Create(ctx context.Context, g *entity.DispatchGuide) error {
	query := `
		INSERT INTO dispatch_guides (id, tenant_id, user_id, series_id, series_code, numero, motivo_traslado, fecha_inicio_traslado, direccion_partida, direccion_llegada, modalidad, placa_vehiculo, peso_bruto_total, numero_bultos, estado_sunat, xml_url, cdr_url, hash_cpe, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		g.ID, g.TenantID, g.UserID, g.SeriesID, g.SeriesCode, g.Number,
		g.MotivoTraslado, g.FechaInicioTraslado, g.DireccionPartida, g.DireccionLlegada,
		g.Modalidad, g.PlacaVehiculo, g.PesoBrutoTotal, g.NumeroBultos,
		g.EstadoSUNAT, g.XMLURL, g.CDRURL, g.HashCPE, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert dispatch guide: %w", err)
	}
	for _, line := range g.Lines {
		if err := r.createLine(ctx, &line); err != nil {
			return err
		}
	}
	return nil
}

func (r *DispatchRepo) createLine(ctx context.Context, l *entity.DispatchGuideLine) error {
	query := `
		INSERT INTO dispatch_guide_lines (id, tenant_id, dispatch_guide_id, product_id, product_name, quantity, unidad_medida)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.TenantID, l.DispatchGuideID, l.ProductID, l.ProductName, l.Quantity, l.UnidadMedida,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch guide line: %w", err)
	}
	return nil
}

// GetByID obtiene una guía con sus líneas.
func (r *DispatchRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.DispatchGuide, error) {
	query := `SELECT ` + guideColumns + ` FROM dispatch_guides WHERE tenant_id = $1 AND id = $2`
	g, err := scanGuide(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get dispatch guide: %w", err)
	}
	if err := r.loadLines(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListByTenant lista guías con paginación.
func (r *DispatchRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.DispatchGuide, error) {
	query := `SELECT ` + guideColumns + ` FROM dispatch_guides WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list dispatch guides: %w", err)
	}
	defer rows.Close()
	list, err := collectGuides(rows)
	if err != nil {
		return nil, err
	}
	for _, g := range list {
		if err := r.loadLines(ctx, g); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateEstadoSUNAT registra el resultado del facturador sobre la guía.
func (r *DispatchRepo) UpdateEstadoSUNAT(ctx context.Context, tenantID, id string, res *entity.ResultadoFiscal) error {
	query := `
		UPDATE dispatch_guides SET estado_sunat = $3, xml_url = $4, cdr_url = $5, hash_cpe = $6, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query, tenantID, id, res.Estado, res.XMLURL, res.CDRURL, res.HashCPE)
	if err != nil {
		return fmt.Errorf("update dispatch guide estado sunat: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPendientesSUNAT es la consulta del barrido para guías de remisión.
func (r *DispatchRepo) ListPendientesSUNAT(ctx context.Context, cutoff time.Time, limit int) ([]*entity.DispatchGuide, error) {
	query := `SELECT ` + guideColumns + `
		FROM dispatch_guides
		WHERE estado_sunat = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, entity.SUNATPendiente, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending dispatch guides: %w", err)
	}
	defer rows.Close()
	list, err := collectGuides(rows)
	if err != nil {
		return nil, err
	}
	for _, g := range list {
		if err := r.loadLines(ctx, g); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *DispatchRepo) loadLines(ctx context.Context, g *entity.DispatchGuide) error {
	query := `
		SELECT id, tenant_id, dispatch_guide_id, product_id, product_name, quantity, unidad_medida
		FROM dispatch_guide_lines WHERE tenant_id = $1 AND dispatch_guide_id = $2 ORDER BY id`
	rows, err := r.q.Query(ctx, query, g.TenantID, g.ID)
	if err != nil {
		return fmt.Errorf("load dispatch guide lines: %w", err)
	}
	defer rows.Close()
	g.Lines = nil
	for rows.Next() {
		var l entity.DispatchGuideLine
		if err := rows.Scan(&l.ID, &l.TenantID, &l.DispatchGuideID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnidadMedida); err != nil {
			return fmt.Errorf("scan dispatch guide line: %w", err)
		}
		g.Lines = append(g.Lines, l)
	}
	return rows.Err()
}

func scanGuide(row pgx.Row) (*entity.DispatchGuide, error) {
	var g entity.DispatchGuide
	err := row.Scan(
		&g.ID, &g.TenantID, &g.UserID, &g.SeriesID, &g.SeriesCode, &g.Number,
		&g.MotivoTraslado, &g.FechaInicioTraslado, &g.DireccionPartida, &g.DireccionLlegada,
		&g.Modalidad, &g.PlacaVehiculo, &g.PesoBrutoTotal, &g.NumeroBultos,
		&g.EstadoSUNAT, &g.XMLURL, &g.CDRURL, &g.HashCPE, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func collectGuides(rows pgx.Rows) ([]*entity.DispatchGuide, error) {
	var list []*entity.DispatchGuide
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispatch guide: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}
