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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
// Las líneas se persisten junto con la cabecera y se hidratan en toda
// lectura: el barrido necesita el snapshot completo para reconstruir el
// payload del facturador.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, tenant_id, customer_id, user_id, cash_session_id, series_id, series_code, numero, doc_kind, gravado, igv, total, condicion, metodo_pago, estado_sunat, anulada, xml_url, cdr_url, hash_cpe, codigo_qr, fecha_emision, created_at, updated_at`

// Create persiste la cabecera y todas las líneas.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, tenant_id, customer_id, user_id, cash_session_id, series_id, series_code, numero, doc_kind, gravado, igv, total, condicion, metodo_pago, estado_sunat, anulada, xml_url, cdr_url, hash_cpe, codigo_qr, fecha_emision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.TenantID, nullIfEmpty(s.CustomerID), s.UserID, s.CashSessionID,
		s.SeriesID, s.SeriesCode, s.Number, s.DocKind,
		s.Gravado, s.IGV, s.Total, s.Condicion, s.MetodoPago,
		s.EstadoSUNAT, s.Anulada, s.XMLURL, s.CDRURL, s.HashCPE, s.CodigoQR,
		s.FechaEmision, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for _, line := range s.Lines {
		if err := r.createLine(ctx, &line); err != nil {
			return err
		}
	}
	return nil
}

func (r *SaleRepo) createLine(ctx context.Context, l *entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (id, tenant_id, sale_id, product_id, product_name, quantity, precio_unitario, valor_unitario, igv_total, tasa_igv, costo_unitario)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.TenantID, l.SaleID, l.ProductID, l.ProductName,
		l.Quantity, l.PrecioUnitario, l.ValorUnitario, l.IGVTotal, l.TasaIGV, l.CostoUnitario,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

// GetByID obtiene una venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE tenant_id = $1 AND id = $2`
	s, err := scanSale(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadLines(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByTenant lista ventas con filtro opcional de fechas de emisión y paginación.
func (r *SaleRepo) ListByTenant(ctx context.Context, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR fecha_emision >= $2)
		  AND ($3::timestamptz IS NULL OR fecha_emision < $3)
		ORDER BY fecha_emision DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, tenantID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	list, err := collectSales(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		if err := r.loadLines(ctx, s); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateEstadoSUNAT registra el resultado del facturador sobre la venta.
func (r *SaleRepo) UpdateEstadoSUNAT(ctx context.Context, tenantID, id string, res *entity.ResultadoFiscal) error {
	query := `
		UPDATE sales SET estado_sunat = $3, xml_url = $4, cdr_url = $5, hash_cpe = $6, codigo_qr = $7, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query, tenantID, id, res.Estado, res.XMLURL, res.CDRURL, res.HashCPE, res.CodigoQR)
	if err != nil {
		return fmt.Errorf("update sale estado sunat: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAnulada marca la venta como anulada por una nota de reversa total.
func (r *SaleRepo) MarkAnulada(ctx context.Context, tenantID, id string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET anulada = true, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("mark sale anulada: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPendientesSUNAT selecciona ventas PENDIENTE emitidas antes del corte,
// más antiguas primero. Cruza tenants: el barrido corre por instancia, no
// por tenant.
func (r *SaleRepo) ListPendientesSUNAT(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE estado_sunat = $1 AND fecha_emision < $2
		ORDER BY fecha_emision ASC
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, entity.SUNATPendiente, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sales: %w", err)
	}
	defer rows.Close()
	list, err := collectSales(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		if err := r.loadLines(ctx, s); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *SaleRepo) loadLines(ctx context.Context, s *entity.Sale) error {
	query := `
		SELECT id, tenant_id, sale_id, product_id, product_name, quantity, precio_unitario, valor_unitario, igv_total, tasa_igv, costo_unitario
		FROM sale_lines WHERE tenant_id = $1 AND sale_id = $2 ORDER BY id`
	rows, err := r.q.Query(ctx, query, s.TenantID, s.ID)
	if err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}
	defer rows.Close()
	s.Lines = nil
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.TenantID, &l.SaleID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.PrecioUnitario, &l.ValorUnitario, &l.IGVTotal, &l.TasaIGV, &l.CostoUnitario); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, l)
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID *string
	err := row.Scan(
		&s.ID, &s.TenantID, &customerID, &s.UserID, &s.CashSessionID,
		&s.SeriesID, &s.SeriesCode, &s.Number, &s.DocKind,
		&s.Gravado, &s.IGV, &s.Total, &s.Condicion, &s.MetodoPago,
		&s.EstadoSUNAT, &s.Anulada, &s.XMLURL, &s.CDRURL, &s.HashCPE, &s.CodigoQR,
		&s.FechaEmision, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CustomerID = orEmpty(customerID)
	return &s, nil
}

func collectSales(rows pgx.Rows) ([]*entity.Sale, error) {
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
