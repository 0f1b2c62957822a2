package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

// CreditNoteRepo implementación del puerto CreditNoteRepository sobre PostgreSQL.
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador de persistencia para notas de crédito.
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

const creditNoteColumns = `id, tenant_id, sale_id, user_id, series_id, series_code, numero, kind, motivo, total, stock_retornado, efectivo_devuelto, estado_sunat, xml_url, cdr_url, hash_cpe, created_at, updated_at`

// Create persiste la nota con sus líneas.
func (r *CreditNoteRepo) Create(ctx context.Context, n *entity.CreditNote) error {
	query := `
		INSERT INTO credit_notes (id, tenant_id, sale_id, user_id, series_id, series_code, numero, kind, motivo, total, stock_retornado, efectivo_devuelto, estado_sunat, xml_url, cdr_url, hash_cpe, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.TenantID, n.SaleID, n.UserID, n.SeriesID, n.SeriesCode, n.Number,
		n.Kind, n.Motivo, n.Total, n.StockRetornado, n.EfectivoDevuelto,
		n.EstadoSUNAT, n.XMLURL, n.CDRURL, n.HashCPE, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit note: %w", err)
	}
	for _, line := range n.Lines {
		if err := r.createLine(ctx, &line); err != nil {
			return err
		}
	}
	return nil
}

func (r *CreditNoteRepo) createLine(ctx context.Context, l *entity.CreditNoteLine) error {
	query := `
		INSERT INTO credit_note_lines (id, tenant_id, credit_note_id, product_id, product_name, quantity, precio_unitario, valor_unitario, igv_total, tasa_igv)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.TenantID, l.CreditNoteID, l.ProductID, l.ProductName,
		l.Quantity, l.PrecioUnitario, l.ValorUnitario, l.IGVTotal, l.TasaIGV,
	)
	if err != nil {
		return fmt.Errorf("insert credit note line: %w", err)
	}
	return nil
}

// GetByID obtiene una nota con sus líneas.
func (r *CreditNoteRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.CreditNote, error) {
	query := `SELECT ` + creditNoteColumns + ` FROM credit_notes WHERE tenant_id = $1 AND id = $2`
	n, err := scanCreditNote(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get credit note: %w", err)
	}
	if err := r.loadLines(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListBySale lista las notas emitidas contra una venta.
func (r *CreditNoteRepo) ListBySale(ctx context.Context, tenantID, saleID string) ([]*entity.CreditNote, error) {
	query := `SELECT ` + creditNoteColumns + ` FROM credit_notes WHERE tenant_id = $1 AND sale_id = $2 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, tenantID, saleID)
	if err != nil {
		return nil, fmt.Errorf("list credit notes: %w", err)
	}
	defer rows.Close()
	list, err := collectCreditNotes(rows)
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		if err := r.loadLines(ctx, n); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// SumCreditedBySale suma el total ya acreditado contra la venta. Las
// correcciones de texto no cuentan: no reducen deuda.
func (r *CreditNoteRepo) SumCreditedBySale(ctx context.Context, tenantID, saleID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM credit_notes WHERE tenant_id = $1 AND sale_id = $2 AND kind <> $3`,
		tenantID, saleID, entity.NCCorreccionTexto,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum credited: %w", err)
	}
	return sum, nil
}

// UpdateEstadoSUNAT registra el resultado del facturador sobre la nota.
func (r *CreditNoteRepo) UpdateEstadoSUNAT(ctx context.Context, tenantID, id string, res *entity.ResultadoFiscal) error {
	query := `
		UPDATE credit_notes SET estado_sunat = $3, xml_url = $4, cdr_url = $5, hash_cpe = $6, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query, tenantID, id, res.Estado, res.XMLURL, res.CDRURL, res.HashCPE)
	if err != nil {
		return fmt.Errorf("update credit note estado sunat: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPendientesSUNAT es la consulta del barrido para notas de crédito.
func (r *CreditNoteRepo) ListPendientesSUNAT(ctx context.Context, cutoff time.Time, limit int) ([]*entity.CreditNote, error) {
	query := `SELECT ` + creditNoteColumns + `
		FROM credit_notes
		WHERE estado_sunat = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, entity.SUNATPendiente, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending credit notes: %w", err)
	}
	defer rows.Close()
	list, err := collectCreditNotes(rows)
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		if err := r.loadLines(ctx, n); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *CreditNoteRepo) loadLines(ctx context.Context, n *entity.CreditNote) error {
	query := `
		SELECT id, tenant_id, credit_note_id, product_id, product_name, quantity, precio_unitario, valor_unitario, igv_total, tasa_igv
		FROM credit_note_lines WHERE tenant_id = $1 AND credit_note_id = $2 ORDER BY id`
	rows, err := r.q.Query(ctx, query, n.TenantID, n.ID)
	if err != nil {
		return fmt.Errorf("load credit note lines: %w", err)
	}
	defer rows.Close()
	n.Lines = nil
	for rows.Next() {
		var l entity.CreditNoteLine
		if err := rows.Scan(&l.ID, &l.TenantID, &l.CreditNoteID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.PrecioUnitario, &l.ValorUnitario, &l.IGVTotal, &l.TasaIGV); err != nil {
			return fmt.Errorf("scan credit note line: %w", err)
		}
		n.Lines = append(n.Lines, l)
	}
	return rows.Err()
}

func scanCreditNote(row pgx.Row) (*entity.CreditNote, error) {
	var n entity.CreditNote
	err := row.Scan(
		&n.ID, &n.TenantID, &n.SaleID, &n.UserID, &n.SeriesID, &n.SeriesCode, &n.Number,
		&n.Kind, &n.Motivo, &n.Total, &n.StockRetornado, &n.EfectivoDevuelto,
		&n.EstadoSUNAT, &n.XMLURL, &n.CDRURL, &n.HashCPE, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func collectCreditNotes(rows pgx.Rows) ([]*entity.CreditNote, error) {
	var list []*entity.CreditNote
	for rows.Next() {
		n, err := scanCreditNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
