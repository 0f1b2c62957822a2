package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	ListByTenant(ctx context.Context, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error)

	// UpdateEstadoSUNAT registra el resultado del facturador: estado,
	// enlaces a XML/CDR, hash y QR. Se invoca FUERA de la transacción de
	// venta, después del commit.
	UpdateEstadoSUNAT(ctx context.Context, tenantID, id string, res *entity.ResultadoFiscal) error

	// MarkAnulada marca la venta como anulada por una nota de crédito de
	// reversa total.
	MarkAnulada(ctx context.Context, tenantID, id string) error

	// ListPendientesSUNAT selecciona ventas en estado PENDIENTE emitidas
	// antes de `cutoff`, más antiguas primero, hasta `limit` filas. Es la
	// consulta del barrido de reconciliación fiscal.
	ListPendientesSUNAT(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Sale, error)
}
