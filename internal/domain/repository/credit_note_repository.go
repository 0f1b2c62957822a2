package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// CreditNoteRepository define el puerto de persistencia para notas de crédito.
type CreditNoteRepository interface {
	Create(ctx context.Context, note *entity.CreditNote) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.CreditNote, error)
	ListBySale(ctx context.Context, tenantID, saleID string) ([]*entity.CreditNote, error)

	// SumCreditedBySale retorna el total ya acreditado contra una venta
	// (suma de notas previas, excluyendo correcciones de texto).
	SumCreditedBySale(ctx context.Context, tenantID, saleID string) (decimal.Decimal, error)

	UpdateEstadoSUNAT(ctx context.Context, tenantID, id string, res *entity.ResultadoFiscal) error

	// ListPendientesSUNAT es la contraparte del barrido para notas de crédito.
	ListPendientesSUNAT(ctx context.Context, cutoff time.Time, limit int) ([]*entity.CreditNote, error)
}
