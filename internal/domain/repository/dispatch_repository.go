package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// DispatchRepository define el puerto de persistencia para guías de remisión.
type DispatchRepository interface {
	Create(ctx context.Context, guide *entity.DispatchGuide) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.DispatchGuide, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.DispatchGuide, error)
	UpdateEstadoSUNAT(ctx context.Context, tenantID, id string, res *entity.ResultadoFiscal) error
	ListPendientesSUNAT(ctx context.Context, cutoff time.Time, limit int) ([]*entity.DispatchGuide, error)
}
