package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// ReceivableRepository define el puerto de persistencia para cuentas por
// cobrar y sus pagos.
type ReceivableRepository interface {
	Create(ctx context.Context, rec *entity.Receivable) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Receivable, error)
	GetBySale(ctx context.Context, tenantID, saleID string) (*entity.Receivable, error)
	ListByCustomer(ctx context.Context, tenantID, customerID string, onlyOpen bool) ([]*entity.Receivable, error)
	ListByEstado(ctx context.Context, tenantID, estado string, limit, offset int) ([]*entity.Receivable, error)
	Update(ctx context.Context, rec *entity.Receivable) error

	CreatePayment(ctx context.Context, payment *entity.Payment) error
	ListPayments(ctx context.Context, tenantID, receivableID string) ([]*entity.Payment, error)

	// ReclassifyAging recalcula el estado de las cuentas abiertas según su
	// vencimiento respecto de `now`: VIGENTE, POR_VENCER (a `warning` días
	// o menos del vencimiento) o VENCIDA. Retorna cuántas filas cambiaron.
	ReclassifyAging(ctx context.Context, now time.Time, warning int) (int64, error)
}
