package creditnotes

import (
	"context"

	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// QueryUseCase lecturas de notas de crédito.
type QueryUseCase struct {
	notes repository.CreditNoteRepository
}

// NewQueryUseCase construye el caso de uso de lectura.
func NewQueryUseCase(notes repository.CreditNoteRepository) *QueryUseCase {
	return &QueryUseCase{notes: notes}
}

// GetByID obtiene una nota con sus líneas.
func (uc *QueryUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.CreditNote, error) {
	return uc.notes.GetByID(ctx, tenantID, id)
}

// ListBySale lista las notas emitidas contra una venta.
func (uc *QueryUseCase) ListBySale(ctx context.Context, tenantID, saleID string) ([]*entity.CreditNote, error) {
	return uc.notes.ListBySale(ctx, tenantID, saleID)
}
