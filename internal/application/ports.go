package application

import (
	"context"

	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// Repos agrupa los puertos de persistencia que un caso de uso puede tocar
// dentro de una misma transacción.
type Repos struct {
	Products    repository.ProductRepository
	Movements   repository.MovementRepository
	Series      repository.SeriesRepository
	Sales       repository.SaleRepository
	CreditNotes repository.CreditNoteRepository
	Receivables repository.ReceivableRepository
	Cash        repository.CashRepository
	Customers   repository.CustomerRepository
	Dispatch    repository.DispatchRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Commit si fn retorna nil, Rollback en caso contrario.
// Garantiza atomicidad para los orquestadores de venta, nota de crédito e
// inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
