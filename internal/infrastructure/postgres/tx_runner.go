package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Puntoventa-api/internal/application"
)

var _ application.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewRepos arma el juego completo de repositorios sobre un Querier
// (pool para lecturas sueltas, tx dentro de Run).
func NewRepos(q Querier) application.Repos {
	return application.Repos{
		Products:    NewProductRepository(q),
		Movements:   NewMovementRepository(q),
		Series:      NewSeriesRepository(q),
		Sales:       NewSaleRepository(q),
		CreditNotes: NewCreditNoteRepository(q),
		Receivables: NewReceivableRepository(q),
		Cash:        NewCashRepository(q),
		Customers:   NewCustomerRepository(q),
		Dispatch:    NewDispatchRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Las salidas de stock con chequeo de versión, el
// correlativo y la persistencia del documento viven dentro del mismo fn:
// si cualquier paso falla, el rollback devuelve stock, número y documento
// en un solo gesto.
func (r *TxRunner) Run(ctx context.Context, fn func(repos application.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
