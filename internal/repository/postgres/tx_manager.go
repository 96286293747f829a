package postgres

import (
	"context"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"

	"github.com/jackc/pgx/v5"
)

// TransactionManager implements domain.TransactionManager using pgx
type TransactionManager struct {
	db DBTX
}

func NewTransactionManager(db DBTX) domain.TransactionManager {
	return &TransactionManager{db: db}
}

// Do runs fn inside a transaction. A nested call becomes a savepoint of the
// outer transaction.
func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := conn(ctx, tm.db).Begin(ctx)
	if err != nil {
		return err
	}

	// Create a new context with the transaction
	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

type txKey struct{}

// TxFromContext returns the transaction started by Do, if any.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}
