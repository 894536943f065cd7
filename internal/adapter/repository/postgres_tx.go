package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"match-orchestrator/internal/domain"
)

type txKey struct{}

// withTx marks ctx so repository calls inside the indexing transaction run
// against the transaction instead of the pool.
func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFrom returns the transaction carried by ctx, or nil outside one.
func txFrom(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

type txManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a TransactionManager over the shared pool. The
// profile-indexing path uses it to write the embedding row and the tenant's
// embedding ID atomically.
func NewTxManager(pool *pgxpool.Pool) domain.TransactionManager {
	return &txManager{pool: pool}
}

func (m *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin indexing transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op; the deferred call also
	// unwinds the transaction when fn panics.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit indexing transaction: %w", err)
	}
	return nil
}
