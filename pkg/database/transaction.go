package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type txContextKey string

const txKey = txContextKey("sfsync-tx")

// Tx is the subset of sqlx.Tx the repositories use.
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	IsOpen() bool
}

// Transaction wraps sqlx.Tx. A transaction stored on the context is owned by
// whoever opened it: nested callers reuse it and never commit or roll it back.
type Transaction struct {
	*sqlx.Tx
	logger ectologger.Logger
	closed bool
	nested bool
}

// GetTx returns the open transaction carried by ctx, or begins a new one and
// stores it on the returned context.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if existing, ok := ctx.Value(txKey).(*Transaction); ok && existing.IsOpen() {
		return ctx, &Transaction{Tx: existing.Tx, logger: logger, nested: true}, nil
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("error while beginning transaction")
		return ctx, nil, fmt.Errorf("error while beginning transaction: %w", err)
	}

	t := &Transaction{Tx: tx, logger: logger}
	return context.WithValue(ctx, txKey, t), t, nil
}

// RunInTx runs fn inside a transaction, committing when it returns nil and
// rolling back otherwise.
func RunInTx(ctx context.Context, db DB, fn func(ctx context.Context, tx Tx) error) (err error) {
	txCtx, tx, err := db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(txCtx)
		}
	}()

	if err = fn(txCtx, tx); err != nil {
		return err
	}
	return tx.Commit(txCtx)
}

func (t *Transaction) IsOpen() bool {
	return !t.closed
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if t.closed || t.nested {
		return nil
	}

	if err := t.Tx.Rollback(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("error while rolling back transaction")
		return fmt.Errorf("error while rolling back transaction: %w", err)
	}
	t.closed = true
	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if t.closed || t.nested {
		return nil
	}

	if err := t.Tx.Commit(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("error while committing transaction")
		return fmt.Errorf("error while committing transaction: %w", err)
	}
	t.closed = true
	return nil
}
