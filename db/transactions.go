package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type TxManager struct {
	DB *sqlx.DB
	// This is only for testing purposes
	TestQuerier func(Querier) Querier
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{DB: db}
}

// sqlxPool binds *sqlx.DB to the Pool capability set managed by WithTx.
type sqlxPool struct {
	db *sqlx.DB
}

func (p sqlxPool) Begin(ctx context.Context) (sqlxTx, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	return sqlxTx{tx: tx}, err
}

// sqlxTx binds *sqlx.Tx to the Tx capability set. database/sql transactions
// are already bound to the context they were begun with, so the one passed
// here is not needed.
type sqlxTx struct {
	tx *sqlx.Tx
}

func (t sqlxTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t sqlxTx) Rollback(context.Context) error { return t.tx.Rollback() }

// WithTx runs f with a Querier scoped to a single transaction, committing
// only if f returns nil. The package level WithTx documents the exact
// commit, rollback and cancellation semantics.
func (s *TxManager) WithTx(ctx context.Context, f func(context.Context, Querier) error) error {
	_, err := WithTransactionResult(ctx, s, func(ctx context.Context, q Querier) (struct{}, error) {
		return struct{}{}, f(ctx, q)
	})
	return err
}

// WithTransactionResult runs f with a Querier scoped to a single transaction,
// handing back the value f produced only if the transaction committed. See
// WithTx for the exact semantics.
//
// This is a function rather than a method on TxManager since methods may not
// take type parameters.
func WithTransactionResult[R any](ctx context.Context, txm *TxManager,
	f func(context.Context, Querier) (R, error)) (R, error) {

	return WithTx(ctx, sqlxPool{db: txm.DB}, func(ctx context.Context, tx sqlxTx) (R, error) {
		var q Querier = unifiedQuerier{q: eTx{Tx: tx.tx}}
		if txm.TestQuerier != nil {
			q = txm.TestQuerier(q)
		}
		return f(ctx, q)
	})
}

// NoTx returns a Querier backed by the pool directly, for queries that do not
// need transaction scope.
func (s *TxManager) NoTx() Querier {
	var q Querier = unifiedQuerier{q: eDB{DB: s.DB}}
	if s.TestQuerier != nil {
		q = s.TestQuerier(q)
	}
	return q
}
