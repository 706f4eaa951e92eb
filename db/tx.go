package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreloop/cx/o11y"
)

// Tx is the set of capabilities a transaction handle must expose for its
// lifecycle to be managed by WithTx. pgx.Tx satisfies it directly, as does
// the handle TxManager hands to the core.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Pool is anything that can begin a transaction. *pgxpool.Pool satisfies
// Pool[pgx.Tx] with no adaption.
type Pool[T Tx] interface {
	Begin(ctx context.Context) (T, error)
}

// WithTx begins a transaction on pool and calls work with the new handle.
// The transaction is committed if and only if work returns a nil error,
// otherwise it is rolled back. The handle passed to work must not be
// retained or used after work returns.
//
// If beginning the transaction fails neither commit nor rollback is
// attempted, and the begin error is returned. If the rollback of a failed
// work call itself errors both errors are returned joined, and each remains
// matchable with errors.Is. Whenever a non-nil error is returned the result
// is the zero R, a result is only handed back from a committed transaction.
//
// If work panics the transaction is rolled back and the panic resumed.
func WithTx[T Tx, R any](ctx context.Context, pool Pool[T],
	work func(ctx context.Context, tx T) (R, error)) (result R, err error) {

	ctx, span := o11y.StartSpan(ctx, "db: with-tx")
	defer o11y.End(span, &err)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		p := recover()
		switch {
		case p != nil:
			// a panic occurred, rollback and re-panic
			_ = tx.Rollback(ctx)
			panic(p)
		case err != nil:
			// never commit on an error
			// but don't rollback if the transaction context has been canceled
			// (the library code already handles rollback in the context canceled cases)
			if !errors.Is(ctx.Err(), context.Canceled) {
				// something other than a context cancel went wrong, rollback
				if rErr := tx.Rollback(ctx); rErr != nil {
					o11y.AddField(ctx, "rollback_error", rErr)
					// the caller needs to see the rollback failure as well as the
					// error that provoked it, without losing the identity of either
					err = o11y.AllWarning(errors.Join(err, fmt.Errorf("rollback failed: %w", rErr)))
				}
			}
		case errors.Is(ctx.Err(), context.Canceled):
			// work may have suppressed an error but the transaction has still been cancelled,
			// even if work appeared to have not seen any error we report the context cancellation
			// so the client will at least be able to be aware that the transaction was rolled back
			err = ctx.Err()
		default:
			// all good, commit
			err = tx.Commit(ctx)
		}

		if err != nil {
			var zero R
			result = zero
		}
	}()

	result, err = work(ctx, tx)

	// Note that the above defer can reassign err
	return result, err
}
