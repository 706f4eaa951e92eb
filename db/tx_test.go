package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/coreloop/cx/o11y"
)

// *pgxpool.Pool begins pgx.Tx transactions, which carry the capabilities
// WithTx manages, so it can be used as a Pool with no adaption.
var _ Pool[pgx.Tx] = (*pgxpool.Pool)(nil)

var _ Tx = (*stubTx)(nil)

func TestWithTx_CommitsOnlyOnSuccess(t *testing.T) {
	ourError := errors.New("our error")

	tests := []struct {
		name        string
		returnError error
		commits     int
		rollbacks   int
	}{
		{name: "success", returnError: nil, commits: 1},
		{name: "error", returnError: ourError, rollbacks: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &stubPool{tx: &stubTx{}}

			got, err := WithTx(context.Background(), pool,
				func(ctx context.Context, tx *stubTx) (int, error) {
					return 42, tt.returnError
				})

			if tt.returnError != nil {
				assert.Assert(t, errors.Is(err, tt.returnError), "got:%v", err)
				assert.Equal(t, got, 0)
			} else {
				assert.NilError(t, err)
				assert.Equal(t, got, 42)
			}
			assert.Equal(t, pool.tx.commits, tt.commits)
			assert.Equal(t, pool.tx.rollbacks, tt.rollbacks)
		})
	}
}

func TestWithTx_BeginFailure(t *testing.T) {
	beginError := errors.New("begin failed")
	pool := &stubPool{tx: &stubTx{}, beginError: beginError}

	workCalled := false
	got, err := WithTx(context.Background(), pool,
		func(ctx context.Context, tx *stubTx) (string, error) {
			workCalled = true
			return "never", nil
		})

	assert.Assert(t, errors.Is(err, beginError), "got:%v", err)
	assert.Equal(t, got, "")
	assert.Assert(t, !workCalled)
	assert.Equal(t, pool.tx.commits, 0)
	assert.Equal(t, pool.tx.rollbacks, 0)
}

func TestWithTx_RollbackFailureReportsBothErrors(t *testing.T) {
	ourError := errors.New("our error")
	rollbackError := errors.New("rollback failed")

	pool := &stubPool{tx: &stubTx{rollbackError: rollbackError}}
	_, err := WithTx(context.Background(), pool,
		func(ctx context.Context, tx *stubTx) (int, error) {
			return 0, ourError
		})

	assert.Assert(t, errors.Is(err, ourError), "got:%v", err)
	assert.Assert(t, errors.Is(err, rollbackError), "got:%v", err)
	assert.Equal(t, pool.tx.rollbacks, 1)
	assert.Equal(t, pool.tx.commits, 0)
}

func TestWithTx_RollbackFailureIsNotAWarning(t *testing.T) {
	rollbackError := errors.New("rollback failed")

	// ErrNop alone is a warning, but a failed rollback is not, so the joined
	// error must not be treated as one.
	pool := &stubPool{tx: &stubTx{rollbackError: rollbackError}}
	_, err := WithTx(context.Background(), pool,
		func(ctx context.Context, tx *stubTx) (int, error) {
			return 0, ErrNop
		})

	assert.Assert(t, errors.Is(err, ErrNop))
	assert.Assert(t, errors.Is(err, rollbackError))
	assert.Assert(t, !o11y.IsWarning(err))
}

func TestWithTx_CommitFailureDiscardsResult(t *testing.T) {
	commitError := errors.New("commit failed")
	pool := &stubPool{tx: &stubTx{commitError: commitError}}

	got, err := WithTx(context.Background(), pool,
		func(ctx context.Context, tx *stubTx) (string, error) {
			return "the result", nil
		})

	assert.Assert(t, errors.Is(err, commitError), "got:%v", err)
	assert.Equal(t, got, "")
	assert.Equal(t, pool.tx.commits, 1)
	assert.Equal(t, pool.tx.rollbacks, 0)
}

func TestWithTx_PanicRollsBackAndResumes(t *testing.T) {
	pool := &stubPool{tx: &stubTx{}}

	func() {
		defer func() {
			p := recover()
			assert.Equal(t, p, "boom")
		}()
		_, _ = WithTx(context.Background(), pool,
			func(ctx context.Context, tx *stubTx) (int, error) {
				panic("boom")
			})
	}()

	assert.Equal(t, pool.tx.rollbacks, 1)
	assert.Equal(t, pool.tx.commits, 0)
}

func TestWithTx_ContextCancelled(t *testing.T) {
	ourError := errors.New("our error")

	t.Run("with_error_leaves_rollback_to_the_driver", func(t *testing.T) {
		pool := &stubPool{tx: &stubTx{}}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, err := WithTx(ctx, pool, func(ctx context.Context, tx *stubTx) (int, error) {
			cancel()
			return 0, ourError
		})

		assert.Assert(t, errors.Is(err, ourError), "got:%v", err)
		assert.Equal(t, pool.tx.commits, 0)
		assert.Equal(t, pool.tx.rollbacks, 0)
	})

	t.Run("without_error_reports_the_cancellation", func(t *testing.T) {
		pool := &stubPool{tx: &stubTx{}}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		got, err := WithTx(ctx, pool, func(ctx context.Context, tx *stubTx) (int, error) {
			cancel()
			return 42, nil
		})

		assert.Assert(t, errors.Is(err, context.Canceled), "got:%v", err)
		assert.Equal(t, got, 0)
		assert.Equal(t, pool.tx.commits, 0)
	})
}

type stubPool struct {
	tx         *stubTx
	beginError error
	begins     int
}

func (p *stubPool) Begin(context.Context) (*stubTx, error) {
	p.begins++
	if p.beginError != nil {
		return nil, p.beginError
	}
	return p.tx, nil
}

type stubTx struct {
	commits       int
	rollbacks     int
	commitError   error
	rollbackError error
}

func (tx *stubTx) Commit(context.Context) error {
	tx.commits++
	return tx.commitError
}

func (tx *stubTx) Rollback(context.Context) error {
	tx.rollbacks++
	return tx.rollbackError
}
