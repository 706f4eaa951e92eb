package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/coreloop/cx/o11y"
)

var (
	ErrNop         = o11y.NewWarning("no update or results")
	ErrConstrained = errors.New("violates constraints")
	ErrException   = errors.New("exception")
	ErrCanceled    = o11y.NewWarning("statement canceled")
	ErrBadConn     = o11y.NewWarning("bad connection")
)

const (
	pgForeignKeyConstraintErrorCode = "23503"
	pgUniqueViolationErrorCode      = "23505"
	pgExceptionRaised               = "P0001"
	pgStatementCanceled             = "57014"
)

// Error pairs one of the package sentinels with the pq error that produced
// it, so callers can test with errors.Is and still reach driver detail such
// as the violated constraint.
type Error struct {
	err   error
	pqErr *pq.Error
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// PqError returns the underlying driver error.
func (e *Error) PqError() *pq.Error {
	return e.pqErr
}

// PqError digs the pq error out of err if there is one, whether or not it has
// been mapped to one of the package sentinels.
func PqError(err error) *pq.Error {
	e := &Error{}
	if errors.As(err, &e) {
		return e.pqErr
	}
	pqErr := &pq.Error{}
	if errors.As(err, &pqErr) {
		return pqErr
	}
	return nil
}

func mapExecErrors(err error, res sql.Result) error {
	found, err := mapError(err)
	if found {
		return err
	}
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNop
	}
	return nil
}

// mapError maps a few pq errors to errors defined in this package, keeping hold of the original
// error. If a mapping was made the returned bool will be true, if not the original error is returned and
// the bool will be false.
func mapError(err error) (bool, error) {
	if ok, e := mapBadCon(err); ok {
		return true, e
	}
	e := &pq.Error{}
	if errors.As(err, &e) {
		switch e.Code {
		case pgForeignKeyConstraintErrorCode:
			return true, &Error{err: fmt.Errorf("%w: %s - %s", ErrConstrained, e.Message, e.Detail), pqErr: e}
		case pgExceptionRaised:
			return true, &Error{err: fmt.Errorf("%w: %s - %s", ErrException, e.Message, e.Detail), pqErr: e}
		case pgStatementCanceled:
			return true, &Error{err: fmt.Errorf("%w: %s - %s", ErrCanceled, e.Message, e.Detail), pqErr: e}
		case pgUniqueViolationErrorCode:
			return true, &Error{err: fmt.Errorf("%w: %s - %s", ErrNop, e.Message, e.Detail), pqErr: e}
		}
	}
	return false, err
}

func mapBadCon(err error) (bool, error) {
	if errors.Is(err, driver.ErrBadConn) {
		return true, ErrBadConn
	}
	return false, err
}
