package contacts

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/coreloop/cx/db"
	"github.com/coreloop/cx/httpresponse"
	"github.com/coreloop/cx/o11y"
)

var (
	ErrNotFound      = o11y.NewWarning("no update or results")
	ErrAlreadyExists = o11y.NewWarning("contact already exists")
)

type Store struct {
	txm       *db.TxManager
	maxPerOrg int
}

func NewStore(txm *db.TxManager, maxPerOrg int) *Store {
	return &Store{
		txm:       txm,
		maxPerOrg: maxPerOrg,
	}
}

func mapError(err error, to error) error {
	if errors.Is(err, db.ErrNop) {
		return to
	}
	return err
}

type Contact struct {
	ID    uuid.UUID `db:"id"`
	Org   string    `db:"org"`
	Name  string    `db:"name"`
	Email string    `db:"email"`
}

type ToAdd struct {
	Org   string `db:"org"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

// Add inserts the contact and enforces the per-org limit. The limit is
// checked after the insert, in the same transaction, so an over-limit
// insert never persists.
func (s *Store) Add(ctx context.Context, toAdd ToAdd) (id uuid.UUID, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: add")
	defer o11y.End(span, &err)
	span.AddField("org", toAdd.Org)

	id, err = db.WithTransactionResult(ctx, s.txm,
		func(ctx context.Context, q db.Querier) (uuid.UUID, error) {
			id, err := queryInsertContact(ctx, q, toAdd)
			if err != nil {
				return uuid.UUID{}, err
			}

			count, err := queryCountOrgContacts(ctx, q, toAdd.Org)
			if err != nil {
				return uuid.UUID{}, err
			}
			if count > s.maxPerOrg {
				return uuid.UUID{}, httpresponse.Conflict("contact limit reached")
			}

			return id, nil
		})

	return id, mapError(err, ErrAlreadyExists)
}

func (s *Store) ByID(ctx context.Context, id uuid.UUID) (contact *Contact, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: by_id")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	err = s.txm.WithTx(ctx, func(ctx context.Context, q db.Querier) (err error) {
		contact, err = queryGetContactByID(ctx, q, id)
		return err
	})

	return contact, mapError(err, ErrNotFound)
}

// List returns the org's contacts ordered by name, optionally filtered to
// those whose name contains nameFilter.
func (s *Store) List(ctx context.Context, org, nameFilter string) (list []Contact, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: list")
	defer o11y.End(span, &err)
	span.AddField("org", org)

	list, err = queryContactsByOrg(ctx, s.txm.NoTx(), org, nameFilter)
	if errors.Is(err, db.ErrNop) {
		return []Contact{}, nil
	}

	return list, err
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := o11y.StartSpan(ctx, "store: delete")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	err = queryDeleteContact(ctx, s.txm.NoTx(), id)
	return mapError(err, ErrNotFound)
}
