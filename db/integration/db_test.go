package integration

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/coreloop/cx/db"
	"github.com/coreloop/cx/testing/dbfixture"
	"github.com/coreloop/cx/testing/testcontext"
)

func TestDB(t *testing.T) {
	ctx := testcontext.Background()
	conn := dbfixture.Connection{
		Host:     "localhost:5432",
		User:     "user",
		Password: "password",
	}
	fix := dbfixture.SetupDB(ctx, t,
		"CREATE TABLE peeps (id text PRIMARY KEY, name text, height smallint, dob timestamp);", conn)

	t.Run("statements", func(t *testing.T) {
		type person struct {
			ID     string
			Name   string
			Height int
			DOB    time.Time
		}
		// add a person
		person1 := person{
			ID:     "id1",
			Name:   "bob",
			Height: 187,
			DOB:    time.Date(1998, 7, 4, 0, 0, 0, 0, time.UTC),
		}
		err := fix.TX.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
			const sql = "INSERT INTO peeps (id,name,height,dob) VALUES (:id,:name,:height,:dob);"
			_, err := q.NamedExecContext(ctx, sql, person1)

			return err
		})
		assert.Assert(t, err)

		t.Run("get", func(t *testing.T) {
			p := person{}
			err := fix.TX.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
				return q.GetContext(ctx, &p, "SELECT * from peeps WHERE id=$1", "id1")
			})
			assert.Assert(t, err)
			assert.DeepEqual(t, p, person1)
		})

		t.Run("get named", func(t *testing.T) {
			p := person{}
			err := fix.TX.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
				pars := struct{ ID string }{ID: "id1"}
				return q.NamedGetContext(ctx, &p, "SELECT * from peeps WHERE id=:id", pars)
			})
			assert.Assert(t, err)
			assert.DeepEqual(t, p, person1)
		})

		t.Run("get named db", func(t *testing.T) {
			p := person{}
			pars := struct{ ID string }{ID: "id1"}
			err := fix.TX.NoTx().NamedGetContext(ctx, &p, "SELECT * from peeps WHERE id=:id", pars)
			assert.Assert(t, err)
			assert.DeepEqual(t, p, person1)
		})
	})
}

func TestWithTx_PgxPool(t *testing.T) {
	ctx := testcontext.Background()
	conn := dbfixture.Connection{
		Host:     "localhost:5432",
		User:     "user",
		Password: "password",
	}
	fix := dbfixture.SetupDB(ctx, t,
		"CREATE TABLE gadgets (id text PRIMARY KEY, name text);", conn)

	uri := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(fix.User, fix.Password.Raw()),
		Host:     fix.Host,
		Path:     fix.DBName,
		RawQuery: "sslmode=disable",
	}
	pool, err := pgxpool.New(ctx, uri.String())
	assert.Assert(t, err)
	t.Cleanup(pool.Close)

	count := func(t *testing.T) int {
		t.Helper()
		var n int
		assert.Assert(t, pool.QueryRow(ctx, `SELECT count(*) FROM gadgets;`).Scan(&n))
		return n
	}

	t.Run("work failure leaves the table unchanged", func(t *testing.T) {
		_, err := db.WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) (string, error) {
			_, err := tx.Exec(ctx, `INSERT INTO gadgets (id, name) VALUES ('g1', 'sprocket');`)
			assert.Assert(t, err)
			return "ignored", errors.New("nope")
		})
		assert.Check(t, cmp.ErrorContains(err, "nope"))
		assert.Check(t, cmp.Equal(count(t), 0))
	})

	t.Run("work success commits", func(t *testing.T) {
		name, err := db.WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) (string, error) {
			_, err := tx.Exec(ctx, `INSERT INTO gadgets (id, name) VALUES ('g1', 'sprocket');`)
			if err != nil {
				return "", err
			}
			var name string
			err = tx.QueryRow(ctx, `SELECT name FROM gadgets WHERE id = 'g1';`).Scan(&name)
			return name, err
		})
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(name, "sprocket"))
		assert.Check(t, cmp.Equal(count(t), 1))
	})
}
