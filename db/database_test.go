package db

import (
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/coreloop/cx/testing/testcontext"
)

func TestNew(t *testing.T) {
	ctx := testcontext.Background()
	db, err := New(ctx, "the-db-name", "the-app-name", Config{
		Host: "localhost",
		Port: 5432,
		User: "user",
		Pass: "password",
		Name: "dbname",
	})
	assert.Assert(t, err)
	t.Cleanup(func() {
		assert.Check(t, db.Close())
	})

	// The pool connects lazily, so the limits are observable without a
	// database to talk to.
	assert.Check(t, cmp.Equal(db.Stats().MaxOpenConnections, 100))

	check := &HealthCheck{Name: "the-db-name", DB: db}
	name, ready, live := check.HealthChecks()
	assert.Check(t, cmp.Equal(name, "the-db-name"))
	assert.Check(t, ready != nil)
	assert.Check(t, live == nil)

	gauges := check.Gauges(ctx)
	for _, key := range []string{"in_use", "idle", "wait_count", "wait_duration",
		"max_idle_closed", "max_idle_time_closed", "max_lifetime_closed"} {
		_, ok := gauges[key]
		assert.Check(t, ok, "missing gauge %q", key)
	}
}
