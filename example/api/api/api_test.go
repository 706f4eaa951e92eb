package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/coreloop/cx/config/secret"
	"github.com/coreloop/cx/example/contacts"
	"github.com/coreloop/cx/example/migrations"
)

const (
	testAdminToken = "test-admin-token"
	testMaxPerOrg  = 3
)

type fixture struct {
	url   string
	Store *contacts.Store
}

func startAPI(ctx context.Context, t testing.TB) *fixture {
	t.Helper()

	dbfix := migrations.SetupDB(ctx, t)
	store := contacts.NewStore(dbfix.TX, testMaxPerOrg)
	api := New(ctx, Options{
		Store:      store,
		AdminToken: secret.String(testAdminToken),
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &fixture{
		url:   srv.URL,
		Store: store,
	}
}

func (f *fixture) Get(t testing.TB, path string, v interface{}) (statusCode int) {
	t.Helper()

	resp, err := http.Get(f.url + path)
	assert.Assert(t, err)

	defer func() {
		assert.Check(t, resp.Body.Close())
	}()

	if v != nil {
		err = json.NewDecoder(resp.Body).Decode(v)
		assert.Assert(t, err)
	}

	return resp.StatusCode
}

func (f *fixture) Post(t testing.TB, path string, body, v interface{}) (statusCode int) {
	t.Helper()

	b, err := json.Marshal(body)
	assert.Assert(t, err)

	resp, err := http.Post(f.url+path, "application/json", bytes.NewReader(b))
	assert.Assert(t, err)

	defer func() {
		assert.Check(t, resp.Body.Close())
	}()

	if v != nil {
		err = json.NewDecoder(resp.Body).Decode(v)
		assert.Assert(t, err)
	}

	return resp.StatusCode
}

func (f *fixture) Delete(t testing.TB, path, token string) (statusCode int) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, f.url+path, nil)
	assert.Assert(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	assert.Assert(t, err)

	defer func() {
		assert.Check(t, resp.Body.Close())
	}()

	return resp.StatusCode
}
