package o11ygin

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"

	"github.com/coreloop/cx/internal/syncbuffer"
	"github.com/coreloop/cx/o11y"
	"github.com/coreloop/cx/o11y/honeycomb"
	"github.com/coreloop/cx/testing/fakemetrics"
	"github.com/coreloop/cx/testing/testcontext"
)

func TestMiddleware(t *testing.T) {
	m := &fakemetrics.Provider{}

	ctx := o11y.WithProvider(testcontext.Background(), honeycomb.New(honeycomb.Config{
		Format:  "color",
		Metrics: m,
	}))
	provider := o11y.FromContext(ctx)
	t.Cleanup(func() {
		provider.Close(ctx)
		assert.Check(t, cmp.DeepEqual(
			[]fakemetrics.MetricCall{
				{
					Metric: "timer",
					Name:   "handler",
					Tags: []string{
						"http.server_name:test-server",
						"http.method:POST",
						"http.route:/api/:id",
						"http.status_code:200",
					},
					Rate: 1,
				},
				{
					Metric: "timer",
					Name:   "handler",
					Tags: []string{
						"http.server_name:test-server",
						"http.method:POST",
						"http.route:/api/:id",
						"http.status_code:404",
					},
					Rate: 1,
				},
				{
					Metric: "timer",
					Name:   "handler",
					Tags: []string{
						"http.server_name:test-server",
						"http.method:POST",
						"http.route:/api/:id",
						"http.status_code:500",
					},
					Rate: 1,
				},
				{
					Metric: "count",
					Name:   "panics",
					Tags: []string{
						"name:POST /api/:id",
					},
					Rate: 1,
				},
				{
					Metric: "timer",
					Name:   "handler",
					Tags: []string{
						"http.server_name:test-server",
						"http.method:POST",
						"http.route:/api/:id",
						"http.status_code:500",
					},
					Rate: 1,
				},
				{
					Metric:   "count",
					Name:     "error",
					ValueInt: 1,
					Tags:     []string{"type:o11y"},
					Rate:     1,
				},
			},
			m.Calls(), fakemetrics.CMPMetrics, cmpopts.IgnoreFields(fakemetrics.MetricCall{}, "Value", "ValueInt")),
		)
	})

	r := gin.New()
	r.Use(
		Middleware(provider, "test-server", nil),
		Recovery(),
	)
	r.UseRawPath = true

	r.POST("/api/:id", func(c *gin.Context) {
		switch id := c.Param("id"); id {
		case "exists":
			c.String(http.StatusOK, id)
		case "panic":
			panic("oh noes!")
		case "httppanic":
			panic(http.ErrAbortHandler)
		default:
			c.Status(http.StatusNotFound)
		}
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	t.Run("Hit an ID that exists", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/exists", "", nil)
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(resp.Header.Get("X-Route"), "/api/:id"))
		_ = resp.Body.Close()
		assert.Check(t, cmp.Equal(resp.StatusCode, http.StatusOK))
	})

	t.Run("Hit an ID that does not exist", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/does-not-exist", "", nil)
		assert.Assert(t, err)
		_ = resp.Body.Close()
		assert.Check(t, cmp.Equal(resp.StatusCode, http.StatusNotFound))
	})

	t.Run("Hit an ID that panics", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/panic", "", nil)
		assert.Assert(t, err)
		_ = resp.Body.Close()
		assert.Check(t, cmp.Equal(resp.StatusCode, http.StatusInternalServerError))
	})

	t.Run("Hit an ID that panics but does not rollbar", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/httppanic", "", nil)
		assert.Assert(t, err)
		_ = resp.Body.Close()
		assert.Check(t, cmp.Equal(resp.StatusCode, http.StatusInternalServerError))
	})
}

func TestClientCancelled(t *testing.T) {
	m := &fakemetrics.Provider{}

	var b syncbuffer.SyncBuffer
	w := io.MultiWriter(os.Stdout, &b)
	ctx := o11y.WithProvider(testcontext.Background(), honeycomb.New(honeycomb.Config{
		Format:  "color",
		Metrics: m,
		Writer:  w,
	}))

	r := gin.New()
	r.Use(
		Middleware(o11y.FromContext(ctx), "test-server", nil),
		Recovery(),
		ClientCancelled(),
	)
	r.UseRawPath = true

	r.GET("/", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/sleep", func(c *gin.Context) {
		ctx := c.Request.Context()
		t := time.NewTimer(10 * time.Second)
		defer t.Stop()
		select {
		case <-t.C:
			c.Status(200)
		case <-ctx.Done():
			c.JSON(500, gin.H{})
		}
	})

	server := httptest.NewServer(r)
	defer server.Close()

	t.Run("success", func(t *testing.T) {
		b.Reset()
		m.Reset()
		resp, err := http.Get(server.URL + "/")
		assert.Assert(t, err)
		_ = resp.Body.Close()
		assert.Check(t, cmp.Equal(resp.StatusCode, http.StatusOK))
		poll.WaitOn(t, func(t poll.LogT) poll.Result {
			if !strings.Contains(b.String(), "http.status_code=200") {
				return poll.Continue("expected status not found")
			}
			return poll.Success()
		})

		assert.Check(t, cmp.DeepEqual([]fakemetrics.MetricCall{
			{
				Metric: "timer",
				Name:   "handler",
				Value:  0.111656,
				Tags: []string{
					"http.server_name:test-server", "http.method:GET", "http.route:/",
					"http.status_code:200",
				},
				Rate: 1,
			},
		}, m.Calls(), fakemetrics.CMPMetrics))
	})

	t.Run("cancel", func(t *testing.T) {
		b.Reset()
		m.Reset()
		client := &http.Client{Timeout: 100 * time.Millisecond}
		//nolint:bodyclose // the request times out, there is no body
		_, err := client.Get(server.URL + "/sleep")
		var netErr interface{ Timeout() bool }
		assert.Assert(t, errors.As(err, &netErr))
		assert.Check(t, netErr.Timeout())
		poll.WaitOn(t, func(t poll.LogT) poll.Result {
			if !strings.Contains(b.String(), "http.status_code=499") {
				return poll.Continue("expected status not found")
			}
			return poll.Success()
		})

		assert.Check(t, cmp.DeepEqual([]fakemetrics.MetricCall{
			{
				Metric: "timer",
				Name:   "handler",
				Value:  100.344581,
				Tags: []string{
					"http.server_name:test-server",
					"http.method:GET",
					"http.route:/sleep",
					"http.status_code:499",
				},
				Rate: 1,
			},
		}, m.Calls(), fakemetrics.CMPMetrics))
	})
}

func TestGinInternalError(t *testing.T) {
	m := &fakemetrics.Provider{}

	var buf syncbuffer.SyncBuffer
	ctx := o11y.WithProvider(testcontext.Background(), honeycomb.New(honeycomb.Config{
		Format:  "color",
		Metrics: m,
		Writer:  &buf,
	}))

	r := gin.New()
	r.Use(
		Middleware(o11y.FromContext(ctx), "test-server", nil),
		ClientCancelled(),
	)
	r.UseRawPath = true

	r.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("writer failure"))
		c.Status(http.StatusInternalServerError)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/")
	assert.Assert(t, err)
	_ = resp.Body.Close()
	assert.Check(t, cmp.Equal(resp.StatusCode, http.StatusInternalServerError))

	// check that the middleware added an error field
	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		if !strings.Contains(buf.String(), "app.gin_internal_error") {
			return poll.Continue("expected error field not found")
		}
		return poll.Success()
	})
	assert.Check(t, cmp.Contains(buf.String(), "writer failure"))
}
