package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMutation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordMutation("post", "create")
	m.RecordMutation("post", "create")
	m.RecordMutation("settings", "update")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.contentMutations.WithLabelValues("post", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contentMutations.WithLabelValues("settings", "update")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.contentMutations.WithLabelValues("post", "delete")))
}

func TestMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/posts/:idOrSlug", func(c echo.Context) error {
		if c.Param("idOrSlug") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return c.String(http.StatusOK, "ok")
	})

	for _, path := range []string{"/api/posts/1", "/api/posts/quiet-seed", "/api/posts/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/posts/:idOrSlug", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/posts/:idOrSlug", "404")))

	count, err := testutil.GatherAndCount(reg, "quietseed_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
