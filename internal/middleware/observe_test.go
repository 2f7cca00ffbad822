package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ordermanagement/internal/logging"
	"ordermanagement/internal/metrics"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_WritesOneLinePerRequest(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithOutput(&buf, "info", "json")

	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(RequestLogger(log))
	e.GET("/orders/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/abc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/orders/abc", entry["path"])
	assert.Equal(t, "/orders/:id", entry["route"])
	assert.Equal(t, float64(404), entry["status"])
	assert.Equal(t, "warning", entry["level"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Contains(t, entry, "latency_ms")
}

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(Metrics(m))
	e.GET("/orders/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/orders/"+id, nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/orders/:id", "200")))
}
