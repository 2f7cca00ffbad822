package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ordermanagement/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_OrderHooks(t *testing.T) {
	m := New()

	m.OrderCreated()
	m.OrderCreated()
	m.StatusChanged(model.OrderStatusConfirmed)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.OrdersCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StatusChanges.WithLabelValues("CONFIRMED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

// 何度作っても登録が衝突しない
func TestMetrics_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()
	a.OrderCreated()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.OrdersCreated))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.OrdersCreated))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.OrderCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ordermanagement_orders_created_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
