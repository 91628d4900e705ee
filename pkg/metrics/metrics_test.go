package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/ayoo/pkg/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	metrics.Handler()(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
	}

	body := scrape(t)
	assert.Contains(t, body, `route="/orders/{id}"`)
	assert.False(t, strings.Contains(body, `route="/orders/a"`))
}

func TestHandlerExposesDomainMetrics(t *testing.T) {
	metrics.OrderTransitions.WithLabelValues("PENDING", "ACCEPTED").Inc()

	assert.Contains(t, scrape(t), `ayoo_orders_transitions_total{from="PENDING",to="ACCEPTED"}`)
}

func TestDomainHelpers(t *testing.T) {
	metrics.OrderConflict("claim_lost")
	metrics.RealtimeEvent("order:new", "dropped")
	metrics.CacheLookup("redis", true)
	metrics.CacheLookup("redis", false)

	body := scrape(t)
	assert.Contains(t, body, `ayoo_orders_conflicts_total{reason="claim_lost"}`)
	assert.Contains(t, body, `ayoo_realtime_events_total{event="order:new",outcome="dropped"}`)
	assert.Contains(t, body, `ayoo_cache_lookups_total{driver="redis",result="hit"}`)
	assert.Contains(t, body, `ayoo_cache_lookups_total{driver="redis",result="miss"}`)
}

func TestMiddlewareCountsResponseSize(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/menu", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":200,"data":[]}`))
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/menu", nil))

	body := scrape(t)
	assert.Contains(t, body, `ayoo_http_response_size_bytes_count{route="/menu"}`)
	assert.Contains(t, body, `ayoo_http_request_duration_seconds_count{method="GET",route="/menu",status="200"}`)
}
