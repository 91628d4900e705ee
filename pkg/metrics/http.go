package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = histogram("http", "request_duration_seconds",
		"Duration of HTTP requests in seconds.", prometheus.DefBuckets,
		"method", "route", "status")

	ResponseSize = histogram("http", "response_size_bytes",
		"Size of HTTP response bodies.", prometheus.ExponentialBuckets(128, 4, 8),
		"route")

	RequestInFlight = gauge("http", "requests_in_flight",
		"Number of HTTP requests currently being served.")
)

func httpCollectors() []prometheus.Collector {
	return []prometheus.Collector{RequestDuration, ResponseSize, RequestInFlight}
}

// Middleware records duration, response size and in-flight count. Run it
// outermost so a recovered panic is still counted as a 500.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			ResponseSize.WithLabelValues(route).Observe(float64(ww.BytesWritten()))
		})
	}
}

// routePattern is the matched chi pattern, known once the router has
// dispatched the request.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
