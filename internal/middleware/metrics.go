package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/baharkarakas/wallet-ops/internal/metrics"
)

var (
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	metricsOnce sync.Once
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// HTTPMetrics records latency and request counts per route pattern.
func HTTPMetrics(next http.Handler) http.Handler {
	metricsOnce.Do(func() {
		_ = prometheus.Register(httpLatency)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		status := strconv.Itoa(rec.status)
		httpLatency.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if patt := rc.RoutePattern(); patt != "" {
			return patt
		}
	}
	return "unmatched"
}
