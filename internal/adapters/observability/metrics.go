package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "furryville", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "furryville", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	StoreQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "furryville", Name: "store_queries_total", Help: "Store statements by outcome."},
		[]string{"query", "outcome"}, // outcome: ok|not_found|error
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "furryville", Name: "store_query_duration_seconds",
			Help:    "Store statement duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
	MallSchemaTier = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "furryville", Name: "mall_schema_tier_total", Help: "Mall query tier selected."},
		[]string{"tier"}, // tier: footprint|basic
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, StoreQueries, StoreLatency, MallSchemaTier)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// NewMetricsServer exposes reg on addr under /metrics.
func NewMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveQuery(query, outcome string, dur time.Duration) {
	StoreQueries.WithLabelValues(query, outcome).Inc()
	StoreLatency.WithLabelValues(query).Observe(dur.Seconds())
}

func ObserveMallTier(tier string) { MallSchemaTier.WithLabelValues(tier).Inc() }
