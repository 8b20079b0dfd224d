package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

var (
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})

	LatencyMS = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	// op: fetch/add/remove
	CartSyncFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "sync_failures_total",
		Help:      "Cart backend calls that failed and triggered a fallback or re-sync.",
	}, []string{"op"})

	// outcome: created/create_failed/paid/verify_failed/payment_failed/dismissed
	CheckoutOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "outcomes_total",
		Help:      "Checkout handshake transitions by outcome.",
	}, []string{"outcome"})

	PendingReceipts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "pending_receipts_retried",
		Help:      "Receipts still pending after the last retry pass.",
	})

	BackendCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "calls_total",
		Help:      "Outbound calls to the REST backend.",
	}, []string{"method", "status"})
)

// MustRegister は全コレクタを reg に登録する
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Requests, LatencyMS, CartSyncFailures, CheckoutOutcomes, PendingReceipts, BackendCalls)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
