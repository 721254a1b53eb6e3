package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Ledger
	ReversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reversals_total",
			Help: "Total committed transaction reversals",
		},
		[]string{"type"}, // P2P|PAYMENT
	)
	InvoiceTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_transitions_total",
			Help: "Committed invoice state transitions",
		},
		[]string{"to"},
	)
	OperationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "core_operations_failed_total",
			Help: "Core operations that returned an error",
		},
		[]string{"op"},
	)
	TxConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_tx_conflicts_total",
			Help: "Store transaction commits lost to a concurrent writer",
		},
	)

	// Notifications
	NotificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Notification records that could not be delivered post-commit",
		},
	)

	// Worker kuyruğu
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// /metrics endpoint'i için handler
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(ReversalsTotal)
	prometheus.MustRegister(InvoiceTransitions)
	prometheus.MustRegister(OperationsFailed)
	prometheus.MustRegister(TxConflicts)
	prometheus.MustRegister(NotificationsFailed)
	prometheus.MustRegister(WorkerQueueDepth)
}
