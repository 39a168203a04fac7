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

	// Purchases
	PurchasesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Total committed purchases",
		},
	)
	PurchasesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_failed_total",
			Help: "Total failed purchases by error kind",
		},
		[]string{"kind"},
	)

	// Auto-funding
	AutoFundRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autofund_runs_total",
			Help: "Total auto-funding sweeps",
		},
	)
	AutoFundedUsers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autofund_users_total",
			Help: "Total successful per-user funding credits",
		},
	)
	AutoFundFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autofund_failures_total",
			Help: "Total per-user funding failures",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(PurchasesTotal)
	prometheus.MustRegister(PurchasesFailed)
	prometheus.MustRegister(AutoFundRuns)
	prometheus.MustRegister(AutoFundedUsers)
	prometheus.MustRegister(AutoFundFailures)
	prometheus.MustRegister(WorkerQueueDepth)
}
