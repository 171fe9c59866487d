package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Operation metrics
	OperationsCreated prometheus.Counter
	OperationsUpdated prometheus.Counter
	OperationsDeleted prometheus.Counter
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	EntryAmount       prometheus.Histogram

	// Balance metrics
	WalletRecalculations  prometheus.Counter
	RecalculationDuration prometheus.Histogram
	AdjustmentsApplied    *prometheus.CounterVec
	AdjustmentAmount      prometheus.Histogram
	BalanceDiscrepancies  prometheus.Gauge

	// Contention metrics
	TxRetries   prometheus.Counter
	TxConflicts prometheus.Counter

	// Report metrics
	ReportsGenerated *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec
	ReportRows       *prometheus.HistogramVec

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventErrors     *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// A nil reg registers with the global default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Operation metrics
		OperationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_operations_created_total",
			Help: "Total number of operations created",
		}),
		OperationsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_operations_updated_total",
			Help: "Total number of operations updated",
		}),
		OperationsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_operations_deleted_total",
			Help: "Total number of operations deleted",
		}),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletledger_operation_duration_seconds",
				Help:    "Duration of ledger mutations including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_operation_errors_total",
				Help: "Total number of failed ledger mutations by kind",
			},
			[]string{"action", "error_type"},
		),
		EntryAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletledger_entry_amount_minor_units",
			Help:    "Entry amounts in minor currency units",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000, 100000000},
		}),

		// Balance metrics
		WalletRecalculations: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_wallet_recalculations_total",
			Help: "Total number of wallet balance recalculations",
		}),
		RecalculationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletledger_recalculation_duration_seconds",
			Help:    "Duration of a single wallet recalculation",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		AdjustmentsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_adjustments_total",
				Help: "Total number of balance adjustments by direction",
			},
			[]string{"direction"},
		),
		AdjustmentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletledger_adjustment_amount_minor_units",
			Help:    "Absolute adjustment amounts in minor currency units",
			Buckets: []float64{1, 100, 10000, 1000000, 100000000},
		}),
		BalanceDiscrepancies: factory.NewGauge(prometheus.GaugeOpts{
			Name: "walletledger_balance_discrepancies",
			Help: "Wallets whose cached balance differs from the ledger on the last consistency check",
		}),

		// Contention metrics
		TxRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_tx_retries_total",
			Help: "Total number of transaction retries after deadlock or serialization failure",
		}),
		TxConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletledger_tx_conflicts_total",
			Help: "Total number of mutations rejected after exhausting retries",
		}),

		// Report metrics
		ReportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_reports_generated_total",
				Help: "Total number of generated reports by kind",
			},
			[]string{"report"},
		),
		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletledger_report_duration_seconds",
				Help:    "Report generation duration",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"report"},
		),
		ReportRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletledger_report_rows",
				Help:    "Number of rows per generated report",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"report"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "walletledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_event_errors_total",
				Help: "Total outbox publishing failures by type",
			},
			[]string{"event_type"},
		),

		// Audit metrics
		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
