package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	CommandsProcessed *prometheus.CounterVec
	CommandErrors     *prometheus.CounterVec
	PipelineDepth     prometheus.Gauge

	// Ledger metrics
	AccountsOpened     prometheus.Counter
	AccountsClosed     prometheus.Counter
	TransfersProcessed prometheus.Counter
	FeesCollected      *prometheus.CounterVec

	// Barrier metrics
	BarrierFlushes      prometheus.Counter
	BarrierWaitDuration prometheus.Histogram

	// Latency metrics
	CommandLatency prometheus.Histogram
}

// New creates and registers all Prometheus metrics against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CommandsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gopayments_commands_processed_total",
				Help: "Total commands applied by the pipeline",
			},
			[]string{"kind", "result"},
		),
		CommandErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gopayments_command_errors_total",
				Help: "Total recoverable command failures by type",
			},
			[]string{"error_type"},
		),
		PipelineDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gopayments_pipeline_depth",
			Help: "Commands currently buffered in the pipeline",
		}),

		AccountsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "gopayments_accounts_opened_total",
			Help: "Total accounts opened",
		}),
		AccountsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "gopayments_accounts_closed_total",
			Help: "Total accounts closed",
		}),
		TransfersProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "gopayments_transfers_processed_total",
			Help: "Total transfer orders fully committed",
		}),
		FeesCollected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gopayments_fees_collected_total",
				Help: "Fees collected into the per-currency treasury",
			},
			[]string{"currency"},
		),

		BarrierFlushes: factory.NewCounter(prometheus.CounterOpts{
			Name: "gopayments_barrier_flushes_total",
			Help: "Total barrier checkpoints completed",
		}),
		BarrierWaitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gopayments_barrier_wait_seconds",
			Help:    "Time spent waiting on barrier checkpoints",
			Buckets: prometheus.DefBuckets,
		}),

		CommandLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gopayments_command_latency_seconds",
			Help:    "End-to-end command latency sampled by the response handler",
			Buckets: prometheus.ExponentialBuckets(1e-7, 2, 20),
		}),
	}
}
