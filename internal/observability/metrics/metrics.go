// Package metrics registers the Prometheus instrumentation for the
// estimation service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "grid_atlas_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	estimationRuns    *prometheus.CounterVec
	estimationLatency *prometheus.HistogramVec

	unassignedAssets *prometheus.GaugeVec

	cacheEvents *prometheus.CounterVec

	telemetryDegraded prometheus.Gauge

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	substationStatus *prometheus.GaugeVec
)

// Init registers all metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		estimationRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "estimation_runs_total",
				Help: "Total estimation runs by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		estimationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "estimation_latency_seconds",
				Help:    "Estimation run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		)

		unassignedAssets = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "unassigned_assets",
				Help: "Assets left unassigned by the last run, by kind",
			},
			[]string{"kind"},
		)

		cacheEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_events_total",
				Help: "Result cache hits and misses by endpoint",
			},
			[]string{"endpoint", "outcome"},
		)

		telemetryDegraded = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "telemetry_degraded",
				Help: "1 when the last run fell back to static defaults",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		substationStatus = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "substations_by_status",
				Help: "Substation count from the last run, by load status",
			},
			[]string{"status"},
		)

		prometheus.MustRegister(
			estimationRuns,
			estimationLatency,
			unassignedAssets,
			cacheEvents,
			telemetryDegraded,
			exportTotal,
			exportLatency,
			substationStatus,
		)
	})
}

// ObserveEstimation records one estimation run.
func ObserveEstimation(endpoint string, err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if estimationRuns != nil {
		estimationRuns.WithLabelValues(endpoint, result).Inc()
	}
	if estimationLatency != nil {
		estimationLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

// SetUnassigned publishes the leftover asset count for one kind.
func SetUnassigned(kind string, count int) {
	if kind == "" {
		kind = "unknown"
	}
	if unassignedAssets != nil {
		unassignedAssets.WithLabelValues(kind).Set(float64(count))
	}
}

// IncCache counts one cache lookup outcome.
func IncCache(endpoint string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	if cacheEvents != nil {
		cacheEvents.WithLabelValues(endpoint, outcome).Inc()
	}
}

// SetTelemetryDegraded publishes whether the last run used fallbacks.
func SetTelemetryDegraded(degraded bool) {
	if telemetryDegraded == nil {
		return
	}
	if degraded {
		telemetryDegraded.Set(1)
	} else {
		telemetryDegraded.Set(0)
	}
}

// ObserveExport records one report export.
func ObserveExport(format string, err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// SetSubstationStatus publishes the per-status node count from the last run.
func SetSubstationStatus(status string, count int) {
	if status == "" {
		status = "unknown"
	}
	if substationStatus != nil {
		substationStatus.WithLabelValues(status).Set(float64(count))
	}
}
