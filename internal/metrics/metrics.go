package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DriverSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_selected_total",
		Help: "The total number of times a backend driver was selected",
	}, []string{"backend"})

	DriverUnsupportedType = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_unsupported_type_total",
		Help: "Type strings rejected by a backend's type mapping",
	}, []string{"backend"})

	// Benchmark Metrics
	BenchmarkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "driver_benchmark_duration_ms",
		Help:    "Measured kernel duration in milliseconds, first requested statistic",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 20), // 1us to ~0.5s
	}, []string{"backend"})

	BenchmarkRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_benchmark_runs_total",
		Help: "Total number of benchmark invocations by backend and outcome",
	}, []string{"backend", "status"})

	// Target Metrics
	TargetInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "driver_target_info",
		Help: "Target identity of the active device; value is always 1",
	}, []string{"backend", "arch", "warp_size"})
)
