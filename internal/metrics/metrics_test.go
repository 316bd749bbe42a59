package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDriverMetrics(t *testing.T) {
	t.Run("DriverSelected", func(t *testing.T) {
		before := testutil.ToFloat64(DriverSelected.WithLabelValues("test-selected"))
		DriverSelected.WithLabelValues("test-selected").Inc()
		assert.Equal(t, before+1, testutil.ToFloat64(DriverSelected.WithLabelValues("test-selected")))
	})

	t.Run("DriverUnsupportedType", func(t *testing.T) {
		DriverUnsupportedType.WithLabelValues("test-unsupported").Add(3)
		assert.Equal(t, float64(3), testutil.ToFloat64(DriverUnsupportedType.WithLabelValues("test-unsupported")))
	})

	t.Run("BenchmarkDuration", func(t *testing.T) {
		assert.NotPanics(t, func() {
			BenchmarkDuration.WithLabelValues("test-bench").Observe(0.25)
		})
	})

	t.Run("BenchmarkRuns", func(t *testing.T) {
		BenchmarkRuns.WithLabelValues("test-runs", "ok").Inc()
		BenchmarkRuns.WithLabelValues("test-runs", "error").Inc()
		assert.Equal(t, float64(1), testutil.ToFloat64(BenchmarkRuns.WithLabelValues("test-runs", "error")))
	})

	t.Run("TargetInfo", func(t *testing.T) {
		TargetInfo.WithLabelValues("test-target", "80", "32").Set(1)
		assert.Equal(t, float64(1), testutil.ToFloat64(TargetInfo.WithLabelValues("test-target", "80", "32")))
	})
}

func TestMetricsRegistration(t *testing.T) {
	metrics := []prometheus.Collector{
		DriverSelected,
		DriverUnsupportedType,
		BenchmarkDuration,
		BenchmarkRuns,
		TargetInfo,
	}

	for _, metric := range metrics {
		// Already registered by promauto, so a second registration must fail.
		err := prometheus.Register(metric)
		assert.Error(t, err)
	}
}
