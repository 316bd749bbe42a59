package driver

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KernelCall launches a kernel once.
type KernelCall func() error

// Reductions applied when BenchConfig.Quantiles is empty.
const (
	ReturnMin    = "min"
	ReturnMax    = "max"
	ReturnMean   = "mean"
	ReturnMedian = "median"
	ReturnAll    = "all"
)

const (
	DefaultWarmup = 25 * time.Millisecond
	DefaultRep    = 100 * time.Millisecond

	estimateRuns  = 5
	maxIterations = 10000
)

// BenchConfig is the complete option set of a Benchmarker.
type BenchConfig struct {
	// Quantiles in [0,1]; the result holds one value per quantile, same order.
	Quantiles []float64
	// Warmup and Rep are the wall time budgets for warmup and measurement.
	Warmup time.Duration
	Rep    time.Duration
	// ReturnMode selects the reduction when Quantiles is empty.
	ReturnMode string
}

func (c BenchConfig) withDefaults() BenchConfig {
	if c.Warmup <= 0 {
		c.Warmup = DefaultWarmup
	}
	if c.Rep <= 0 {
		c.Rep = DefaultRep
	}
	if c.ReturnMode == "" {
		c.ReturnMode = ReturnMean
	}
	return c
}

func (c BenchConfig) validate() error {
	for _, q := range c.Quantiles {
		if math.IsNaN(q) || q < 0 || q > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidQuantile, q)
		}
	}
	switch c.ReturnMode {
	case ReturnMin, ReturnMax, ReturnMean, ReturnMedian, ReturnAll:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidReturnMode, c.ReturnMode)
	}
}

// Benchmarker times call and returns durations in milliseconds: one per
// requested quantile, or the ReturnMode reduction when none are requested.
type Benchmarker func(call KernelCall, cfg BenchConfig) ([]float64, error)

// DoBench returns the default Benchmarker. sync blocks until launched work
// has completed; nil means launches are synchronous.
func DoBench(sync func() error) Benchmarker {
	if sync == nil {
		sync = func() error { return nil }
	}
	return func(call KernelCall, cfg BenchConfig) ([]float64, error) {
		cfg = cfg.withDefaults()
		if err := cfg.validate(); err != nil {
			return nil, err
		}

		run := func() (time.Duration, error) {
			start := time.Now()
			if err := call(); err != nil {
				return 0, err
			}
			if err := sync(); err != nil {
				return 0, err
			}
			return time.Since(start), nil
		}

		if _, err := run(); err != nil {
			return nil, err
		}

		var total time.Duration
		for i := 0; i < estimateRuns; i++ {
			d, err := run()
			if err != nil {
				return nil, err
			}
			total += d
		}
		estimate := total / estimateRuns

		for i := iterations(cfg.Warmup, estimate); i > 0; i-- {
			if _, err := run(); err != nil {
				return nil, err
			}
		}

		samples := make([]float64, iterations(cfg.Rep, estimate))
		for i := range samples {
			d, err := run()
			if err != nil {
				return nil, err
			}
			samples[i] = float64(d) / float64(time.Millisecond)
		}
		return reduce(samples, cfg), nil
	}
}

func iterations(budget, estimate time.Duration) int {
	if estimate <= 0 {
		return maxIterations
	}
	n := int(budget / estimate)
	return max(1, min(n, maxIterations))
}

func reduce(samples []float64, cfg BenchConfig) []float64 {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	if len(cfg.Quantiles) > 0 {
		out := make([]float64, len(cfg.Quantiles))
		for i, q := range cfg.Quantiles {
			out[i] = quantile(q, sorted)
		}
		return out
	}

	switch cfg.ReturnMode {
	case ReturnMin:
		return []float64{floats.Min(sorted)}
	case ReturnMax:
		return []float64{floats.Max(sorted)}
	case ReturnMedian:
		return []float64{stat.Quantile(0.5, stat.Empirical, sorted, nil)}
	case ReturnAll:
		return samples
	default:
		return []float64{stat.Mean(sorted, nil)}
	}
}

// quantile linearly interpolates between closest ranks at h = (n-1)p.
// stat.LinInterp ranks at np instead.
func quantile(p float64, sorted []float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
