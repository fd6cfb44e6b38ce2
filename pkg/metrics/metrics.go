// Package metrics records Prometheus metrics for matrix builds.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrWriteTextfile wraps failures to write the textfile collector output.
var ErrWriteTextfile = errors.New("metrics textfile write failed")

// Manager owns a registry and the build metrics registered on it.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	constLabels      map[string]string
	enabled          bool
	registry         *prometheus.Registry

	matricesBuilt  *prometheus.CounterVec
	buildFailures  *prometheus.CounterVec
	undefinedCells prometheus.Counter
	buildDuration  prometheus.Histogram
}

// NewManager creates a Manager on a fresh registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "aflcorr",
		histogramBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matricesBuilt = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "matrices_built_total",
		Help:        "Correlation matrices built successfully, by method",
		ConstLabels: m.constLabels,
	}, []string{"method"})

	m.buildFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "build_failures_total",
		Help:        "Matrix builds that failed, by error kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.undefinedCells = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "undefined_cells_total",
		Help:        "Matrix cells with no coefficient, including the diagonal",
		ConstLabels: m.constLabels,
	})

	m.buildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Name:        "build_duration_seconds",
		Help:        "Wall time of one matrix build",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordBuild records one successful build.
func (m *Manager) RecordBuild(method string, undefined int, d time.Duration) {
	if !m.enabled {
		return
	}
	m.matricesBuilt.WithLabelValues(method).Inc()
	m.undefinedCells.Add(float64(undefined))
	m.buildDuration.Observe(d.Seconds())
}

// RecordFailure records one failed build under its error kind.
func (m *Manager) RecordFailure(kind string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.buildFailures.WithLabelValues(kind).Inc()
	m.buildDuration.Observe(d.Seconds())
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteTextfile, path, err)
	}
	return nil
}
