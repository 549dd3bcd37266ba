package middleware

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/ssr/pkg/render"
)

// MetricsConfig configures the Prometheus metrics observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "ssr").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "ssr",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a render.Observer that records Prometheus metrics.
type Metrics struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	bytesTotal     *prometheus.CounterVec
	chunksTotal    *prometheus.CounterVec
	cancellations  *prometheus.CounterVec
	inFlight       *prometheus.GaugeVec
	headFragments  prometheus.Histogram

	// starts maps renderKey to the render start time.
	starts sync.Map
}

type renderKey struct {
	id   string
	mode render.Mode
}

// NewMetrics registers the render metrics and returns an observer that
// records into them. Registering twice on the same registry panics, as
// with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of renders by delivery mode and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"mode", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"mode"}),

		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_bytes_total",
			Help:        "Total bytes of markup delivered",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		chunksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_chunks_total",
			Help:        "Total chunks of markup delivered",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		cancellations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_cancellations_total",
			Help:        "Total renders cancelled before completion",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_in_flight",
			Help:        "Number of renders currently running",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		headFragments: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "head_fragments",
			Help:        "Propagated head fragments per render",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 4, 8, 16},
		}),
	}
}

// RenderStarted implements render.Observer.
func (m *Metrics) RenderStarted(s *render.Session, mode render.Mode) {
	m.starts.Store(renderKey{s.ID(), mode}, time.Now())
	m.inFlight.WithLabelValues(mode.String()).Inc()
}

// ChunkWritten implements render.Observer.
func (m *Metrics) ChunkWritten(_ *render.Session, mode render.Mode, n int) {
	m.bytesTotal.WithLabelValues(mode.String()).Add(float64(n))
	m.chunksTotal.WithLabelValues(mode.String()).Inc()
}

// RenderFinished implements render.Observer.
func (m *Metrics) RenderFinished(s *render.Session, mode render.Mode, err error) {
	label := mode.String()
	if v, ok := m.starts.LoadAndDelete(renderKey{s.ID(), mode}); ok {
		m.renderDuration.WithLabelValues(label).Observe(time.Since(v.(time.Time)).Seconds())
		m.inFlight.WithLabelValues(label).Dec()
	}

	status := categorizeError(err)
	if status == "cancelled" {
		m.cancellations.WithLabelValues(label).Inc()
	}
	m.rendersTotal.WithLabelValues(label, status).Inc()
	m.headFragments.Observe(float64(len(s.ExtraHead())))
}

// categorizeError returns a low-cardinality label for a render outcome.
func categorizeError(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, render.ErrRenderCancelled):
		return "cancelled"
	case errors.Is(err, render.ErrOnlyResponseCanBeReturned):
		return "contract"
	case errors.Is(err, render.ErrResponseSent):
		return "response_sent"
	case errors.Is(err, render.ErrPropagatorInit):
		return "propagator"
	default:
		return "error"
	}
}
