package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/vcell/pkg/signal"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vcell").
	Namespace string

	// Subsystem is the metrics subsystem (default: "cell").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vcell",
		Subsystem: "cell",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a signal.Observer that records Prometheus metrics.
//
// Metrics collected:
//   - vcell_cell_passes_total: notification passes by cell
//   - vcell_cell_notifications_total: observer invocations by cell
//   - vcell_cell_pass_duration_seconds: pass duration by cell
//   - vcell_cell_rejected_writes_total: writes refused by the state gate
//   - vcell_cell_subscribers: live observers by cell
//   - vcell_cell_deferred_unsubscribes_total: cancellations issued mid-pass
type Metrics struct {
	passes       *prometheus.CounterVec
	notified     *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	rejected     *prometheus.CounterVec
	subscribers  *prometheus.GaugeVec
	deferred     *prometheus.CounterVec
}

// Prometheus creates a metrics observer. Each call registers a fresh set
// of collectors, so use one per registry.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	labels := []string{"cell"}

	return &Metrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of notification passes",
			ConstLabels: config.ConstLabels,
		}, labels),

		notified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of observer invocations during passes",
			ConstLabels: config.ConstLabels,
		}, labels),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Write plus notification pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, labels),

		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rejected_writes_total",
			Help:        "Total number of writes refused because the cell was busy",
			ConstLabels: config.ConstLabels,
		}, labels),

		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscribers",
			Help:        "Number of live observers",
			ConstLabels: config.ConstLabels,
		}, labels),

		deferred: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deferred_unsubscribes_total",
			Help:        "Total number of cancellations issued during a notification pass",
			ConstLabels: config.ConstLabels,
		}, labels),
	}
}

// BeginPass implements signal.Observer.
func (m *Metrics) BeginPass(cell string) func(int) {
	cell = cellLabel(cell)
	start := time.Now()
	return func(notified int) {
		m.passDuration.WithLabelValues(cell).Observe(time.Since(start).Seconds())
		m.passes.WithLabelValues(cell).Inc()
		m.notified.WithLabelValues(cell).Add(float64(notified))
	}
}

// Subscribed implements signal.Observer.
func (m *Metrics) Subscribed(cell string, _ signal.ID, _ bool) {
	m.subscribers.WithLabelValues(cellLabel(cell)).Inc()
}

// Unsubscribed implements signal.Observer.
func (m *Metrics) Unsubscribed(cell string, _ signal.ID, deferred bool) {
	cell = cellLabel(cell)
	m.subscribers.WithLabelValues(cell).Dec()
	if deferred {
		m.deferred.WithLabelValues(cell).Inc()
	}
}

// Rejected implements signal.Observer.
func (m *Metrics) Rejected(cell string, _ error) {
	m.rejected.WithLabelValues(cellLabel(cell)).Inc()
}

// cellLabel keeps anonymous cells from producing an empty label value.
func cellLabel(cell string) string {
	if cell == "" {
		return "anonymous"
	}
	return cell
}
