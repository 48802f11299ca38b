// Package metrics exports graph engine telemetry through Prometheus.
//
// Each Metrics value owns a private registry so several instances (tests,
// multiple sessions) never collide on the global default registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

const namespace = "neuralmap"

// Build outcome label values.
const (
	OutcomeSuccess    = "success"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
	OutcomeCancelled  = "cancelled"
	OutcomeError      = "error"
)

// Verify interface compliance.
var _ driven.BuildMetrics = (*Metrics)(nil)

// Metrics records build and simulation telemetry.
type Metrics struct {
	registry *prometheus.Registry

	buildDuration *prometheus.HistogramVec
	buildsTotal   *prometheus.CounterVec
	graphNodes    prometheus.Histogram
	superseded    prometheus.Counter
	ticksTotal    prometheus.Counter
	alpha         prometheus.Gauge
	simNodes      prometheus.Gauge
}

// New creates a Metrics instance with its own registry. Go runtime and
// process collectors are registered alongside the engine metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		buildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of graph builds by outcome.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),
		buildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "builds_total",
			Help:      "Graph builds by outcome.",
		}, []string{"outcome"}),
		graphNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "graph_nodes",
			Help:      "Node count of successfully built graphs.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		superseded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "superseded_total",
			Help:      "Builds whose result was discarded because a newer build was requested.",
		}),
		ticksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "ticks_total",
			Help:      "Simulation frames stepped.",
		}),
		alpha: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "alpha",
			Help:      "Alpha of the most recent simulation frame.",
		}),
		simNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "nodes",
			Help:      "Nodes in the most recent simulation frame.",
		}),
	}
}

// ObserveBuild records a finished build.
func (m *Metrics) ObserveBuild(elapsed time.Duration, stats domain.BuildStats, err error) {
	outcome := Outcome(err)
	m.buildsTotal.WithLabelValues(outcome).Inc()
	m.buildDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if err == nil {
		m.graphNodes.Observe(float64(stats.NodeCount))
	}
}

// BuildSuperseded records a discarded build result.
func (m *Metrics) BuildSuperseded() {
	m.superseded.Inc()
}

// ObserveTick records one simulation frame.
func (m *Metrics) ObserveTick(alpha float64, nodes int) {
	m.ticksTotal.Inc()
	m.alpha.Set(alpha)
	m.simNodes.Set(float64(nodes))
}

// Registry returns the registry holding these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Outcome maps a build error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrBuildSuperseded):
		return OutcomeSuperseded
	case errors.Is(err, domain.ErrBuildFailed):
		return OutcomeFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}

// Nop discards all telemetry.
type Nop struct{}

// Verify interface compliance.
var _ driven.BuildMetrics = Nop{}

// ObserveBuild does nothing.
func (Nop) ObserveBuild(time.Duration, domain.BuildStats, error) {}

// BuildSuperseded does nothing.
func (Nop) BuildSuperseded() {}

// ObserveTick does nothing.
func (Nop) ObserveTick(float64, int) {}
