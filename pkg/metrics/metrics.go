// Package metrics provides a typed facade over Prometheus registration and
// mutation for metricflow components.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	mferrors "github.com/vnykmshr/metricflow/pkg/common/errors"
	"github.com/vnykmshr/metricflow/pkg/common/validation"
)

// ErrNegativeDelta is returned when a counter is asked to decrease.
var ErrNegativeDelta = errors.New("counter cannot decrease")

// Counter is an opaque handle to a registered monotonic counter. Handles are
// created once via Registry and live for the process lifetime; they are safe
// for concurrent use.
type Counter struct {
	name string
	c    prometheus.Counter
}

// Add increments the counter by delta. A negative delta is rejected with an
// error instead of panicking the way a raw Prometheus counter would.
func (c *Counter) Add(delta float64) error {
	if delta < 0 {
		return mferrors.NewOperationError("metrics", "Add", ErrNegativeDelta).
			WithContext(fmt.Sprintf("counter %s, delta %g", c.name, delta))
	}
	c.c.Add(delta)
	return nil
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	c.c.Inc()
}

// Name returns the name the counter was registered under.
func (c *Counter) Name() string {
	return c.name
}

// Value reads back the current counter value. Intended for tests and
// diagnostics; scraping goes through the registry's HTTP handler.
func (c *Counter) Value() float64 {
	var m dto.Metric
	if err := c.c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Gauge is an opaque handle to a registered gauge. Handles are created once
// via Registry and live for the process lifetime; they are safe for
// concurrent use.
type Gauge struct {
	name string
	g    prometheus.Gauge
}

// Set replaces the gauge value.
func (g *Gauge) Set(value float64) {
	g.g.Set(value)
}

// Inc increments the gauge by one.
func (g *Gauge) Inc() {
	g.g.Inc()
}

// Dec decrements the gauge by one.
func (g *Gauge) Dec() {
	g.g.Dec()
}

// Add adds delta to the gauge. Deltas may be negative.
func (g *Gauge) Add(delta float64) {
	g.g.Add(delta)
}

// Name returns the name the gauge was registered under.
func (g *Gauge) Name() string {
	return g.name
}

// Value reads back the current gauge value.
func (g *Gauge) Value() float64 {
	var m dto.Metric
	if err := g.g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// Registry wraps a Prometheus registry and hands out typed metric handles.
type Registry struct {
	namespace string
	labels    prometheus.Labels
	reg       *prometheus.Registry
}

// Default is the registry used when no explicit registry is configured.
var Default = NewRegistry(DefaultConfig())

// NewRegistry creates a registry backed by a fresh Prometheus registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		namespace: cfg.Namespace,
		labels:    cfg.Labels,
		reg:       prometheus.NewRegistry(),
	}
}

// Counter registers a new counter under name and returns its handle.
// Registering a second metric under an already-used name fails; the registry
// error is propagated, not masked.
func (r *Registry) Counter(name, help string) (*Counter, error) {
	if err := validation.ValidateNotEmpty("metrics", "name", name); err != nil {
		return nil, err
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   r.namespace,
		Name:        name,
		Help:        help,
		ConstLabels: r.labels,
	})
	if err := r.reg.Register(c); err != nil {
		return nil, mferrors.NewOperationError("metrics", "Counter", err).WithContext(name)
	}
	return &Counter{name: name, c: c}, nil
}

// Gauge registers a new gauge under name and returns its handle.
func (r *Registry) Gauge(name, help string) (*Gauge, error) {
	if err := validation.ValidateNotEmpty("metrics", "name", name); err != nil {
		return nil, err
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   r.namespace,
		Name:        name,
		Help:        help,
		ConstLabels: r.labels,
	})
	if err := r.reg.Register(g); err != nil {
		return nil, mferrors.NewOperationError("metrics", "Gauge", err).WithContext(name)
	}
	return &Gauge{name: name, g: g}, nil
}

// CounterVec registers a labeled family of counters.
func (r *Registry) CounterVec(name, help string, labelNames ...string) (*CounterVec, error) {
	if err := validation.ValidateNotEmpty("metrics", "name", name); err != nil {
		return nil, err
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   r.namespace,
		Name:        name,
		Help:        help,
		ConstLabels: r.labels,
	}, labelNames)
	if err := r.reg.Register(vec); err != nil {
		return nil, mferrors.NewOperationError("metrics", "CounterVec", err).WithContext(name)
	}
	return &CounterVec{name: name, vec: vec}, nil
}

// GaugeVec registers a labeled family of gauges.
func (r *Registry) GaugeVec(name, help string, labelNames ...string) (*GaugeVec, error) {
	if err := validation.ValidateNotEmpty("metrics", "name", name); err != nil {
		return nil, err
	}
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   r.namespace,
		Name:        name,
		Help:        help,
		ConstLabels: r.labels,
	}, labelNames)
	if err := r.reg.Register(vec); err != nil {
		return nil, mferrors.NewOperationError("metrics", "GaugeVec", err).WithContext(name)
	}
	return &GaugeVec{name: name, vec: vec}, nil
}

// Gatherer exposes the underlying registry for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// CounterVec is a labeled family of counters sharing one name.
type CounterVec struct {
	name string
	vec  *prometheus.CounterVec
}

// With returns the counter handle for the given label values, creating it on
// first use. The label value count must match the registered label names.
func (v *CounterVec) With(labelValues ...string) (*Counter, error) {
	c, err := v.vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return nil, mferrors.NewOperationError("metrics", "With", err).WithContext(v.name)
	}
	return &Counter{name: v.name, c: c}, nil
}

// GaugeVec is a labeled family of gauges sharing one name.
type GaugeVec struct {
	name string
	vec  *prometheus.GaugeVec
}

// With returns the gauge handle for the given label values, creating it on
// first use.
func (v *GaugeVec) With(labelValues ...string) (*Gauge, error) {
	g, err := v.vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return nil, mferrors.NewOperationError("metrics", "With", err).WithContext(v.name)
	}
	return &Gauge{name: v.name, g: g}, nil
}
