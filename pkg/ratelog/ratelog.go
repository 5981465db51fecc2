// Package ratelog converts periodically sampled event counts into per-second
// rates and applies them to metrics and log output.
package ratelog

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	mferrors "github.com/vnykmshr/metricflow/pkg/common/errors"
	"github.com/vnykmshr/metricflow/pkg/common/validation"
	"github.com/vnykmshr/metricflow/pkg/metrics"
)

// UpdateFn transforms a raw sample before it is used to update a metric or
// format a log line. A nil UpdateFn means identity.
type UpdateFn func(float64) float64

// CounterUpdate pairs a counter handle with an optional sample transform.
type CounterUpdate struct {
	Counter *metrics.Counter
	Update  UpdateFn
}

// GaugeUpdate pairs a gauge handle with an optional sample transform.
type GaugeUpdate struct {
	Gauge  *metrics.Gauge
	Update UpdateFn
}

// MetricDetails lists the metrics to touch on every sampling tick. Counters
// accumulate the transformed sample; gauges are set to the transformed sample
// divided by the interval. Entries are applied independently and order
// carries no meaning.
type MetricDetails struct {
	Counters []CounterUpdate
	Gauges   []GaugeUpdate
}

// Sample is one rate observation, as handed to a Publish hook.
type Sample struct {
	Label  string    `json:"label,omitempty"`
	Tag    string    `json:"tag"`
	Action string    `json:"action"`
	Unit   string    `json:"unit"`
	Count  int64     `json:"count"`
	Rate   float64   `json:"rate"`
	At     time.Time `json:"at"`
}

// Config describes one rate-logging site. Configs are plain values built once
// and reused for every tick; they have no equality or ordering semantics.
type Config struct {
	// Label names the logging site.
	Label string

	// Tag, Action and Unit are interpolated into the rate log line:
	// "{tag} {action} at the rate of {rate} {unit}/sec".
	Tag    string
	Action string
	Unit   string

	// IntervalSecs is the sampling interval in seconds, used as the rate
	// denominator. Must be positive.
	IntervalSecs float64

	// LogEnabled controls whether Record emits the rate log line.
	LogEnabled bool

	// LogUpdate transforms the sample before the logged rate is computed.
	// Nil means identity.
	LogUpdate UpdateFn

	// Metrics are the counters and gauges updated on every tick.
	Metrics MetricDetails

	// Publish, when set, receives one Sample per tick after the metric
	// updates. See the publish package for a Redis-backed implementation.
	Publish func(Sample)
}

// RateLogger applies rate observations from a fixed Config.
type RateLogger struct {
	cfg    Config
	logger *zap.Logger
}

// New validates cfg and creates a RateLogger. A nil logger disables log
// output regardless of cfg.LogEnabled.
func New(cfg Config, logger *zap.Logger) (*RateLogger, error) {
	// A zero interval would make the rate computation divide by zero, so
	// it is rejected here rather than at tick time.
	if err := validation.ValidatePositiveFloat("ratelog", "IntervalSecs", cfg.IntervalSecs); err != nil {
		return nil, err
	}
	for i, cu := range cfg.Metrics.Counters {
		if cu.Counter == nil {
			return nil, mferrors.NewValidationError("ratelog", fmt.Sprintf("Counters[%d]", i), nil, "handle cannot be nil")
		}
	}
	for i, gu := range cfg.Metrics.Gauges {
		if gu.Gauge == nil {
			return nil, mferrors.NewValidationError("ratelog", fmt.Sprintf("Gauges[%d]", i), nil, "handle cannot be nil")
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLogger{cfg: cfg, logger: logger}, nil
}

// Interval returns the sampling interval as a duration.
func (r *RateLogger) Interval() time.Duration {
	return time.Duration(r.cfg.IntervalSecs * float64(time.Second))
}

// Record applies one sampled count: each configured counter accumulates the
// transformed sample, each configured gauge is set to the transformed sample
// divided by the interval, and the rate log line is emitted if enabled.
//
// Updates are independent: a failing entry does not prevent the others from
// being attempted. Failures are aggregated and returned rather than
// swallowed; callers that cannot act on them should at least log them.
func (r *RateLogger) Record(sample int64) error {
	var errs *multierror.Error
	value := float64(sample)

	for _, cu := range r.cfg.Metrics.Counters {
		if err := cu.Counter.Add(apply(cu.Update, value)); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	for _, gu := range r.cfg.Metrics.Gauges {
		gu.Gauge.Set(apply(gu.Update, value) / r.cfg.IntervalSecs)
	}

	if r.cfg.LogEnabled {
		rate := apply(r.cfg.LogUpdate, value) / r.cfg.IntervalSecs
		r.logger.Info(fmt.Sprintf("%s %s at the rate of %v %s/sec",
			r.cfg.Tag, r.cfg.Action, rate, r.cfg.Unit))
	}

	if r.cfg.Publish != nil {
		r.cfg.Publish(Sample{
			Label:  r.cfg.Label,
			Tag:    r.cfg.Tag,
			Action: r.cfg.Action,
			Unit:   r.cfg.Unit,
			Count:  sample,
			Rate:   value / r.cfg.IntervalSecs,
			At:     time.Now(),
		})
	}

	return errs.ErrorOrNil()
}

// record is Record for call sites that cannot surface the error themselves,
// such as timer callbacks. Failures go to the logger.
func (r *RateLogger) record(sample int64) {
	if err := r.Record(sample); err != nil {
		r.logger.Warn("rate update failed", zap.Error(err))
	}
}

func apply(fn UpdateFn, v float64) float64 {
	if fn == nil {
		return v
	}
	return fn(v)
}
