/*
Package metricflow provides metrics instrumentation for streaming pipelines:
typed Prometheus counters and gauges, an HTTP exposition endpoint, and
rate-logging combinators that turn accumulated event counts into
events-per-second observations.

Metrics (pkg/metrics):
  - typed counter/gauge handles over a Prometheus registry
  - labeled vector variants
  - HTTP server exposing the registry in Prometheus text format

Rate logging (pkg/ratelog):
  - RateLogger: per-tick sample to counter/gauge/log-line updates
  - WithRateGauge / FiniteWithRateGauge: stream wrappers reporting element
    rates on a wall-clock timer
  - Watcher: cron-driven sampling of a running total
  - publish: mirror rate samples to a Redis channel

Streaming (pkg/streaming):
  - stream: generic lazy Stream[T] pipeline with the periodic tap (PeekEvery)
    and supporting combinators

Example usage:

	import (
		"github.com/vnykmshr/metricflow/pkg/metrics"
		"github.com/vnykmshr/metricflow/pkg/ratelog"
		"github.com/vnykmshr/metricflow/pkg/streaming/stream"
	)

	reg := metrics.NewRegistry(metrics.DefaultConfig())
	events, _ := reg.Counter("events_total", "Events processed")

	logger, _ := ratelog.New(ratelog.Config{
		Tag: "ingest", Action: "processed", Unit: "events",
		IntervalSecs: 2, LogEnabled: true,
		Metrics: ratelog.MetricDetails{
			Counters: []ratelog.CounterUpdate{{Counter: events}},
		},
	}, nil)

	s := ratelog.FiniteWithRateGauge(logger, stream.FromSlice(batch))
	_ = s.ForEach(ctx, handle)
*/
package metricflow
