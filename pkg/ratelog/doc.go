/*
Package ratelog turns accumulated event counts into events-per-second
observations, applied to metrics and log output.

A RateLogger is configured once per logging site and reused for every
sampling tick:

	logger, err := ratelog.New(ratelog.Config{
		Tag:          "ingest",
		Action:       "processed",
		Unit:         "records",
		IntervalSecs: 2,
		LogEnabled:   true,
		Metrics: ratelog.MetricDetails{
			Counters: []ratelog.CounterUpdate{{Counter: total}},
			Gauges:   []ratelog.GaugeUpdate{{Gauge: rate}},
		},
	}, zapLogger)

Each Record(sample) call adds the sample to the configured counters, sets the
configured gauges to sample/interval, and emits one line in the form

	ingest processed at the rate of 5 records/sec

Sampling can be driven three ways:

  - element-count ticks in a pipeline, via stream.PeekEvery
  - wall-clock ticks over a stream, via WithRateGauge / FiniteWithRateGauge
  - wall-clock ticks over any running total, via Watcher

WithRateGauge is deliberately infinite: its timer outlives the input, so the
wrapped stream never terminates on its own. FiniteWithRateGauge restores
termination for finite sources by tagging elements, appending one terminal
marker, cutting the stream at the marker, and unwrapping.
*/
package ratelog
