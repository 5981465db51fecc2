package ratelog

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/metricflow/internal/testutil"
	"github.com/vnykmshr/metricflow/pkg/metrics"
)

func TestNewWatcherValidation(t *testing.T) {
	r := quietLogger(t, 1, MetricDetails{})

	_, err := NewWatcher(nil, func() int64 { return 0 })
	testutil.AssertError(t, err)

	_, err = NewWatcher(r, nil)
	testutil.AssertError(t, err)

	// Sub-second intervals cannot be scheduled on the cron clock
	subSecond := quietLogger(t, 0.05, MetricDetails{})
	_, err = NewWatcher(subSecond, func() int64 { return 0 })
	testutil.AssertError(t, err)
}

func TestWatcherRecordsDelta(t *testing.T) {
	reg := metrics.NewRegistry(metrics.Config{Namespace: "test"})
	counter, err := reg.Counter("events_total", "Total events")
	testutil.AssertNoError(t, err)
	gauge, err := reg.Gauge("event_rate", "Events per second")
	testutil.AssertNoError(t, err)

	r := quietLogger(t, 1, MetricDetails{
		Counters: []CounterUpdate{{Counter: counter}},
		Gauges:   []GaugeUpdate{{Gauge: gauge}},
	})

	var total atomic.Int64
	w, err := NewWatcher(r, total.Load)
	testutil.AssertNoError(t, err)

	total.Store(5)
	w.Start()
	defer w.Stop()

	// Tick activations align to second boundaries, so the first tick can
	// fire almost immediately or nearly a full interval later. Poll for
	// the delta instead of assuming a tick schedule.
	deadline := time.Now().Add(3 * time.Second)
	for counter.Value() != 5.0 || gauge.Value() != 5.0 {
		if time.Now().After(deadline) {
			t.Fatalf("counter=%v gauge=%v, want both 5", counter.Value(), gauge.Value())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcherSkipsBackwardsTotal(t *testing.T) {
	reg := metrics.NewRegistry(metrics.Config{Namespace: "test"})
	counter, err := reg.Counter("events_total", "Total events")
	testutil.AssertNoError(t, err)

	r := quietLogger(t, 1, MetricDetails{
		Counters: []CounterUpdate{{Counter: counter}},
	})

	var total atomic.Int64
	total.Store(10)

	w, err := NewWatcher(r, total.Load)
	testutil.AssertNoError(t, err)

	w.Start()
	total.Store(3) // total moved backwards, e.g. an upstream reset

	// Long enough for at least one tick after the store, wherever the
	// second boundaries fall
	time.Sleep(2200 * time.Millisecond)
	w.Stop()

	// The negative delta is skipped rather than reported
	testutil.AssertEqual(t, counter.Value(), 0.0)
}
