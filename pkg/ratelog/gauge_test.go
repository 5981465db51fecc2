package ratelog

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vnykmshr/metricflow/internal/testutil"
	"github.com/vnykmshr/metricflow/pkg/metrics"
	"github.com/vnykmshr/metricflow/pkg/streaming/stream"
)

func quietLogger(t *testing.T, intervalSecs float64, details MetricDetails) *RateLogger {
	t.Helper()
	r, err := New(Config{IntervalSecs: intervalSecs, Metrics: details}, nil)
	testutil.AssertNoError(t, err)
	return r
}

func TestFiniteWithRateGaugePreservesElements(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	// Interval far longer than the test so no tick interferes
	r := quietLogger(t, 60, MetricDetails{})

	s := FiniteWithRateGauge(r, stream.FromSlice([]int{1, 2, 3, 4, 5}))

	result, err := s.ToSlice(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 5)
	for i, want := range []int{1, 2, 3, 4, 5} {
		testutil.AssertEqual(t, result[i], want)
	}
}

func TestFiniteWithRateGaugeEmpty(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	r := quietLogger(t, 60, MetricDetails{})

	s := FiniteWithRateGauge(r, stream.Empty[string]())

	result, err := s.ToSlice(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 0)
}

func TestFiniteWithRateGaugeReportsWhileConsuming(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	reg := metrics.NewRegistry(metrics.Config{Namespace: "test"})
	counter, err := reg.Counter("elements_total", "Elements observed")
	testutil.AssertNoError(t, err)

	r := quietLogger(t, 0.05, MetricDetails{
		Counters: []CounterUpdate{{Counter: counter}},
	})

	input := make([]int, 40)
	for i := range input {
		input[i] = i
	}

	s := FiniteWithRateGauge(r, stream.FromSlice(input))

	var seen int
	err = s.ForEach(ctx, func(int) {
		seen++
		time.Sleep(5 * time.Millisecond) // span several 50ms ticks
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, seen, 40)

	// Some ticks fired during consumption and accumulated element counts.
	// The exact total depends on tick alignment, so only bound it.
	if v := counter.Value(); v <= 0 || v > 41 {
		t.Errorf("counter value %v outside expected range (0, 41]", v)
	}
}

func TestRateGaugeStopsTickingAfterClose(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	core, logs := observer.New(zap.InfoLevel)
	r, err := New(Config{
		Tag:          "gauge",
		Action:       "ticked",
		Unit:         "elements",
		IntervalSecs: 0.05,
		LogEnabled:   true,
	}, zap.New(core))
	testutil.AssertNoError(t, err)

	s := FiniteWithRateGauge(r, stream.FromSlice([]int{1, 2, 3}))
	_, err = s.ToSlice(ctx)
	testutil.AssertNoError(t, err)

	// Consumption closed the stream and with it the gauge timer. Let any
	// tick already in flight at close time drain, then the log output must
	// stay frozen.
	time.Sleep(60 * time.Millisecond)
	before := logs.Len()
	time.Sleep(150 * time.Millisecond)
	testutil.AssertEqual(t, logs.Len(), before)
}

func TestWithRateGaugeDoesNotTerminate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	r := quietLogger(t, 60, MetricDetails{})

	s := WithRateGauge(r, stream.FromSlice([]int{1, 2, 3}))

	var seen []int
	err := s.ForEach(ctx, func(v int) { seen = append(seen, v) })

	// All elements arrive, then the stream outlives its input until the
	// context expires.
	testutil.AssertError(t, err)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	testutil.AssertEqual(t, len(seen), 3)
	testutil.AssertEqual(t, seen[0], 1)
	testutil.AssertEqual(t, seen[2], 3)
}

func TestWithRateGaugeInfiniteSourceKeepsFlowing(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	r := quietLogger(t, 60, MetricDetails{})

	counter := 0
	s := WithRateGauge(r, stream.Generate(func() int {
		counter++
		return counter
	})).Limit(100)

	result, err := s.ToSlice(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(result), 100)
	testutil.AssertEqual(t, result[99], 100)
}
