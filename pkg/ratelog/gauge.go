package ratelog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/metricflow/pkg/streaming/stream"
)

// WithRateGauge returns a stream that mirrors s while reporting the observed
// element rate through r on a wall-clock timer. The timer starts when the
// first element is consumed and every r.Interval() thereafter records the
// number of elements seen since the previous tick.
//
// The returned stream never terminates on its own: the timer is independent
// of the input's termination, so after s is exhausted the stream keeps the
// timer alive and blocks until the consumer closes it or its context ends.
// Wrap finite sources with FiniteWithRateGauge instead.
func WithRateGauge[T any](r *RateLogger, s stream.Stream[T]) stream.Stream[T] {
	g := newRateGauge(r)
	counted := s.Peek(func(T) {
		g.startOnce.Do(g.start)
		g.seen.Add(1)
	})
	return stream.Concat(counted, stream.New[T](&sustainSource[T]{gauge: g}))
}

// mark wraps an element so that end-of-input can travel through the infinite
// rate-gauge wrapper as an ordinary value.
type mark[T any] struct {
	value T
	ok    bool
}

// FiniteWithRateGauge adapts WithRateGauge to finite sources: the result
// yields exactly the elements of s in order and terminates when s does,
// while rate observations are reported for the duration of consumption.
// If s is infinite, so is the result.
func FiniteWithRateGauge[T any](r *RateLogger, s stream.Stream[T]) stream.Stream[T] {
	wrapped := stream.Transform(s, func(v T) mark[T] {
		return mark[T]{value: v, ok: true}
	})
	sentinel := stream.Of(mark[T]{})

	gauged := WithRateGauge(r, stream.Concat(wrapped, sentinel))

	finite := gauged.TakeWhile(func(m mark[T]) bool { return m.ok })
	return stream.Transform(finite, func(m mark[T]) T { return m.value })
}

// rateGauge owns the timer and the count of elements seen since the last tick.
type rateGauge struct {
	r         *RateLogger
	seen      atomic.Int64
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func newRateGauge(r *RateLogger) *rateGauge {
	return &rateGauge{r: r, done: make(chan struct{})}
}

func (g *rateGauge) start() {
	go g.loop()
}

func (g *rateGauge) stop() {
	g.stopOnce.Do(func() { close(g.done) })
}

func (g *rateGauge) loop() {
	ticker := time.NewTicker(g.r.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			g.r.record(g.seen.Swap(0))
		}
	}
}

// sustainSource emits nothing and never reports end-of-stream on its own;
// closing it stops the gauge timer. Appended after a counted stream it keeps
// the rate gauge alive past the input's termination.
type sustainSource[T any] struct {
	gauge *rateGauge
}

func (s *sustainSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case <-s.gauge.done:
		return zero, false, nil
	}
}

func (s *sustainSource[T]) Close() error {
	s.gauge.stop()
	return nil
}
