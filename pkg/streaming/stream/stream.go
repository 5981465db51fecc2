package stream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStreamClosed is returned when attempting to operate on a closed stream.
var ErrStreamClosed = errors.New("stream is closed")

// stageBuffer is the channel capacity between pipeline stages.
const stageBuffer = 64

// Stream represents a lazy sequence of elements. Intermediate operations
// return new streams; nothing is consumed from the source until a terminal
// operation runs. Output order always equals input order.
type Stream[T any] interface {
	// Intermediate operations (lazy, return new Stream)

	// Filter keeps the elements matching the predicate.
	Filter(predicate func(T) bool) Stream[T]

	// Map replaces each element with the result of applying mapper to it.
	Map(mapper func(T) T) Stream[T]

	// Peek invokes action on every element as it passes through, leaving
	// the stream unchanged.
	Peek(action func(T)) Stream[T]

	// PeekEvery invokes action on every interval-th element (elements
	// interval, 2*interval, ... counted from stream start), passing all
	// elements through unchanged and in order. The action for a given
	// element runs before that element is forwarded downstream. An action
	// error fails the stream. A non-positive interval is invalid
	// configuration and fails the stream on first execution.
	PeekEvery(interval int64, action func(T) error) Stream[T]

	// TakeWhile forwards elements until the predicate first returns false;
	// the failing element is not forwarded and the stream ends there.
	TakeWhile(predicate func(T) bool) Stream[T]

	// Skip drops the first n elements.
	Skip(n int64) Stream[T]

	// Limit truncates the stream to at most maxSize elements.
	Limit(maxSize int64) Stream[T]

	// Terminal operations (eager, consume the stream)

	// ForEach invokes action on every element.
	ForEach(ctx context.Context, action func(T)) error

	// ToSlice collects all elements into a slice.
	ToSlice(ctx context.Context) ([]T, error)

	// Count returns the number of elements.
	Count(ctx context.Context) (int64, error)

	// Stream control

	// Close closes the stream and releases resources.
	Close() error

	// IsClosed reports whether the stream is closed.
	IsClosed() bool

	// run starts the pipeline and returns its output channel. Restricting
	// implementations to this package keeps cross-stream combinators
	// (Transform, Concat) able to compose full pipelines.
	run(ctx context.Context) (<-chan element[T], error)
}

// Source represents a data source for streams.
type Source[T any] interface {
	// Next returns the next element and true, or the zero value and false
	// once the source is exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases the source's resources.
	Close() error
}

// element carries a value through the pipeline, or an error, or the
// end-of-stream marker.
type element[T any] struct {
	value T
	err   error
	end   bool
}

// stream is the default implementation of Stream.
type stream[T any] struct {
	source    Source[T]
	pipeline  []operation[T]
	closed    atomic.Bool
	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// operation is one pipeline stage. apply owns error emission on its output
// channel; the returned error is for the stage's own unwinding only.
type operation[T any] interface {
	apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error
}

// New creates a Stream reading from source.
func New[T any](source Source[T]) Stream[T] {
	return &stream[T]{source: source}
}

// FromSlice creates a Stream over the elements of slice.
func FromSlice[T any](slice []T) Stream[T] {
	return New[T](&sliceSource[T]{slice: slice})
}

// Of creates a Stream over the given values.
func Of[T any](values ...T) Stream[T] {
	return FromSlice(values)
}

// FromChannel creates a Stream reading from ch until it is closed.
func FromChannel[T any](ch <-chan T) Stream[T] {
	return New[T](&channelSource[T]{ch: ch})
}

// Generate creates an infinite Stream from a generator function.
func Generate[T any](generator func() T) Stream[T] {
	return New[T](&generatorSource[T]{generator: generator})
}

// Empty creates a Stream with no elements.
func Empty[T any]() Stream[T] {
	return New[T](&emptySource[T]{})
}

// with clones the stream and appends one pipeline stage.
func (s *stream[T]) with(op operation[T]) Stream[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &stream[T]{
		source:   s.source,
		pipeline: make([]operation[T], len(s.pipeline), len(s.pipeline)+1),
	}
	copy(next.pipeline, s.pipeline)
	next.pipeline = append(next.pipeline, op)
	return next
}

func (s *stream[T]) Filter(predicate func(T) bool) Stream[T] {
	return s.with(&filterOperation[T]{predicate: predicate})
}

func (s *stream[T]) Map(mapper func(T) T) Stream[T] {
	return s.with(&mapOperation[T]{mapper: mapper})
}

func (s *stream[T]) Peek(action func(T)) Stream[T] {
	return s.with(&peekOperation[T]{action: action})
}

func (s *stream[T]) PeekEvery(interval int64, action func(T) error) Stream[T] {
	return s.with(&peekEveryOperation[T]{interval: interval, action: action})
}

func (s *stream[T]) TakeWhile(predicate func(T) bool) Stream[T] {
	return s.with(&takeWhileOperation[T]{predicate: predicate})
}

func (s *stream[T]) Skip(n int64) Stream[T] {
	return s.with(&skipOperation[T]{count: n})
}

func (s *stream[T]) Limit(maxSize int64) Stream[T] {
	return s.with(&limitOperation[T]{maxSize: maxSize})
}

// consume drives the pipeline, calling visit for each element until the
// stream ends or visit returns false. The stream is closed afterwards.
func (s *stream[T]) consume(ctx context.Context, visit func(T) bool) error {
	if s.IsClosed() {
		return ErrStreamClosed
	}

	defer func() { _ = s.Close() }()

	ch, err := s.run(ctx)
	if err != nil {
		return err
	}

	for e := range ch {
		if e.err != nil {
			return e.err
		}
		if e.end {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !visit(e.value) {
			return nil
		}
	}

	return nil
}

func (s *stream[T]) ForEach(ctx context.Context, action func(T)) error {
	return s.consume(ctx, func(v T) bool {
		action(v)
		return true
	})
}

func (s *stream[T]) ToSlice(ctx context.Context) ([]T, error) {
	var result []T
	err := s.consume(ctx, func(v T) bool {
		result = append(result, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *stream[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.consume(ctx, func(T) bool {
		count++
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *stream[T]) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
	s.mu.Unlock()

	if s.source != nil {
		return s.source.Close()
	}
	return nil
}

func (s *stream[T]) IsClosed() bool {
	return s.closed.Load()
}

// run starts the source goroutine and one goroutine per pipeline stage,
// wired together with buffered channels, and returns the final stage's
// output.
func (s *stream[T]) run(ctx context.Context) (<-chan element[T], error) {
	if s.IsClosed() {
		return nil, ErrStreamClosed
	}

	// Close() cancels this context so pipeline goroutines terminate even
	// when the caller's context stays live.
	closeCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.cancelRun = cancel
	s.mu.Unlock()

	sourceCh := make(chan element[T], stageBuffer)

	go func() {
		defer close(sourceCh)

		for {
			select {
			case <-ctx.Done():
				sourceCh <- element[T]{err: ctx.Err()}
				return
			case <-closeCtx.Done():
				return
			default:
			}

			value, hasMore, err := s.source.Next(ctx)
			if err != nil {
				select {
				case <-closeCtx.Done():
					return
				default:
				}
				sourceCh <- element[T]{err: err}
				return
			}
			if !hasMore {
				sourceCh <- element[T]{end: true}
				return
			}

			select {
			case sourceCh <- element[T]{value: value}:
			case <-ctx.Done():
				sourceCh <- element[T]{err: ctx.Err()}
				return
			case <-closeCtx.Done():
				return
			}
		}
	}()

	current := (<-chan element[T])(sourceCh)

	for _, op := range s.pipeline {
		next := make(chan element[T], stageBuffer)

		go func(op operation[T], input <-chan element[T], output chan<- element[T]) {
			defer close(output)
			_ = op.apply(ctx, input, output)
		}(op, current, next)

		current = next
	}

	return current, nil
}
