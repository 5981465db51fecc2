package stream

import (
	"context"
)

// Transform returns a stream whose elements are the results of applying
// mapper to the elements of s. Unlike Map it can change the element type;
// s's pending operations are applied before the conversion, and closing the
// returned stream closes s.
func Transform[T, U any](s Stream[T], mapper func(T) U) Stream[U] {
	return New[U](&transformSource[T, U]{inner: s, mapper: mapper})
}

type transformSource[T, U any] struct {
	inner  Stream[T]
	mapper func(T) U
	ch     <-chan element[T]
}

func (t *transformSource[T, U]) Next(ctx context.Context) (U, bool, error) {
	var zero U

	if t.ch == nil {
		ch, err := t.inner.run(ctx)
		if err != nil {
			return zero, false, err
		}
		t.ch = ch
	}

	e, ok := <-t.ch
	if !ok || e.end {
		return zero, false, nil
	}
	if e.err != nil {
		return zero, false, e.err
	}
	return t.mapper(e.value), true, nil
}

func (t *transformSource[T, U]) Close() error {
	return t.inner.Close()
}

// Concat returns a stream yielding all elements of the given streams in
// order, each stream fully drained before the next starts. Closing the
// returned stream closes every input stream.
func Concat[T any](streams ...Stream[T]) Stream[T] {
	return New[T](&concatSource[T]{streams: streams})
}

type concatSource[T any] struct {
	streams []Stream[T]
	index   int
	ch      <-chan element[T]
}

func (c *concatSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	for {
		if c.ch == nil {
			if c.index >= len(c.streams) {
				return zero, false, nil
			}
			ch, err := c.streams[c.index].run(ctx)
			if err != nil {
				return zero, false, err
			}
			c.ch = ch
		}

		e, ok := <-c.ch
		if !ok || e.end {
			c.ch = nil
			c.index++
			continue
		}
		if e.err != nil {
			return zero, false, e.err
		}
		return e.value, true, nil
	}
}

func (c *concatSource[T]) Close() error {
	var firstErr error
	for _, s := range c.streams {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
