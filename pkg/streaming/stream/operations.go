package stream

import (
	"context"

	"github.com/vnykmshr/metricflow/pkg/common/validation"
)

// forward sends e downstream, aborting when ctx is done.
func forward[T any](ctx context.Context, output chan<- element[T], e element[T]) error {
	select {
	case output <- e:
		return nil
	case <-ctx.Done():
		output <- element[T]{err: ctx.Err()}
		return ctx.Err()
	}
}

// filterOperation keeps elements matching a predicate.
type filterOperation[T any] struct {
	predicate func(T) bool
}

func (f *filterOperation[T]) apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error {
	for e := range input {
		if e.err != nil || e.end {
			output <- e
			if e.end {
				break
			}
			continue
		}

		if f.predicate(e.value) {
			if err := forward(ctx, output, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// mapOperation replaces elements using a mapper function.
type mapOperation[T any] struct {
	mapper func(T) T
}

func (m *mapOperation[T]) apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error {
	for e := range input {
		if e.err != nil || e.end {
			output <- e
			if e.end {
				break
			}
			continue
		}

		if err := forward(ctx, output, element[T]{value: m.mapper(e.value)}); err != nil {
			return err
		}
	}
	return nil
}

// peekOperation performs an action on each element without modifying the stream.
type peekOperation[T any] struct {
	action func(T)
}

func (p *peekOperation[T]) apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error {
	for e := range input {
		if e.err != nil || e.end {
			output <- e
			if e.end {
				break
			}
			continue
		}

		p.action(e.value)

		if err := forward(ctx, output, e); err != nil {
			return err
		}
	}
	return nil
}

// peekEveryOperation performs an action on every interval-th element. The
// countdown is private to one run; the action for element k*interval fires
// before that element is forwarded.
type peekEveryOperation[T any] struct {
	interval  int64
	action    func(T) error
	countdown int64
}

func (p *peekEveryOperation[T]) apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error {
	if err := validation.ValidatePositive("stream", "interval", p.interval); err != nil {
		output <- element[T]{err: err}
		return err
	}

	p.countdown = p.interval
	for e := range input {
		if e.err != nil || e.end {
			output <- e
			if e.end {
				break
			}
			continue
		}

		p.countdown--
		if p.countdown == 0 {
			if err := p.action(e.value); err != nil {
				output <- element[T]{err: err}
				return err
			}
			p.countdown = p.interval
		}

		if err := forward(ctx, output, e); err != nil {
			return err
		}
	}
	return nil
}

// takeWhileOperation forwards elements until the predicate first fails. The
// failing element is consumed but not forwarded.
type takeWhileOperation[T any] struct {
	predicate func(T) bool
}

func (t *takeWhileOperation[T]) apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error {
	for e := range input {
		if e.err != nil || e.end {
			output <- e
			if e.end {
				break
			}
			continue
		}

		if !t.predicate(e.value) {
			output <- element[T]{end: true}
			break
		}

		if err := forward(ctx, output, e); err != nil {
			return err
		}
	}
	return nil
}

// skipOperation drops the first n elements.
type skipOperation[T any] struct {
	count   int64
	skipped int64
}

func (s *skipOperation[T]) apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error {
	for e := range input {
		if e.err != nil || e.end {
			output <- e
			if e.end {
				break
			}
			continue
		}

		if s.skipped < s.count {
			s.skipped++
			continue
		}

		if err := forward(ctx, output, e); err != nil {
			return err
		}
	}
	return nil
}

// limitOperation truncates the stream to maxSize elements.
type limitOperation[T any] struct {
	maxSize int64
	seen    int64
}

func (l *limitOperation[T]) apply(ctx context.Context, input <-chan element[T], output chan<- element[T]) error {
	if l.maxSize <= 0 {
		output <- element[T]{end: true}
		return nil
	}

	for e := range input {
		if e.err != nil || e.end {
			output <- e
			if e.end {
				break
			}
			continue
		}

		if err := forward(ctx, output, e); err != nil {
			return err
		}

		l.seen++
		if l.seen == l.maxSize {
			output <- element[T]{end: true}
			break
		}
	}
	return nil
}
