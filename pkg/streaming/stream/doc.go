/*
Package stream provides a lazy, context-aware Stream[T] pipeline for
processing sequences of data.

Streams are lazy (nothing runs until a terminal operation), preserve element
order across every operation, and should be closed to release resources;
terminal operations close the stream for you.

Basic usage:

	s := stream.FromSlice([]int{1, 2, 3, 4, 5}).
		Filter(func(x int) bool { return x%2 == 1 }).
		Map(func(x int) int { return x * 10 })

	result, err := s.ToSlice(ctx) // [10, 30, 50]

Creation: FromSlice, FromChannel, Generate (infinite), Empty, or New with a
custom Source.

The periodic tap fires a side effect on every n-th element while passing all
elements through untouched, which is how pipelines feed sampled counts into
rate instrumentation:

	tapped := s.PeekEvery(1000, func(v Event) error {
		return rateLogger.Record(batchCount.Swap(0))
	})

Cross-type composition uses the package-level combinators Transform and
Concat, which consume a stream's full pipeline rather than just its source:

	lengths := stream.Transform(words, func(w string) int { return len(w) })
	all := stream.Concat(header, body)
*/
package stream
