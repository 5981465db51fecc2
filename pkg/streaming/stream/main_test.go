package stream

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
//
// Stage goroutines for infinite sources can linger briefly after Close()
// while blocked on a send; closeCtx cancellation reaches them on the next
// scheduler pass. Those stages are ignored here, matching the early
// termination behavior of Limit and TakeWhile over Generate.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/vnykmshr/metricflow/pkg/streaming/stream.(*mapOperation[...]).apply"),
		goleak.IgnoreTopFunction("github.com/vnykmshr/metricflow/pkg/streaming/stream.(*filterOperation[...]).apply"),
		goleak.IgnoreTopFunction("github.com/vnykmshr/metricflow/pkg/streaming/stream.(*stream[...]).run.func1"),
	)
}
