/*
Package streaming groups the streaming components of metricflow.

  - stream: lazy Stream[T] pipeline with filtering, mapping, the periodic
    tap (PeekEvery) and cross-type combinators

Rate instrumentation over streams lives in pkg/ratelog, which builds on the
stream package.
*/
package streaming
