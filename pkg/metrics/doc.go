/*
Package metrics provides typed counter and gauge handles over a Prometheus
registry, plus an HTTP endpoint serving the registry in the standard text
exposition format.

Handles are registered once at startup and reused for the process lifetime:

	reg := metrics.NewRegistry(metrics.DefaultConfig())

	events, err := reg.Counter("events_total", "Total events processed")
	if err != nil {
		log.Fatal(err)
	}

	rate, err := reg.Gauge("event_rate", "Events per second")
	if err != nil {
		log.Fatal(err)
	}

	_ = events.Add(10)
	rate.Set(5.0)

Labeled families work the same way, resolving a handle per label set:

	requests, _ := reg.CounterVec("requests_total", "Requests by outcome", "outcome")
	ok, _ := requests.With("success")
	ok.Inc()

Counters reject negative deltas with an error instead of panicking, so rate
update code can surface the failure and keep going.

The registry is exposed over HTTP with StartServer, which runs in the
background until process exit:

	err := metrics.StartServer(metrics.ServerConfig{Port: 9090, Registry: reg})
*/
package metrics
