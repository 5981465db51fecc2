package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds configuration for a metrics registry.
type Config struct {
	// Namespace is prefixed to every metric name registered through the
	// registry. Empty means no prefix.
	Namespace string

	// Labels are constant labels added to all metrics.
	Labels prometheus.Labels
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{
		Namespace: "metricflow",
		Labels:    nil,
	}
}
