package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	mferrors "github.com/vnykmshr/metricflow/pkg/common/errors"
)

// ServerConfig holds configuration for the metrics HTTP endpoint.
type ServerConfig struct {
	// Port is the TCP port to bind.
	Port int

	// Path is the scrape path. Defaults to "/metrics".
	Path string

	// Registry is the registry to expose. Defaults to Default.
	Registry *Registry

	// Logger receives the startup line and server errors. Defaults to a
	// no-op logger.
	Logger *zap.Logger
}

// Handler returns an HTTP handler serving the registry contents in the
// Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// StartServer launches the metrics endpoint in a background goroutine and
// returns immediately. The server has no other routes, no authentication and
// no graceful shutdown; it runs until process exit.
func StartServer(cfg ServerConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return mferrors.NewValidationError("metrics", "Port", cfg.Port, "must be a valid TCP port").
			WithHint("use a port between 1 and 65535")
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	if cfg.Registry == nil {
		cfg.Registry = Default
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, cfg.Registry.Handler())

	cfg.Logger.Info(fmt.Sprintf("Starting metrics server at http://localhost:%d/", cfg.Port))

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), mux); err != nil {
			cfg.Logger.Error("metrics server exited", zap.Error(err))
		}
	}()

	return nil
}
