// Package metrics owns the process-wide Prometheus registry gatefix's
// ambient metrics are registered against, grounded on the teacher's
// pkg/metrics package (InitRegistry/IsEnabled/GetRegistry gate every
// constructor so a disabled Engine pays zero metrics overhead).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide registry. Call once at startup
// before any New*Metrics constructor.
func InitRegistry() {
	registry = prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	enabled = true
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool { return enabled }

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry { return registry }

// Handler returns the HTTP handler pkg/api's /metrics route serves, or nil
// if metrics are disabled.
func Handler() http.Handler {
	if !enabled {
		return nil
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Reset tears down the registry. Exercised by tests that need a clean
// registry between cases (promauto panics on duplicate registration).
func Reset() {
	registry = nil
	enabled = false
}
