// Package metrics exposes catboxd's runtime counters, per SPEC_FULL.md
// Component I. Prometheus is already a dependency shared by more than one
// repo in the example pack, which made it the natural pick over rolling a
// bespoke counter type.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink is the counters a Server reports into. It's an interface so tests
// can substitute Noop, which records nothing, without standing up a real
// registry.
type Sink interface {
	IncConnections()
	DecConnections()
	IncCommands(command string)
}

// Noop discards every observation. It's the default Sink when no
// -metrics-addr flag is given.
type Noop struct{}

func (Noop) IncConnections()          {}
func (Noop) DecConnections()          {}
func (Noop) IncCommands(string)       {}

// Prometheus is a Sink backed by client_golang collectors, served over
// HTTP at /metrics.
type Prometheus struct {
	connections prometheus.Gauge
	commands    *prometheus.CounterVec
}

// NewPrometheus registers catboxd's collectors against a fresh registry and
// returns a Sink plus the http.Handler to mount at /metrics.
func NewPrometheus() (*Prometheus, http.Handler) {
	reg := prometheus.NewRegistry()

	p := &Prometheus{
		connections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "catboxd",
			Name:      "connections",
			Help:      "Number of currently connected clients.",
		}),
		commands: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "catboxd",
			Name:      "commands_total",
			Help:      "Number of commands processed, by command name.",
		}, []string{"command"}),
	}

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return p, handler
}

func (p *Prometheus) IncConnections() { p.connections.Inc() }
func (p *Prometheus) DecConnections() { p.connections.Dec() }
func (p *Prometheus) IncCommands(command string) {
	p.commands.WithLabelValues(command).Inc()
}

// Serve starts an HTTP server exposing the /metrics endpoint at addr. It
// blocks; call it in its own goroutine. It touches nothing the poll loop
// owns — the registry and counters are safe for concurrent use by design.
func Serve(addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	return http.ListenAndServe(addr, mux)
}
