// Package metrics exposes roster command counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
	OutcomeNoop      = "noop"
	OutcomeError     = "error"
)

// Metrics owns a private registry so tests and multiple controllers do not
// collide on the default one. A nil *Metrics records nothing.
type Metrics struct {
	registry   *prometheus.Registry
	commands   *prometheus.CounterVec
	rosterSize prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster",
			Name:      "commands_total",
			Help:      "Roster commands handled, by command and outcome.",
		}, []string{"command", "outcome"}),
		rosterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roster",
			Name:      "students",
			Help:      "Number of students currently in the roster.",
		}),
	}
	reg.MustRegister(m.commands, m.rosterSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) SetRosterSize(n int) {
	if m == nil {
		return
	}
	m.rosterSize.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Commands is exposed for tests.
func (m *Metrics) Commands() *prometheus.CounterVec {
	return m.commands
}

func (m *Metrics) RosterSize() prometheus.Gauge {
	return m.rosterSize
}
