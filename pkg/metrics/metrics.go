// Package metrics exposes machine lifecycle activity as Prometheus metrics.
package metrics

import (
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tinyfsm"

// Collector counts lifecycle events. Register it with a prometheus.Registerer
// and pass Hooks to the machines or manager being observed.
type Collector struct {
	stateEntries *prometheus.CounterVec
	stateExits   *prometheus.CounterVec
	terminations prometheus.Counter
	created      prometheus.Counter
	destroyed    prometheus.Counter
	active       prometheus.Gauge
}

var _ prometheus.Collector = (*Collector)(nil)

// New creates a Collector.
func New() *Collector {
	return &Collector{
		stateEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_entries_total",
			Help:      "Total number of state entries.",
		}, []string{"state"}),
		stateExits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_exits_total",
			Help:      "Total number of state exits.",
		}, []string{"state"}),
		terminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machine_terminations_total",
			Help:      "Total number of machines that ran their termination callbacks.",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machines_created_total",
			Help:      "Total number of machines created by a manager.",
		}),
		destroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machines_destroyed_total",
			Help:      "Total number of machines deleted from a manager.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "machines_active",
			Help:      "Number of machines currently bound to an identifier.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.stateEntries.Describe(ch)
	c.stateExits.Describe(ch)
	c.terminations.Describe(ch)
	c.created.Describe(ch)
	c.destroyed.Describe(ch)
	c.active.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.stateEntries.Collect(ch)
	c.stateExits.Collect(ch)
	c.terminations.Collect(ch)
	c.created.Collect(ch)
	c.destroyed.Collect(ch)
	c.active.Collect(ch)
}

// Hooks returns lifecycle hooks that update the collector.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(e *domain.StateEvent) {
			c.stateEntries.WithLabelValues(e.State).Inc()
		},
		OnStateExit: func(e *domain.StateEvent) {
			c.stateExits.WithLabelValues(e.State).Inc()
		},
		OnMachineTerminate: func(*domain.MachineEvent) {
			c.terminations.Inc()
		},
		OnMachineCreate: func(*domain.MachineEvent) {
			c.created.Inc()
			c.active.Inc()
		},
		OnMachineDestroy: func(*domain.MachineEvent) {
			c.destroyed.Inc()
			c.active.Dec()
		},
	}
}
