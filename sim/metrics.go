// Tracks Metropolis acceptance and sweep progress as Prometheus collectors.

package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics exports engine counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FlipsAccepted prometheus.Counter // Metropolis steps that kept the flip
	FlipsRejected prometheus.Counter // Metropolis steps that undid the flip
	Temperature   prometheus.Gauge   // temperature currently being simulated
	Progress      prometheus.Gauge   // fraction of the sweep range completed
	Results       prometheus.Counter // results produced by sweeps
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which tests use to read values directly.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FlipsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyrochlore",
			Name:      "flips_accepted_total",
			Help:      "Metropolis steps whose spin flip was accepted.",
		}),
		FlipsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyrochlore",
			Name:      "flips_rejected_total",
			Help:      "Metropolis steps whose spin flip was rejected.",
		}),
		Temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pyrochlore",
			Name:      "temperature",
			Help:      "Temperature the lattice is currently simulated at.",
		}),
		Progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pyrochlore",
			Name:      "sweep_progress_ratio",
			Help:      "Fraction of the temperature range completed.",
		}),
		Results: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyrochlore",
			Name:      "sweep_results_total",
			Help:      "Per-temperature results produced.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FlipsAccepted, m.FlipsRejected, m.Temperature, m.Progress, m.Results)
	}
	return m
}

// AcceptanceRatio returns accepted / (accepted + rejected), or 0 before any step.
func (m *Metrics) AcceptanceRatio() float64 {
	if m == nil {
		return 0
	}
	accepted := counterValue(m.FlipsAccepted)
	total := accepted + counterValue(m.FlipsRejected)
	if total == 0 {
		return 0
	}
	return accepted / total
}

func (m *Metrics) observeFlip(accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.FlipsAccepted.Inc()
	} else {
		m.FlipsRejected.Inc()
	}
}

func (m *Metrics) observeTemperature(temp float64) {
	if m == nil {
		return
	}
	m.Temperature.Set(temp)
}

func (m *Metrics) observeResult(progress float64) {
	if m == nil {
		return
	}
	m.Results.Inc()
	m.Progress.Set(progress)
}

func counterValue(c prometheus.Counter) float64 {
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}
