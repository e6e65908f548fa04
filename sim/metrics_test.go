package sim

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.observeFlip(true)
	m.observeTemperature(1)
	m.observeResult(0.5)
	assert.Equal(t, 0.0, m.AcceptanceRatio())
}

func TestMetrics_AcceptanceRatio(t *testing.T) {
	m := NewMetrics(nil)
	assert.Equal(t, 0.0, m.AcceptanceRatio())
	m.observeFlip(true)
	m.observeFlip(false)
	m.observeFlip(false)
	m.observeFlip(true)
	assert.Equal(t, 0.5, m.AcceptanceRatio())
	assert.Equal(t, 2.0, promtest.ToFloat64(m.FlipsAccepted))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.FlipsRejected))
}

func TestMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.observeResult(0.25)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"pyrochlore_flips_accepted_total",
		"pyrochlore_flips_rejected_total",
		"pyrochlore_temperature",
		"pyrochlore_sweep_progress_ratio",
		"pyrochlore_sweep_results_total",
	}, names)
	assert.Equal(t, 0.25, promtest.ToFloat64(m.Progress))
}
