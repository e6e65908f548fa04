package sim

import (
	"context"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrochlore-sim/pyrochlore-sim/internal/testutil"
)

func newSmallEngine(t *testing.T, bounds SweepConfig, metrics *Metrics) *Engine {
	t.Helper()
	cfg := smallConfig()
	cfg.Sweep = bounds
	e, err := NewEngine(cfg, metrics)
	require.NoError(t, err)
	return e
}

func TestSweep_SingleTemperature(t *testing.T) {
	// GIVEN sweep(1.0, 1.0, 1.0)
	e := newSmallEngine(t, SweepConfig{TempMin: 1, TempMax: 1, TempStep: 1}, nil)

	// WHEN run to completion
	results, err := e.Sweep.Run(context.Background())

	// THEN exactly one Result is produced at T=1
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Temperature)
	assert.Equal(t, 1.0, e.Sweep.Progress())
}

func TestSweep_Len(t *testing.T) {
	tests := []struct {
		name   string
		bounds SweepConfig
		want   int
	}{
		{"single", SweepConfig{TempMin: 1, TempMax: 1, TempStep: 1}, 1},
		{"exact multiple", SweepConfig{TempMin: 1, TempMax: 3, TempStep: 0.5}, 5},
		{"remainder dropped", SweepConfig{TempMin: 1, TempMax: 3.2, TempStep: 0.5}, 5},
		{"step exceeds span", SweepConfig{TempMin: 1, TempMax: 1.5, TempStep: 2}, 1},
		{"decimal step", SweepConfig{TempMin: 0.1, TempMax: 0.4, TempStep: 0.1}, 4},
		{"reference range", DefaultConfig().Sweep, 115},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSmallEngine(t, tt.bounds, nil)
			assert.Equal(t, tt.want, e.Sweep.Len())
			temps := e.Sweep.Temperatures()
			require.Len(t, temps, tt.want)
			assert.Equal(t, tt.bounds.TempMin, temps[0])
		})
	}
}

func TestSweep_ResultsMatchTemperatures(t *testing.T) {
	// GIVEN a three-temperature sweep
	metrics := NewMetrics(nil)
	e := newSmallEngine(t, SweepConfig{TempMin: 20, TempMax: 30, TempStep: 5}, metrics)

	// WHEN consumed through the iterator
	var temps []float64
	var progress []float64
	for r, err := range e.Sweep.All(context.Background()) {
		require.NoError(t, err)
		temps = append(temps, r.Temperature)
		progress = append(progress, e.Sweep.Progress())
	}

	// THEN Results arrive in order, one per temperature
	assert.Equal(t, []float64{20, 25, 30}, temps)
	assert.Equal(t, []float64{0, 0.5, 1}, progress)
	assert.Len(t, e.Sweep.Results(), e.Sweep.Len())
	assert.Equal(t, 3.0, promtest.ToFloat64(metrics.Results))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.Progress))

	// AND every Result is finite and per-site magnetism is within [−1, 1]
	for _, r := range e.Sweep.Results() {
		testutil.AssertFinite(t, "energy", r.AverageEnergy)
		testutil.AssertFinite(t, "heat capacity", r.AverageHeatCapacity)
		assert.LessOrEqual(t, r.AverageMagnetism, 1.0)
		assert.GreaterOrEqual(t, r.AverageMagnetism, -1.0)
	}
}

func TestSweep_NotRestartable(t *testing.T) {
	e := newSmallEngine(t, SweepConfig{TempMin: 20, TempMax: 20, TempStep: 1}, nil)
	_, err := e.Sweep.Run(context.Background())
	require.NoError(t, err)

	_, err = e.Sweep.Run(context.Background())
	assert.ErrorIs(t, err, ErrSweepStarted)
	assert.Len(t, e.Sweep.Results(), 1, "results from the first run stay available")
}

func TestSweep_CancelBetweenTemperatures(t *testing.T) {
	// GIVEN a sweep whose context is cancelled after the first Result
	e := newSmallEngine(t, SweepConfig{TempMin: 20, TempMax: 40, TempStep: 5}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lastErr error
	n := 0
	for _, err := range e.Sweep.All(ctx) {
		if err != nil {
			lastErr = err
			break
		}
		n++
		cancel()
	}

	// THEN the sweep stops with the context error and keeps the first Result
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, lastErr, context.Canceled)
	assert.Len(t, e.Sweep.Results(), 1)
}

func TestSweep_StreamClosesChannel(t *testing.T) {
	e := newSmallEngine(t, SweepConfig{TempMin: 20, TempMax: 25, TempStep: 5}, nil)
	ch := make(chan Result)
	errc := make(chan error, 1)
	go func() { errc <- e.Sweep.Stream(context.Background(), ch) }()

	var got []Result
	for r := range ch {
		got = append(got, r)
	}
	require.NoError(t, <-errc)
	assert.Equal(t, e.Sweep.Results(), got)
}

func TestSweep_SameSeedSameResults(t *testing.T) {
	bounds := SweepConfig{TempMin: 20, TempMax: 30, TempStep: 5}
	a, err := newSmallEngine(t, bounds, nil).Sweep.Run(context.Background())
	require.NoError(t, err)
	b, err := newSmallEngine(t, bounds, nil).Sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewSweep_RejectsInvalidBounds(t *testing.T) {
	c := newReferenceController(t, 1, nil)
	iters := Iterations{Measure: 1}
	_, err := NewSweep(c, SweepConfig{TempMin: 0, TempMax: 1, TempStep: 1}, iters, nil)
	assert.ErrorIs(t, err, ErrInvalidTemperature)
	_, err = NewSweep(c, SweepConfig{TempMin: 2, TempMax: 1, TempStep: 1}, iters, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewSweep(c, SweepConfig{TempMin: 1, TempMax: 2, TempStep: 0}, iters, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewSweep(c, SweepConfig{TempMin: 1, TempMax: 2, TempStep: 1}, Iterations{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestIterationsFor_ScalesBySiteCount(t *testing.T) {
	got := IterationsFor(ScheduleConfig{InitialWarmupFactor: 20, WarmupFactor: 5, MeasureFactor: 25}, 108)
	assert.Equal(t, Iterations{InitialWarmup: 2160, Warmup: 540, Measure: 2700}, got)
}
