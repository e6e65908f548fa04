package sim

import (
	"math/rand"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReferenceController(t *testing.T, seed int64, metrics *Metrics) *Controller {
	t.Helper()
	g := mustGeometry(t)
	l, err := NewLattice(g, mustDistanceCache(t, g), DefaultConfig().LatticeParams())
	require.NoError(t, err)
	return NewController(l, rand.New(rand.NewSource(seed)), metrics)
}

func TestController_Run_RecordsMeasuredStepsOnly(t *testing.T) {
	// GIVEN a controller at a positive temperature
	metrics := NewMetrics(nil)
	c := newReferenceController(t, 3, metrics)
	require.NoError(t, c.SetTemperature(40))

	// WHEN running 20 warm-up and 30 measured steps
	require.NoError(t, c.Run(20, 30))

	// THEN only measured steps are recorded
	assert.Len(t, c.History(), 30)
	// AND every step was counted as accepted or rejected
	total := promtest.ToFloat64(metrics.FlipsAccepted) + promtest.ToFloat64(metrics.FlipsRejected)
	assert.Equal(t, 50.0, total)
	assert.Equal(t, 40.0, promtest.ToFloat64(metrics.Temperature))
	// AND the last recorded state is the lattice's current state
	assert.Equal(t, c.Lattice().State(), c.History()[len(c.History())-1])
}

func TestController_Run_ClearsPriorHistory(t *testing.T) {
	c := newReferenceController(t, 3, nil)
	require.NoError(t, c.SetTemperature(40))
	require.NoError(t, c.Run(0, 10))
	require.NoError(t, c.Run(0, 4))
	assert.Len(t, c.History(), 4)
}

func TestController_Warmup_DoesNotRecord(t *testing.T) {
	c := newReferenceController(t, 3, nil)
	require.NoError(t, c.SetTemperature(40))
	require.NoError(t, c.Warmup(25))
	assert.Empty(t, c.History())
}

func TestController_StepWithoutTemperature(t *testing.T) {
	c := newReferenceController(t, 3, nil)
	err := c.Run(0, 1)
	assert.ErrorIs(t, err, ErrInvalidTemperature)
	assert.ErrorIs(t, c.SetTemperature(0), ErrInvalidTemperature)
}

func TestController_SameSeedSameHistory(t *testing.T) {
	a := newReferenceController(t, 99, nil)
	b := newReferenceController(t, 99, nil)
	require.NoError(t, a.SetTemperature(30))
	require.NoError(t, b.SetTemperature(30))
	require.NoError(t, a.Run(10, 40))
	require.NoError(t, b.Run(10, 40))
	assert.Equal(t, a.History(), b.History())
}
