package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedSource is a rand.Source that always returns the same value, which pins
// rand.Float64 to v/2^63 and rand.Intn to a fixed residue.
type fixedSource struct{ v int64 }

func (f fixedSource) Int63() int64 { return f.v }
func (f fixedSource) Seed(int64)   {}

// uniformDraw returns an RNG whose Float64 always yields u (0 <= u < 1).
func uniformDraw(u float64) *rand.Rand {
	return rand.New(fixedSource{v: int64(u * (1 << 63))})
}

// pairTopology is a two-site toy geometry whose sites link to each other. RandomSite
// always proposes the first site.
type pairTopology struct {
	a, b Site
}

func newPairTopology() *pairTopology {
	return &pairTopology{a: Site{0, 0, 0}, b: Site{2, 0, 0}}
}

func (p *pairTopology) AllSites() []Site { return []Site{p.a, p.b} }

func (p *pairTopology) RandomSite(*rand.Rand) (Site, error) { return p.a, nil }

func (p *pairTopology) Neighbours(s Site) []Site {
	switch s {
	case p.a:
		return []Site{p.b}
	case p.b:
		return []Site{p.a}
	}
	return nil
}

// smallConfig is the default physics on the default geometry with a short schedule.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Schedule = ScheduleConfig{InitialWarmupFactor: 1, WarmupFactor: 0, MeasureFactor: 1}
	cfg.Sweep = SweepConfig{TempMin: 20, TempMax: 30, TempStep: 5}
	return cfg
}

func mustDistanceCache(t *testing.T, links linkGraph) *DistanceCache {
	t.Helper()
	cache, err := newDistanceCache(links)
	require.NoError(t, err)
	return cache
}

func mustDistances(t *testing.T, cache *DistanceCache, origin Site, maxHops int) map[Site]int {
	t.Helper()
	d, err := cache.DistancesWithin(origin, maxHops)
	require.NoError(t, err)
	return d
}

func mustGeometry(t *testing.T) *Geometry {
	t.Helper()
	g, err := NewGeometry(DefaultThickness)
	require.NoError(t, err)
	return g
}
