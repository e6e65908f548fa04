// sim/lattice.go
package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// topology is the geometric surface the lattice needs. *Geometry is the only
// production implementation.
type topology interface {
	AllSites() []Site
	RandomSite(rng *rand.Rand) (Site, error)
}

// LatticeParams groups the physical constants of the energy functional.
type LatticeParams struct {
	DeltaH              float64 // enthalpy-like term of the field bias
	DeltaS              float64 // entropy-like term of the field bias
	InteractionDistance int     // hop cutoff for pair interactions (must be >= 1)
}

// interaction is one pair term of a site's energy: the partner's index and
// the squared hop distance to it.
type interaction struct {
	idx   int
	dist2 float64
}

// Lattice holds one spin per legal site and the aggregate State of the
// current configuration.
//
// Thread-safety: NOT thread-safe. Steps are sequential read-modify-decide
// operations and must be driven from a single goroutine.
type Lattice struct {
	topo   topology
	params LatticeParams

	sites []Site
	index map[Site]int
	spins []int
	pairs [][]interaction

	temp    float64
	gibbs   float64
	current State
}

// NewLattice creates a ferromagnetic lattice (every spin +1) over g, with
// pair terms taken from cache at params.InteractionDistance.
func NewLattice(g *Geometry, cache *DistanceCache, params LatticeParams) (*Lattice, error) {
	return newLattice(g, cache, params)
}

func newLattice(topo topology, cache *DistanceCache, params LatticeParams) (*Lattice, error) {
	if params.InteractionDistance < 1 {
		return nil, fmt.Errorf("%w: interaction distance %d", ErrInvalidConfig, params.InteractionDistance)
	}
	sites := topo.AllSites()
	l := &Lattice{
		topo:   topo,
		params: params,
		sites:  sites,
		index:  make(map[Site]int, len(sites)),
		spins:  make([]int, len(sites)),
		pairs:  make([][]interaction, len(sites)),
	}
	for i, s := range sites {
		l.index[s] = i
		l.spins[i] = 1
	}
	for i, s := range sites {
		reached, err := cache.Reachable(s, params.InteractionDistance)
		if err != nil {
			return nil, err
		}
		for _, r := range reached {
			if r.Hops == 0 {
				continue
			}
			j, ok := l.index[r.Site]
			if !ok {
				return nil, fmt.Errorf("%w: %v reachable from %v is not a lattice site", ErrInvalidGeometry, r.Site, s)
			}
			l.pairs[i] = append(l.pairs[i], interaction{idx: j, dist2: float64(r.Hops * r.Hops)})
		}
	}
	l.current = l.calculateState()
	return l, nil
}

// SetTemperature sets the active temperature and derives the uniform field
// bias gibbs = ΔH − T·ΔS. The retained State is recomputed under the new
// bias so that the next step's ΔE reflects the flip alone.
func (l *Lattice) SetTemperature(temp float64) error {
	if temp <= 0 || math.IsNaN(temp) {
		return fmt.Errorf("%w: got %v", ErrInvalidTemperature, temp)
	}
	l.temp = temp
	l.gibbs = l.params.DeltaH - temp*l.params.DeltaS
	l.current = l.calculateState()
	return nil
}

// Temperature returns the active temperature (0 before SetTemperature).
func (l *Lattice) Temperature() float64 { return l.temp }

// Gibbs returns the active field bias.
func (l *Lattice) Gibbs() float64 { return l.gibbs }

// Step performs one Metropolis update: flip a random site, recompute the full
// State, and keep the flip if the energy drops or exp(−ΔE/T) beats a uniform
// draw. A rejected flip is undone and the prior State retained.
func (l *Lattice) Step(rng *rand.Rand) (accepted bool, err error) {
	if l.temp <= 0 {
		return false, fmt.Errorf("%w: step before SetTemperature", ErrInvalidTemperature)
	}
	site, err := l.topo.RandomSite(rng)
	if err != nil {
		return false, err
	}
	i, ok := l.index[site]
	if !ok {
		return false, fmt.Errorf("%w: sampled %v is not a lattice site", ErrInvalidGeometry, site)
	}

	l.spins[i] = -l.spins[i]
	next := l.calculateState()
	change := next.Energy - l.current.Energy
	if change < 0 || math.Exp(-change/l.temp) > rng.Float64() {
		l.current = next
		return true, nil
	}
	l.spins[i] = -l.spins[i]
	return false, nil
}

// State returns the retained aggregate State without recomputation.
func (l *Lattice) State() State { return l.current }

// SiteCount returns the number of spins in the lattice.
func (l *Lattice) SiteCount() int { return len(l.sites) }

// Spin returns the spin at s and whether s is a lattice site.
func (l *Lattice) Spin(s Site) (int, bool) {
	i, ok := l.index[s]
	if !ok {
		return 0, false
	}
	return l.spins[i], true
}

// ForEachSite calls visit for every (site, spin) pair in site order.
func (l *Lattice) ForEachSite(visit func(s Site, spin int)) {
	for i, s := range l.sites {
		visit(s, l.spins[i])
	}
}

// siteEnergy is gibbs·s plus Σ spin(n)·s / dist(n)² over the interaction
// neighbourhood of site i.
func (l *Lattice) siteEnergy(i int) float64 {
	spin := l.spins[i]
	energy := l.gibbs * float64(spin)
	for _, p := range l.pairs[i] {
		energy += float64(l.spins[p.idx]*spin) / p.dist2
	}
	return energy
}

// calculateState sums every site's (energy, energy², spin). EnergySquared is
// the sum of per-site squares, not the square of the total.
func (l *Lattice) calculateState() State {
	var total State
	for i := range l.sites {
		total = total.Add(NewState(l.siteEnergy(i), l.spins[i]))
	}
	return total
}
