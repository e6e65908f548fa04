package sim

import "fmt"

// Engine wires one geometry, distance cache, lattice, controller and sweep
// from a Config.
type Engine struct {
	Config     Config
	Geometry   *Geometry
	Distances  *DistanceCache
	Controller *Controller
	Sweep      *Sweep
}

// NewEngine validates cfg and builds every component. metrics may be nil.
func NewEngine(cfg Config, metrics *Metrics) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	geometry, err := NewGeometry(cfg.Geometry.Thickness)
	if err != nil {
		return nil, err
	}
	distances, err := NewDistanceCache(geometry)
	if err != nil {
		return nil, fmt.Errorf("building distance cache: %w", err)
	}
	lattice, err := NewLattice(geometry, distances, cfg.LatticeParams())
	if err != nil {
		return nil, fmt.Errorf("building lattice: %w", err)
	}

	controller := NewController(lattice, NewSimulationKey(cfg.Seed).RNG(), metrics)
	sweep, err := NewSweep(controller, cfg.Sweep, IterationsFor(cfg.Schedule, geometry.SiteCount()), metrics)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Config:     cfg,
		Geometry:   geometry,
		Distances:  distances,
		Controller: controller,
		Sweep:      sweep,
	}, nil
}

// Lattice returns the lattice being simulated, for snapshot rendering.
func (e *Engine) Lattice() *Lattice { return e.Controller.Lattice() }
