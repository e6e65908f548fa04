package sim

import (
	"fmt"
	"math/rand"
)

// Controller drives a single lattice through warm-up and measurement phases
// at a fixed temperature and records the state history of the last run.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type Controller struct {
	lattice *Lattice
	rng     *rand.Rand
	metrics *Metrics
	history []State
}

// NewController creates a controller owning lattice. rng drives both site
// proposals and acceptance draws. metrics may be nil.
func NewController(lattice *Lattice, rng *rand.Rand, metrics *Metrics) *Controller {
	return &Controller{
		lattice: lattice,
		rng:     rng,
		metrics: metrics,
	}
}

// Lattice returns the owned lattice for read-only inspection.
func (c *Controller) Lattice() *Lattice { return c.lattice }

// SetTemperature delegates to the lattice.
func (c *Controller) SetTemperature(temp float64) error {
	if err := c.lattice.SetTemperature(temp); err != nil {
		return err
	}
	c.metrics.observeTemperature(temp)
	return nil
}

// Warmup performs iterations unobserved Metropolis steps.
func (c *Controller) Warmup(iterations int) error {
	for i := 0; i < iterations; i++ {
		if err := c.step(); err != nil {
			return fmt.Errorf("warm-up step %d: %w", i, err)
		}
	}
	return nil
}

// Run performs warmup unobserved steps followed by measure steps, recording
// the state after each measured step. Any prior history is discarded.
func (c *Controller) Run(warmup, measure int) error {
	c.history = make([]State, 0, max(measure, 0))
	if err := c.Warmup(warmup); err != nil {
		return err
	}
	for i := 0; i < measure; i++ {
		if err := c.step(); err != nil {
			return fmt.Errorf("measurement step %d: %w", i, err)
		}
		c.history = append(c.history, c.lattice.State())
	}
	return nil
}

// History returns the states recorded by the last Run.
func (c *Controller) History() []State { return c.history }

func (c *Controller) step() error {
	accepted, err := c.lattice.Step(c.rng)
	if err != nil {
		return err
	}
	c.metrics.observeFlip(accepted)
	return nil
}
