// sim/sweep.go
package sim

import (
	"context"
	"fmt"
	"iter"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Iterations holds resolved step counts for a sweep.
type Iterations struct {
	InitialWarmup int // steps at TempMin before the first temperature
	Warmup        int // unobserved steps per temperature
	Measure       int // recorded steps per temperature
}

// IterationsFor scales schedule factors by siteCount.
func IterationsFor(schedule ScheduleConfig, siteCount int) Iterations {
	return Iterations{
		InitialWarmup: schedule.InitialWarmupFactor * siteCount,
		Warmup:        schedule.WarmupFactor * siteCount,
		Measure:       schedule.MeasureFactor * siteCount,
	}
}

// Sweep runs one controller across an inclusive temperature range, producing
// one Result per temperature. Later temperatures start from the equilibrium
// reached at earlier ones, modelling gradual heating.
//
// A Sweep runs once. Results and Progress may be read from any goroutine
// while the sweep is being iterated from another.
type Sweep struct {
	controller *Controller
	bounds     SweepConfig
	iterations Iterations
	metrics    *Metrics

	started atomic.Bool

	mu       sync.Mutex
	results  []Result
	progress float64
}

// NewSweep creates a sweep over bounds. metrics may be nil.
func NewSweep(controller *Controller, bounds SweepConfig, iterations Iterations, metrics *Metrics) (*Sweep, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if iterations.Measure <= 0 {
		return nil, fmt.Errorf("%w: measure iterations must be > 0, got %d", ErrInvalidConfig, iterations.Measure)
	}
	return &Sweep{
		controller: controller,
		bounds:     bounds,
		iterations: iterations,
		metrics:    metrics,
	}, nil
}

// Bounds returns the temperature range for axis configuration.
func (s *Sweep) Bounds() SweepConfig { return s.bounds }

// Len returns the number of temperatures: floor((max−min)/step) + 1.
func (s *Sweep) Len() int {
	span := (s.bounds.TempMax - s.bounds.TempMin) / s.bounds.TempStep
	// absorb representation error so that e.g. 0.3/0.1 counts 3 steps
	return int(math.Floor(span+1e-9)) + 1
}

// Temperatures returns the swept temperatures in order. Each is computed as
// TempMin + i·TempStep so that rounding does not accumulate.
func (s *Sweep) Temperatures() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.bounds.TempMin + float64(i)*s.bounds.TempStep
	}
	return out
}

// Results returns a copy of the results produced so far. Results collected
// before a failure remain valid.
func (s *Sweep) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results)
}

// Progress returns the fraction of the temperature range completed.
func (s *Sweep) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// All returns an iterator that simulates each temperature in turn and yields
// its Result before the next temperature begins. The first error, including
// context cancellation observed between temperatures, is yielded last.
func (s *Sweep) All(ctx context.Context) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		if !s.started.CompareAndSwap(false, true) {
			yield(Result{}, ErrSweepStarted)
			return
		}
		if err := s.warmup(); err != nil {
			yield(Result{}, err)
			return
		}
		for _, temp := range s.Temperatures() {
			if err := ctx.Err(); err != nil {
				yield(Result{}, err)
				return
			}
			r, err := s.simulate(temp)
			if err != nil {
				yield(Result{}, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Stream runs the sweep and sends each Result on out, closing out on return.
func (s *Sweep) Stream(ctx context.Context, out chan<- Result) error {
	defer close(out)
	for r, err := range s.All(ctx) {
		if err != nil {
			return err
		}
		select {
		case out <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Run drains the sweep and returns every Result.
func (s *Sweep) Run(ctx context.Context) ([]Result, error) {
	for _, err := range s.All(ctx) {
		if err != nil {
			return s.Results(), err
		}
	}
	return s.Results(), nil
}

func (s *Sweep) warmup() error {
	if err := s.controller.SetTemperature(s.bounds.TempMin); err != nil {
		return err
	}
	logrus.Debugf("initial warm-up: %d steps at T=%.3f", s.iterations.InitialWarmup, s.bounds.TempMin)
	if err := s.controller.Warmup(s.iterations.InitialWarmup); err != nil {
		return fmt.Errorf("initial warm-up: %w", err)
	}
	return nil
}

func (s *Sweep) simulate(temp float64) (Result, error) {
	if err := s.controller.SetTemperature(temp); err != nil {
		return Result{}, err
	}
	if err := s.controller.Run(s.iterations.Warmup, s.iterations.Measure); err != nil {
		return Result{}, fmt.Errorf("T=%v: %w", temp, err)
	}
	r, err := Aggregate(temp, s.controller.History(), s.controller.Lattice().SiteCount())
	if err != nil {
		return Result{}, fmt.Errorf("T=%v: %w", temp, err)
	}

	progress := 1.0
	if span := s.bounds.TempMax - s.bounds.TempMin; span > 0 {
		progress = min((temp-s.bounds.TempMin)/span, 1)
	}
	s.mu.Lock()
	s.results = append(s.results, r)
	s.progress = progress
	s.mu.Unlock()
	s.metrics.observeResult(progress)

	logrus.Infof("[T %7.3f] energy=%.4f magnetism=%.4f heat_capacity=%.4f (%.0f%%)",
		temp, r.AverageEnergy, r.AverageMagnetism, r.AverageHeatCapacity, progress*100)
	return r, nil
}
