package sim

import "errors"

var (
	// ErrInvalidTemperature is returned when a temperature <= 0 reaches a
	// computation that divides by it (acceptance test, heat capacity).
	ErrInvalidTemperature = errors.New("sim: temperature must be positive")

	// ErrEmptyHistory is returned when aggregating a sequence with no states.
	ErrEmptyHistory = errors.New("sim: empty state history")

	// ErrGeometryExhausted means rejection sampling could not find a legal
	// site within its retry bound. It signals inconsistent extents, not a
	// runtime condition, and is never retried.
	ErrGeometryExhausted = errors.New("sim: no legal site found by rejection sampling")

	// ErrInvalidGeometry is returned for extents the lattice pattern cannot tile.
	ErrInvalidGeometry = errors.New("sim: invalid geometry")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrSweepStarted is returned when a sweep is iterated a second time.
	// A sweep mutates one lattice across its whole run and cannot restart.
	ErrSweepStarted = errors.New("sim: sweep already started")
)
