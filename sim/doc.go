// Package sim provides the Metropolis Monte Carlo engine for a pyrochlore
// spin lattice.
//
// # Reading Guide
//
// Start with these files, leaves first:
//   - geometry.go: legal site classification, enumeration, rejection sampling, adjacency
//   - distance.go: memoized bounded BFS hop distances per origin
//   - lattice.go: spins, the energy functional, and the Metropolis step
//   - controller.go: warm-up and measurement phases at one temperature
//   - state.go: State arithmetic and per-temperature Result aggregation
//   - sweep.go: the temperature sweep and its incremental Result sequence
//
// # Architecture
//
// Data flows Geometry → DistanceCache → Lattice → Controller → Aggregate →
// Sweep. NewEngine wires the whole chain from a Config. Result sinks live in
// sim/results/.
//
// # Concurrency
//
// The engine is single-threaded: a Lattice and its Controller must be driven
// from one goroutine. A Sweep may run on a worker goroutine and hand Results
// to a consumer through Sweep.Stream; Sweep.Results and Sweep.Progress are
// safe to read concurrently. The DistanceCache is safe for concurrent readers.
package sim
