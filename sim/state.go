package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// State is the aggregate energy, energy squared and magnetism of a lattice
// configuration at one instant.
type State struct {
	Energy        float64
	EnergySquared float64
	Magnetism     int
}

// NewState creates the state of a single contribution; EnergySquared is energy².
func NewState(energy float64, magnetism int) State {
	return State{Energy: energy, EnergySquared: energy * energy, Magnetism: magnetism}
}

// Add returns the component-wise sum of s and o.
func (s State) Add(o State) State {
	return State{
		Energy:        s.Energy + o.Energy,
		EnergySquared: s.EnergySquared + o.EnergySquared,
		Magnetism:     s.Magnetism + o.Magnetism,
	}
}

// Result holds the per-site statistics of one temperature in a sweep.
type Result struct {
	Temperature         float64 `json:"temperature" yaml:"temperature"`
	AverageEnergy       float64 `json:"average_energy" yaml:"average_energy"`
	AverageMagnetism    float64 `json:"average_magnetism" yaml:"average_magnetism"`
	AverageHeatCapacity float64 `json:"average_heat_capacity" yaml:"average_heat_capacity"`
}

// Aggregate reduces a history of states recorded at temperature into a
// Result normalized by siteCount. Heat capacity is (⟨E²⟩ − ⟨E⟩²) / T² with
// both moments taken per site.
func Aggregate(temperature float64, history []State, siteCount int) (Result, error) {
	if len(history) == 0 {
		return Result{}, ErrEmptyHistory
	}
	if temperature <= 0 {
		return Result{}, fmt.Errorf("%w: aggregate at %v", ErrInvalidTemperature, temperature)
	}
	if siteCount <= 0 {
		return Result{}, fmt.Errorf("%w: site count %d", ErrInvalidGeometry, siteCount)
	}

	energies := make([]float64, len(history))
	squares := make([]float64, len(history))
	magnetisms := make([]float64, len(history))
	for i, s := range history {
		energies[i] = s.Energy
		squares[i] = s.EnergySquared
		magnetisms[i] = float64(s.Magnetism)
	}

	n := float64(siteCount)
	averageEnergy := stat.Mean(energies, nil) / n
	averageMagnetism := stat.Mean(magnetisms, nil) / n
	averageSquare := stat.Mean(squares, nil) / n
	return Result{
		Temperature:         temperature,
		AverageEnergy:       averageEnergy,
		AverageMagnetism:    averageMagnetism,
		AverageHeatCapacity: (averageSquare - averageEnergy*averageEnergy) / (temperature * temperature),
	}, nil
}
