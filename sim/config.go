package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// GeometryConfig groups lattice extents.
type GeometryConfig struct {
	Thickness int `yaml:"thickness"` // thickness extent; in-plane extent is twice this (positive multiple of 6)
}

// PhysicsConfig groups the constants of the energy functional.
type PhysicsConfig struct {
	DeltaH              float64 `yaml:"delta_h"`              // enthalpy-like bias term
	DeltaS              float64 `yaml:"delta_s"`              // entropy-like bias term
	InteractionDistance int     `yaml:"interaction_distance"` // hop cutoff D (>= 1)
}

// ScheduleConfig groups iteration counts, each a multiple of the site count.
type ScheduleConfig struct {
	InitialWarmupFactor int `yaml:"initial_warmup_factor"` // steps before the first temperature
	WarmupFactor        int `yaml:"warmup_factor"`         // unobserved steps per temperature
	MeasureFactor       int `yaml:"measure_factor"`        // recorded steps per temperature (> 0)
}

// SweepConfig groups the temperature range.
type SweepConfig struct {
	TempMin  float64 `yaml:"temp_min"`  // first temperature (> 0)
	TempMax  float64 `yaml:"temp_max"`  // last temperature, inclusive (>= TempMin)
	TempStep float64 `yaml:"temp_step"` // increment (> 0)
}

// Config is the complete engine configuration.
// All sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Geometry GeometryConfig `yaml:"geometry"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Seed     int64          `yaml:"seed"`
}

// DefaultConfig returns the reference parameter set: D=8, ΔH=120, ΔS=3·ln5,
// warm-up/measure multipliers 20/5/25 and a 23..80 sweep in steps of 0.5.
func DefaultConfig() Config {
	return Config{
		Geometry: GeometryConfig{Thickness: DefaultThickness},
		Physics: PhysicsConfig{
			DeltaH:              120,
			DeltaS:              3 * math.Log(5),
			InteractionDistance: 8,
		},
		Schedule: ScheduleConfig{
			InitialWarmupFactor: 20,
			WarmupFactor:        5,
			MeasureFactor:       25,
		},
		Sweep: SweepConfig{TempMin: 23, TempMax: 80, TempStep: 0.5},
		Seed:  42,
	}
}

// LatticeParams returns the physics section as lattice parameters.
func (c Config) LatticeParams() LatticeParams {
	return LatticeParams{
		DeltaH:              c.Physics.DeltaH,
		DeltaS:              c.Physics.DeltaS,
		InteractionDistance: c.Physics.InteractionDistance,
	}
}

// Validate checks every section and returns the first violation.
func (c Config) Validate() error {
	if t := c.Geometry.Thickness; t <= 0 || t%6 != 0 {
		return fmt.Errorf("%w: thickness must be a positive multiple of 6, got %d", ErrInvalidConfig, t)
	}
	if c.Physics.InteractionDistance < 1 {
		return fmt.Errorf("%w: interaction_distance must be >= 1, got %d", ErrInvalidConfig, c.Physics.InteractionDistance)
	}
	if math.IsNaN(c.Physics.DeltaH) || math.IsInf(c.Physics.DeltaH, 0) {
		return fmt.Errorf("%w: delta_h must be finite, got %v", ErrInvalidConfig, c.Physics.DeltaH)
	}
	if math.IsNaN(c.Physics.DeltaS) || math.IsInf(c.Physics.DeltaS, 0) {
		return fmt.Errorf("%w: delta_s must be finite, got %v", ErrInvalidConfig, c.Physics.DeltaS)
	}
	if c.Schedule.InitialWarmupFactor < 0 || c.Schedule.WarmupFactor < 0 {
		return fmt.Errorf("%w: warm-up factors must be non-negative, got %d/%d",
			ErrInvalidConfig, c.Schedule.InitialWarmupFactor, c.Schedule.WarmupFactor)
	}
	if c.Schedule.MeasureFactor <= 0 {
		return fmt.Errorf("%w: measure_factor must be > 0, got %d", ErrInvalidConfig, c.Schedule.MeasureFactor)
	}
	return c.Sweep.Validate()
}

// Validate checks the temperature range.
func (s SweepConfig) Validate() error {
	if !(s.TempMin > 0) {
		return fmt.Errorf("%w: temp_min must be > 0, got %v", ErrInvalidTemperature, s.TempMin)
	}
	if !(s.TempStep > 0) || math.IsInf(s.TempStep, 0) {
		return fmt.Errorf("%w: temp_step must be positive and finite, got %v", ErrInvalidConfig, s.TempStep)
	}
	if !(s.TempMax >= s.TempMin) || math.IsInf(s.TempMax, 0) {
		return fmt.Errorf("%w: temp_max %v must be finite and >= temp_min %v", ErrInvalidConfig, s.TempMax, s.TempMin)
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig. Fields absent from
// the file keep their defaults; unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// YAML renders the config as a YAML document.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
