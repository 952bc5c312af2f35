// Package main provides CMA-ES optimization for ecosystem settings.
package main

import (
	"github.com/pthm-cable/ecosim/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters,
// seeded with the defaults of base.
func NewParamVector(base config.Settings) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "food_rate", Path: "simulation.food_rate", Min: 5, Max: 100},
			{Name: "max_food", Path: "simulation.max_food", Min: 100, Max: 3000},
			{Name: "mutation_rate", Path: "simulation.mutation_rate", Min: 0, Max: 0.5},
		},
	}
	defaults := pv.FromSettings(base)
	for i := range pv.Specs {
		pv.Specs[i].Default = defaults[i]
	}
	pv.Clamp(defaults)
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToSettings returns s with the parameter values applied.
// Order must match Specs order.
func (pv *ParamVector) ApplyToSettings(s config.Settings, values []float64) config.Settings {
	clamped := pv.Clamp(values)
	s.FoodRate = clamped[0]
	s.MaxFood = int(clamped[1])
	s.MutationRate = clamped[2]
	return s.Sanitize()
}

// FromSettings extracts the current parameter values from s.
func (pv *ParamVector) FromSettings(s config.Settings) []float64 {
	return []float64{
		s.FoodRate,
		float64(s.MaxFood),
		s.MutationRate,
	}
}
