package config

import "math"

// Settings holds the engine-owned configuration fields. The presentation
// layer pushes these as a whole or as a Patch.
type Settings struct {
	FoodRate                  float64 `yaml:"food_rate" json:"foodRate"`                                    // items per simulated second
	MutationRate              float64 `yaml:"mutation_rate" json:"mutationRate"`                            // per-field probability, 0..1
	MaxFood                   int     `yaml:"max_food" json:"maxFood"`                                      // hard cap on live food
	InitialHerbivores         int     `yaml:"initial_herbivores" json:"initialHerbivores"`                  // seeded on init/reset
	InitialCarnivores         int     `yaml:"initial_carnivores" json:"initialCarnivores"`                  // seeded on init/reset
	SimulationSpeedMultiplier float64 `yaml:"simulation_speed_multiplier" json:"simulationSpeedMultiplier"` // simulated seconds per real second
	RespawnEnabled            bool    `yaml:"respawn_enabled" json:"respawnEnabled"`
	MinPopulation             int     `yaml:"min_population" json:"minPopulation"` // herbivore respawn floor
	CarnivoreChaseEnabled     bool    `yaml:"carnivore_chase_enabled" json:"carnivoreChaseEnabled"`
}

// Patch is a partial Settings update. Nil fields are left unchanged.
type Patch struct {
	FoodRate                  *float64 `json:"foodRate,omitempty"`
	MutationRate              *float64 `json:"mutationRate,omitempty"`
	MaxFood                   *int     `json:"maxFood,omitempty"`
	InitialHerbivores         *int     `json:"initialHerbivores,omitempty"`
	InitialCarnivores         *int     `json:"initialCarnivores,omitempty"`
	SimulationSpeedMultiplier *float64 `json:"simulationSpeedMultiplier,omitempty"`
	RespawnEnabled            *bool    `json:"respawnEnabled,omitempty"`
	MinPopulation             *int     `json:"minPopulation,omitempty"`
	CarnivoreChaseEnabled     *bool    `json:"carnivoreChaseEnabled,omitempty"`
}

// Clamp bounds applied by Sanitize.
const (
	MinFoodRate      = 0.01
	MaxFoodRate      = 1000.0
	MinSpeedMult     = 0.01
	MaxSpeedMult     = 100.0
	MaxFoodCap       = 100000
	MaxInitialCount  = 10000
	MaxMinPopulation = 10000
)

// DefaultSettings returns the engine defaults used when no YAML is available.
func DefaultSettings() Settings {
	return Settings{
		FoodRate:                  25,
		MutationRate:              0.08,
		MaxFood:                   800,
		InitialHerbivores:         60,
		InitialCarnivores:         8,
		SimulationSpeedMultiplier: 1,
		RespawnEnabled:            true,
		MinPopulation:             15,
		CarnivoreChaseEnabled:     true,
	}
}

// Apply returns a copy of s with every non-nil patch field replaced,
// already sanitized. s itself is not modified.
func (s Settings) Apply(p Patch) Settings {
	if p.FoodRate != nil {
		s.FoodRate = *p.FoodRate
	}
	if p.MutationRate != nil {
		s.MutationRate = *p.MutationRate
	}
	if p.MaxFood != nil {
		s.MaxFood = *p.MaxFood
	}
	if p.InitialHerbivores != nil {
		s.InitialHerbivores = *p.InitialHerbivores
	}
	if p.InitialCarnivores != nil {
		s.InitialCarnivores = *p.InitialCarnivores
	}
	if p.SimulationSpeedMultiplier != nil {
		s.SimulationSpeedMultiplier = *p.SimulationSpeedMultiplier
	}
	if p.RespawnEnabled != nil {
		s.RespawnEnabled = *p.RespawnEnabled
	}
	if p.MinPopulation != nil {
		s.MinPopulation = *p.MinPopulation
	}
	if p.CarnivoreChaseEnabled != nil {
		s.CarnivoreChaseEnabled = *p.CarnivoreChaseEnabled
	}
	return s.Sanitize()
}

// Sanitize clamps every field into its valid range. Out-of-range values are
// corrected silently; NaN falls back to the default.
func (s Settings) Sanitize() Settings {
	def := DefaultSettings()
	s.FoodRate = clampFloat(s.FoodRate, MinFoodRate, MaxFoodRate, def.FoodRate)
	s.MutationRate = clampFloat(s.MutationRate, 0, 1, def.MutationRate)
	s.SimulationSpeedMultiplier = clampFloat(s.SimulationSpeedMultiplier, MinSpeedMult, MaxSpeedMult, def.SimulationSpeedMultiplier)
	s.MaxFood = clampInt(s.MaxFood, 1, MaxFoodCap)
	s.InitialHerbivores = clampInt(s.InitialHerbivores, 1, MaxInitialCount)
	s.InitialCarnivores = clampInt(s.InitialCarnivores, 1, MaxInitialCount)
	s.MinPopulation = clampInt(s.MinPopulation, 1, MaxMinPopulation)
	return s
}

// Changed lists the yaml names of fields that differ between s and other.
func (s Settings) Changed(other Settings) []string {
	var out []string
	if s.FoodRate != other.FoodRate {
		out = append(out, "food_rate")
	}
	if s.MutationRate != other.MutationRate {
		out = append(out, "mutation_rate")
	}
	if s.MaxFood != other.MaxFood {
		out = append(out, "max_food")
	}
	if s.InitialHerbivores != other.InitialHerbivores {
		out = append(out, "initial_herbivores")
	}
	if s.InitialCarnivores != other.InitialCarnivores {
		out = append(out, "initial_carnivores")
	}
	if s.SimulationSpeedMultiplier != other.SimulationSpeedMultiplier {
		out = append(out, "simulation_speed_multiplier")
	}
	if s.RespawnEnabled != other.RespawnEnabled {
		out = append(out, "respawn_enabled")
	}
	if s.MinPopulation != other.MinPopulation {
		out = append(out, "min_population")
	}
	if s.CarnivoreChaseEnabled != other.CarnivoreChaseEnabled {
		out = append(out, "carnivore_chase_enabled")
	}
	return out
}

// Diff returns the patch that turns s into next: only differing fields are set.
func (s Settings) Diff(next Settings) Patch {
	var p Patch
	if s.FoodRate != next.FoodRate {
		p.FoodRate = &next.FoodRate
	}
	if s.MutationRate != next.MutationRate {
		p.MutationRate = &next.MutationRate
	}
	if s.MaxFood != next.MaxFood {
		p.MaxFood = &next.MaxFood
	}
	if s.InitialHerbivores != next.InitialHerbivores {
		p.InitialHerbivores = &next.InitialHerbivores
	}
	if s.InitialCarnivores != next.InitialCarnivores {
		p.InitialCarnivores = &next.InitialCarnivores
	}
	if s.SimulationSpeedMultiplier != next.SimulationSpeedMultiplier {
		p.SimulationSpeedMultiplier = &next.SimulationSpeedMultiplier
	}
	if s.RespawnEnabled != next.RespawnEnabled {
		p.RespawnEnabled = &next.RespawnEnabled
	}
	if s.MinPopulation != next.MinPopulation {
		p.MinPopulation = &next.MinPopulation
	}
	if s.CarnivoreChaseEnabled != next.CarnivoreChaseEnabled {
		p.CarnivoreChaseEnabled = &next.CarnivoreChaseEnabled
	}
	return p
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func clampFloat(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
