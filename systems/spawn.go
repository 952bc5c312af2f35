package systems

import (
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
)

// Bounds is the world extent. Positions live in [0, Width] x [0, Height].
type Bounds struct {
	Width, Height float64
}

// Respawn limits. The carnivore thresholds do not depend on minPopulation.
const (
	MaxHerbivoreRespawn = 10
	CarnivoreFloor      = 2
	CarnivoreRefill     = 5
	MaxCarnivoreRespawn = 3
)

// RandomGenome draws a fresh genome for a seeded or respawned creature.
func RandomGenome(rng *rand.Rand, kind components.Kind) components.Genome {
	palette := components.Palette(kind)
	return components.Genome{
		Speed:          randRange(rng, 30, 80),
		FoodNeeded:     3 + rng.Intn(4),
		OffspringCount: 1 + rng.Intn(2),
		Lifespan:       randRange(rng, 40, 80),
		ColorTag:       palette[rng.Intn(len(palette))],
		Size:           randRange(rng, 2, 4),
	}
}

// SpawnRandom creates count creatures of a kind at uniform random positions.
func SpawnRandom(store *EntityStore, rng *rand.Rand, b Bounds, kind components.Kind, count int) {
	for i := 0; i < count; i++ {
		x := rng.Float64() * b.Width
		y := rng.Float64() * b.Height
		store.SpawnCreature(kind, x, y, RandomGenome(rng, kind))
	}
}

// SeedInitialPopulation places the starting herbivores and carnivores.
func SeedInitialPopulation(store *EntityStore, rng *rand.Rand, b Bounds, herbivores, carnivores int) {
	SpawnRandom(store, rng, b, components.Herbivore, herbivores)
	SpawnRandom(store, rng, b, components.Carnivore, carnivores)
}

// MaybeSpawnFood adds foodRate*dt items on average using stochastic
// rounding, never exceeding maxFood. Returns the number spawned.
func MaybeSpawnFood(store *EntityStore, rng *rand.Rand, b Bounds, foodRate float64, maxFood int, dt float64) int {
	if dt <= 0 || foodRate <= 0 {
		return 0
	}
	expected := foodRate * dt
	whole := int(expected)
	if rng.Float64() < expected-float64(whole) {
		whole++
	}

	spawned := 0
	for ; spawned < whole && store.FoodCount() < maxFood; spawned++ {
		store.SpawnFood(rng.Float64()*b.Width, rng.Float64()*b.Height)
	}
	return spawned
}

// RespawnIfBelowThreshold tops up collapsing populations. It does nothing
// unless respawn is enabled. Returns the number of creatures added per kind.
func RespawnIfBelowThreshold(store *EntityStore, rng *rand.Rand, b Bounds, enabled bool, minPopulation int) (herbivores, carnivores int) {
	if !enabled {
		return 0, 0
	}
	if n := store.Herbivores(); n < minPopulation {
		herbivores = min(MaxHerbivoreRespawn, minPopulation-n)
		SpawnRandom(store, rng, b, components.Herbivore, herbivores)
	}
	if n := store.Carnivores(); n < CarnivoreFloor {
		carnivores = min(MaxCarnivoreRespawn, CarnivoreRefill-n)
		SpawnRandom(store, rng, b, components.Carnivore, carnivores)
	}
	return herbivores, carnivores
}

func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
