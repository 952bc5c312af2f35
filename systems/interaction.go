package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// Interaction constants.
const (
	FeedRadiusSq    = 20.0
	PredateRadiusSq = 30.0

	HerbivoreStarvation = 25.0
	CarnivoreStarvation = 40.0

	// OffspringJitter bounds the per-axis offset of a child from its parent.
	OffspringJitter = 20.0
)

// Feed lets herbivore e eat the first uneaten food item strictly within
// FeedRadiusSq. At most one item per call.
func Feed(store *EntityStore, e ecs.Entity) bool {
	pos := store.posMap.Get(e)
	for _, f := range store.food {
		if store.foodMap.Get(f).Eaten {
			continue
		}
		p := store.posMap.Get(f)
		dx, dy := p.X-pos.X, p.Y-pos.Y
		if dx*dx+dy*dy < FeedRadiusSq {
			store.Consume(f)
			cr := store.creatureMap.Get(e)
			cr.Energy++
			cr.Satiation = 0
			return true
		}
	}
	return false
}

// Predate lets carnivore e eat the first live herbivore strictly within
// PredateRadiusSq. The predator gains the prey's FoodNeeded as energy.
func Predate(store *EntityStore, e ecs.Entity) (ecs.Entity, bool) {
	pos := store.posMap.Get(e)
	for _, other := range store.creatures {
		if other == e {
			continue
		}
		prey := store.creatureMap.Get(other)
		if !prey.Alive || prey.Kind != components.Herbivore {
			continue
		}
		p := store.posMap.Get(other)
		dx, dy := p.X-pos.X, p.Y-pos.Y
		if dx*dx+dy*dy < PredateRadiusSq {
			reward := store.genomeMap.Get(other).FoodNeeded
			store.Kill(other)
			cr := store.creatureMap.Get(e)
			cr.Energy += reward
			cr.Satiation = 0
			return other, true
		}
	}
	return ecs.Entity{}, false
}

// Reproduce spawns OffspringCount mutated children next to e once its energy
// reaches FoodNeeded, then zeroes the parent's energy. Returns the number of
// children created. Component pointers held by the caller are stale after a
// birth and must be re-fetched.
func Reproduce(store *EntityStore, rng *rand.Rand, e ecs.Entity, b Bounds, mutationRate float64) int {
	cr := store.creatureMap.Get(e)
	genome := *store.genomeMap.Get(e)
	if cr.Energy < genome.FoodNeeded {
		return 0
	}
	kind := cr.Kind
	parent := *store.posMap.Get(e)

	for i := 0; i < genome.OffspringCount; i++ {
		x := clampRange(parent.X+randRange(rng, -OffspringJitter, OffspringJitter), 0, b.Width)
		y := clampRange(parent.Y+randRange(rng, -OffspringJitter, OffspringJitter), 0, b.Height)
		store.SpawnCreature(kind, x, y, Mutate(rng, genome, kind, mutationRate))
	}

	store.creatureMap.Get(e).Energy = 0
	return genome.OffspringCount
}

// StarvationLimit returns the satiation threshold for a kind.
func StarvationLimit(k components.Kind) float64 {
	if k == components.Carnivore {
		return CarnivoreStarvation
	}
	return HerbivoreStarvation
}

// CheckDeath kills e when it outlived its lifespan or starved. Age takes
// precedence when both apply.
func CheckDeath(store *EntityStore, e ecs.Entity) components.DeathCause {
	cr := store.creatureMap.Get(e)
	var cause components.DeathCause
	switch {
	case cr.Age > store.genomeMap.Get(e).Lifespan:
		cause = components.CauseAge
	case cr.Satiation > StarvationLimit(cr.Kind):
		cause = components.CauseStarvation
	default:
		return components.CauseNone
	}
	store.Kill(e)
	return cause
}
