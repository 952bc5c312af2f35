package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
)

// MutationSpread bounds the multiplicative perturbation: factor in [1-s, 1+s).
const MutationSpread = 0.15

// Mutate derives a child genome. Each continuous field is perturbed on its
// own Bernoulli trial with probability rate; the colour tag is re-drawn from
// the kind's palette on a separate trial. The result is clamped.
func Mutate(rng *rand.Rand, parent components.Genome, kind components.Kind, rate float64) components.Genome {
	child := parent

	child.Speed = perturb(rng, parent.Speed, rate)
	child.Lifespan = perturb(rng, parent.Lifespan, rate)
	foodNeeded := perturb(rng, float64(parent.FoodNeeded), rate)
	offspring := perturb(rng, float64(parent.OffspringCount), rate)
	child.Size = perturb(rng, parent.Size, rate)

	if rng.Float64() < rate {
		palette := components.Palette(kind)
		child.ColorTag = palette[rng.Intn(len(palette))]
	}

	child.FoodNeeded = int(math.Round(foodNeeded))
	child.OffspringCount = int(math.Round(offspring))
	child.Clamp()
	return child
}

func perturb(rng *rand.Rand, v, rate float64) float64 {
	if rng.Float64() >= rate {
		return v
	}
	return v * (1 + randRange(rng, -MutationSpread, MutationSpread))
}
