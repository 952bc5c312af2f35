package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// Steering constants.
const (
	HerbivoreWanderChance = 0.05
	HerbivoreWanderSpeed  = 0.5
	CarnivorePatrolChance = 0.03
	CarnivorePatrolSpeed  = 0.3

	// ChaseRadiusSq is the squared detection radius for prey.
	ChaseRadiusSq = 10000.0
)

// Plan sets the steering velocity of creature e for this tick.
func Plan(store *EntityStore, rng *rand.Rand, e ecs.Entity, chase bool) {
	pos, vel, cr, g := store.Get(e)

	switch cr.Kind {
	case components.Herbivore:
		if target, ok := store.NearestFood(pos.X, pos.Y); ok {
			t := store.Position(target)
			steer(vel, pos, t.X, t.Y, g.Speed)
			return
		}
		wander(rng, vel, HerbivoreWanderChance, g.Speed*HerbivoreWanderSpeed)
	case components.Carnivore:
		if chase {
			if prey, ok := store.NearestPrey(e, pos.X, pos.Y, ChaseRadiusSq); ok {
				t := store.Position(prey)
				steer(vel, pos, t.X, t.Y, g.Speed)
				return
			}
		}
		wander(rng, vel, CarnivorePatrolChance, g.Speed*CarnivorePatrolSpeed)
	}
}

// steer points vel straight at (tx, ty) with the given magnitude. A target
// at the creature's own position yields zero velocity.
func steer(vel *components.Velocity, pos *components.Position, tx, ty, speed float64) {
	dx, dy := tx-pos.X, ty-pos.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		vel.X, vel.Y = 0, 0
		return
	}
	vel.X = dx / dist * speed
	vel.Y = dy / dist * speed
}

// wander picks a random heading with probability chance and otherwise keeps
// the previous velocity.
func wander(rng *rand.Rand, vel *components.Velocity, chance, speed float64) {
	if rng.Float64() >= chance {
		return
	}
	angle := rng.Float64() * 2 * math.Pi
	vel.X = math.Cos(angle) * speed
	vel.Y = math.Sin(angle) * speed
}

// NearestFood returns the closest uneaten food item by squared distance.
func (s *EntityStore) NearestFood(x, y float64) (ecs.Entity, bool) {
	var best ecs.Entity
	bestSq := math.Inf(1)
	found := false
	for _, f := range s.food {
		if s.foodMap.Get(f).Eaten {
			continue
		}
		p := s.posMap.Get(f)
		dx, dy := p.X-x, p.Y-y
		if d := dx*dx + dy*dy; d < bestSq {
			best, bestSq, found = f, d, true
		}
	}
	return best, found
}

// NearestPrey returns the closest live herbivore other than self strictly
// within the squared radius. Ties go to the older creature, so the grid and
// the linear scan agree.
func (s *EntityStore) NearestPrey(self ecs.Entity, x, y, radiusSq float64) (ecs.Entity, bool) {
	if s.preyIndex != nil {
		return s.nearestPreyIndexed(self, x, y, radiusSq)
	}
	return s.nearestPreyLinear(self, x, y, radiusSq)
}

func (s *EntityStore) nearestPreyLinear(self ecs.Entity, x, y, radiusSq float64) (ecs.Entity, bool) {
	var best ecs.Entity
	bestSq := radiusSq
	found := false
	for _, e := range s.creatures {
		if e == self {
			continue
		}
		cr := s.creatureMap.Get(e)
		if !cr.Alive || cr.Kind != components.Herbivore {
			continue
		}
		p := s.posMap.Get(e)
		dx, dy := p.X-x, p.Y-y
		if d := dx*dx + dy*dy; d < bestSq {
			best, bestSq, found = e, d, true
		}
	}
	return best, found
}

func (s *EntityStore) nearestPreyIndexed(self ecs.Entity, x, y, radiusSq float64) (ecs.Entity, bool) {
	s.neighbors = s.preyIndex.QueryRadiusInto(s.neighbors[:0], x, y, math.Sqrt(radiusSq), self, s.posMap)

	var best ecs.Entity
	var bestID uint64
	bestSq := radiusSq
	found := false
	for _, n := range s.neighbors {
		if n.DistSq >= radiusSq {
			continue
		}
		id := s.creatureMap.Get(n.E).ID
		if n.DistSq < bestSq || (n.DistSq == bestSq && found && id < bestID) {
			best, bestSq, bestID, found = n.E, n.DistSq, id, true
		}
	}
	return best, found
}
