// Package systems contains the ECS systems that advance the ecosystem.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// EntityStore owns the live creatures and food items of one world.
//
// Entities are addressed by their ark handle. Removal is deferred: Kill and
// Consume flag an entity and update the live counters at once, and Compact
// drops flagged entities from the world at the end of the tick. Every scan
// skips flagged entities, so removals never shift the position of anything
// else in the same pass.
type EntityStore struct {
	world *ecs.World

	creatureMapper *ecs.Map4[components.Position, components.Velocity, components.Creature, components.Genome]
	foodMapper     *ecs.Map2[components.Position, components.Food]

	posMap      *ecs.Map1[components.Position]
	velMap      *ecs.Map1[components.Velocity]
	creatureMap *ecs.Map1[components.Creature]
	genomeMap   *ecs.Map1[components.Genome]
	foodMap     *ecs.Map1[components.Food]

	creatureFilter *ecs.Filter1[components.Creature]
	foodFilter     *ecs.Filter1[components.Food]

	// Insertion-ordered handles, including flagged ones until Compact.
	creatures []ecs.Entity
	food      []ecs.Entity

	numHerbivores int
	numCarnivores int
	numFood       int

	nextID uint64

	// preyIndex buckets live herbivores. Nil when the linear scan is used.
	preyIndex *SpatialGrid
	neighbors []Neighbor
}

// NewEntityStore creates an empty store backed by a fresh ark world.
func NewEntityStore() *EntityStore {
	world := ecs.NewWorld()
	return &EntityStore{
		world: world,
		creatureMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Creature,
			components.Genome,
		](world),
		foodMapper:     ecs.NewMap2[components.Position, components.Food](world),
		posMap:         ecs.NewMap1[components.Position](world),
		velMap:         ecs.NewMap1[components.Velocity](world),
		creatureMap:    ecs.NewMap1[components.Creature](world),
		genomeMap:      ecs.NewMap1[components.Genome](world),
		foodMap:        ecs.NewMap1[components.Food](world),
		creatureFilter: ecs.NewFilter1[components.Creature](world),
		foodFilter:     ecs.NewFilter1[components.Food](world),
		nextID:         1,
	}
}

// EnablePreyIndex turns on the grid index for the chase query and fills it
// with the current live herbivores. A non-positive cellSize disables it.
func (s *EntityStore) EnablePreyIndex(width, height, cellSize float64) {
	if cellSize <= 0 {
		s.preyIndex = nil
		return
	}
	s.preyIndex = NewSpatialGrid(width, height, cellSize)
	for _, e := range s.creatures {
		cr := s.creatureMap.Get(e)
		if cr.Alive && cr.Kind == components.Herbivore {
			pos := s.posMap.Get(e)
			s.preyIndex.Insert(e, pos.X, pos.Y)
		}
	}
}

// ResizePreyIndex rebuilds the prey index for a new world extent.
func (s *EntityStore) ResizePreyIndex(width, height float64) {
	if s.preyIndex == nil {
		return
	}
	s.EnablePreyIndex(width, height, s.preyIndex.cellSize)
}

// HasPreyIndex reports whether the grid index is active.
func (s *EntityStore) HasPreyIndex() bool { return s.preyIndex != nil }

// SpawnCreature creates a creature with the next identifier.
// Component pointers obtained before this call must be re-fetched.
func (s *EntityStore) SpawnCreature(kind components.Kind, x, y float64, genome components.Genome) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	cr := components.Creature{ID: s.nextID, Kind: kind, Alive: true}
	s.nextID++

	e := s.creatureMapper.NewEntity(&pos, &vel, &cr, &genome)
	s.creatures = append(s.creatures, e)

	if kind == components.Herbivore {
		s.numHerbivores++
		if s.preyIndex != nil {
			s.preyIndex.Insert(e, x, y)
		}
	} else {
		s.numCarnivores++
	}
	return e
}

// SpawnFood creates a food item.
func (s *EntityStore) SpawnFood(x, y float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	f := components.Food{}
	e := s.foodMapper.NewEntity(&pos, &f)
	s.food = append(s.food, e)
	s.numFood++
	return e
}

// Kill flags a creature as dead. Safe to call repeatedly.
func (s *EntityStore) Kill(e ecs.Entity) {
	cr := s.creatureMap.Get(e)
	if !cr.Alive {
		return
	}
	cr.Alive = false
	if cr.Kind == components.Herbivore {
		s.numHerbivores--
		if s.preyIndex != nil {
			pos := s.posMap.Get(e)
			s.preyIndex.Remove(e, pos.X, pos.Y)
		}
	} else {
		s.numCarnivores--
	}
}

// Consume flags a food item as eaten. Safe to call repeatedly.
func (s *EntityStore) Consume(e ecs.Entity) {
	f := s.foodMap.Get(e)
	if f.Eaten {
		return
	}
	f.Eaten = true
	s.numFood--
}

// Moved keeps the prey index current after a creature's position changed.
func (s *EntityStore) Moved(e ecs.Entity, oldX, oldY float64) {
	if s.preyIndex == nil {
		return
	}
	cr := s.creatureMap.Get(e)
	if !cr.Alive || cr.Kind != components.Herbivore {
		return
	}
	pos := s.posMap.Get(e)
	s.preyIndex.Move(e, oldX, oldY, pos.X, pos.Y)
}

// Compact removes every flagged entity from the world, keeping the
// insertion order of the survivors. Returns the number of creatures and
// food items removed.
func (s *EntityStore) Compact() (creatures, food int) {
	kept := s.creatures[:0]
	for _, e := range s.creatures {
		if s.creatureMap.Get(e).Alive {
			kept = append(kept, e)
			continue
		}
		s.world.RemoveEntity(e)
		creatures++
	}
	clearTail(s.creatures, len(kept))
	s.creatures = kept

	keptFood := s.food[:0]
	for _, e := range s.food {
		if !s.foodMap.Get(e).Eaten {
			keptFood = append(keptFood, e)
			continue
		}
		s.world.RemoveEntity(e)
		food++
	}
	clearTail(s.food, len(keptFood))
	s.food = keptFood
	return creatures, food
}

func clearTail(s []ecs.Entity, from int) {
	for i := from; i < len(s); i++ {
		s[i] = ecs.Entity{}
	}
}

// Clear removes every entity and restarts the identifier sequence at 1.
func (s *EntityStore) Clear() {
	for _, e := range s.creatures {
		s.world.RemoveEntity(e)
	}
	for _, e := range s.food {
		s.world.RemoveEntity(e)
	}
	s.creatures = s.creatures[:0]
	s.food = s.food[:0]
	s.numHerbivores = 0
	s.numCarnivores = 0
	s.numFood = 0
	s.nextID = 1
	if s.preyIndex != nil {
		s.preyIndex.Clear()
	}
}

// Creatures returns the creature handles in insertion order. The slice
// includes flagged creatures until the next Compact and must not be retained.
func (s *EntityStore) Creatures() []ecs.Entity { return s.creatures }

// FoodItems returns the food handles in insertion order, including eaten
// items until the next Compact.
func (s *EntityStore) FoodItems() []ecs.Entity { return s.food }

// Get returns the components of a creature.
func (s *EntityStore) Get(e ecs.Entity) (*components.Position, *components.Velocity, *components.Creature, *components.Genome) {
	return s.posMap.Get(e), s.velMap.Get(e), s.creatureMap.Get(e), s.genomeMap.Get(e)
}

// Creature returns the creature state of e.
func (s *EntityStore) Creature(e ecs.Entity) *components.Creature { return s.creatureMap.Get(e) }

// Position returns the position of a creature or food item.
func (s *EntityStore) Position(e ecs.Entity) *components.Position { return s.posMap.Get(e) }

// Eaten reports whether a food item was consumed this tick.
func (s *EntityStore) Eaten(e ecs.Entity) bool { return s.foodMap.Get(e).Eaten }

// Alive reports whether e is a live creature.
func (s *EntityStore) Alive(e ecs.Entity) bool {
	return s.world.Alive(e) && s.creatureMap.Get(e).Alive
}

// Herbivores returns the live herbivore count.
func (s *EntityStore) Herbivores() int { return s.numHerbivores }

// Carnivores returns the live carnivore count.
func (s *EntityStore) Carnivores() int { return s.numCarnivores }

// FoodCount returns the live food count.
func (s *EntityStore) FoodCount() int { return s.numFood }

// NextID returns the identifier the next creature will receive.
func (s *EntityStore) NextID() uint64 { return s.nextID }

// WorldEntities counts the creature and food entities held by the ark world,
// flagged or not. Used to verify compaction.
func (s *EntityStore) WorldEntities() (creatures, food int) {
	query := s.creatureFilter.Query()
	for query.Next() {
		creatures++
	}
	fq := s.foodFilter.Query()
	for fq.Next() {
		food++
	}
	return creatures, food
}

// SpeciesCounts returns the live herbivore count per colour tag.
func (s *EntityStore) SpeciesCounts() map[uint32]int {
	out := make(map[uint32]int)
	for _, e := range s.creatures {
		cr := s.creatureMap.Get(e)
		if !cr.Alive || cr.Kind != components.Herbivore {
			continue
		}
		out[s.genomeMap.Get(e).ColorTag]++
	}
	return out
}
