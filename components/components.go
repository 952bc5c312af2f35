// Package components defines ECS components for the ecosystem.
package components

// Kind is a creature's species kind.
type Kind uint8

const (
	Herbivore Kind = iota
	Carnivore
)

// String returns the lowercase kind name used in logs and CSV output.
func (k Kind) String() string {
	switch k {
	case Herbivore:
		return "herbivore"
	case Carnivore:
		return "carnivore"
	default:
		return "unknown"
	}
}

// Genome holds a creature's heritable parameters.
type Genome struct {
	Speed          float64 // world units/sec, >= MinSpeed
	FoodNeeded     int     // energy required to reproduce, >= 1
	OffspringCount int     // children per reproduction, [1, MaxOffspring]
	Lifespan       float64 // seconds, >= MinLifespan
	ColorTag       uint32  // 0xRRGGBB from the kind's palette
	Size           float64 // rendering radius, >= MinSize
}

// Genome clamp bounds.
const (
	MinSpeed     = 10.0
	MinLifespan  = 20.0
	MinSize      = 1.0
	MaxOffspring = 5
)

// Clamp forces every field into its valid range.
func (g *Genome) Clamp() {
	if g.Speed < MinSpeed {
		g.Speed = MinSpeed
	}
	if g.FoodNeeded < 1 {
		g.FoodNeeded = 1
	}
	if g.OffspringCount < 1 {
		g.OffspringCount = 1
	}
	if g.OffspringCount > MaxOffspring {
		g.OffspringCount = MaxOffspring
	}
	if g.Lifespan < MinLifespan {
		g.Lifespan = MinLifespan
	}
	if g.Size < MinSize {
		g.Size = MinSize
	}
}

// Creature holds per-creature mutable state.
type Creature struct {
	ID        uint64
	Kind      Kind
	Age       float64 // simulated seconds alive
	Satiation float64 // seconds since last successful feeding
	Energy    int     // feeding currency, spent on reproduction

	// Alive is cleared when the creature dies or is eaten. The entity stays
	// in the world until the end-of-tick compaction.
	Alive bool
}

// Food marks a food item. Eaten is set on consumption and the entity is
// removed at the end-of-tick compaction.
type Food struct {
	Eaten bool
}

// DeathCause identifies why a creature died.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseAge
	CauseStarvation
	CausePredation
)

// String returns the cause name used in logs.
func (c DeathCause) String() string {
	switch c {
	case CauseAge:
		return "age"
	case CauseStarvation:
		return "starvation"
	case CausePredation:
		return "predation"
	default:
		return "none"
	}
}
