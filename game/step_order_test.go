package game

import (
	"math"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
)

func fixedGenome(kind components.Kind) components.Genome {
	return components.Genome{
		Speed:          50,
		FoodNeeded:     50,
		OffspringCount: 1,
		Lifespan:       100,
		ColorTag:       components.Palette(kind)[0],
		Size:           3,
	}
}

// orderSettings keeps the world quiet: no respawn, and the food cap is
// already reached by the single placed item.
func orderSettings() config.Settings {
	cfg := config.DefaultSettings()
	cfg.RespawnEnabled = false
	cfg.CarnivoreChaseEnabled = true
	cfg.MaxFood = 1
	cfg.MutationRate = 0
	cfg.SimulationSpeedMultiplier = 2
	return cfg
}

func TestPredationVisitsEveryCreatureOnce(t *testing.T) {
	const (
		startAge = 1.0
		realDT   = 0.05
	)

	tests := []struct {
		name      string
		preyFirst bool
		grid      bool
	}{
		{"prey before predator, linear", true, false},
		{"prey after predator, linear", false, false},
		{"prey before predator, grid", true, true},
		{"prey after predator, grid", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, _, _ := newTestSim(t, orderSettings(), func(o *Options) {
				o.SpatialIndex = tt.grid
				o.GridCellSize = 100
			})
			store := sim.Store()
			store.Clear()

			spawn := func(kind components.Kind, x, y float64) uint64 {
				e := store.SpawnCreature(kind, x, y, fixedGenome(kind))
				store.Creature(e).Age = startAge
				return store.Creature(e).ID
			}

			spawn(components.Herbivore, 100, 100)
			var preyID uint64
			if tt.preyFirst {
				preyID = spawn(components.Herbivore, 400, 300)
				spawn(components.Carnivore, 400, 300)
			} else {
				spawn(components.Carnivore, 400, 300)
				preyID = spawn(components.Herbivore, 400, 300)
			}
			spawn(components.Herbivore, 700, 500)
			spawn(components.Carnivore, 700, 100)
			// Only the prey can reach this item; it shows whether the prey took a turn.
			store.SpawnFood(400, 300)

			sim.Step(realDT)

			if got := sim.HerbivoreCount(); got != 2 {
				t.Errorf("herbivores = %d, want 2 bystanders", got)
			}
			if got := sim.CarnivoreCount(); got != 2 {
				t.Errorf("carnivores = %d, want 2", got)
			}

			wantFood := 1
			if tt.preyFirst {
				wantFood = 0
			}
			if got := sim.FoodCount(); got != wantFood {
				t.Errorf("food = %d, want %d (prey took a turn: %v)", got, wantFood, tt.preyFirst)
			}

			wantAge := startAge + realDT*2
			survivors := 0
			for _, e := range store.Creatures() {
				cr := store.Creature(e)
				if cr.ID == preyID {
					t.Fatalf("prey %d still in the store after compaction", preyID)
				}
				survivors++
				if math.Abs(cr.Age-wantAge) > 1e-12 {
					t.Errorf("creature %d age = %v, want %v", cr.ID, cr.Age, wantAge)
				}
			}
			if survivors != 4 {
				t.Errorf("survivors = %d, want 4", survivors)
			}
		})
	}
}

func TestFeedReproduceAndDieInOneTick(t *testing.T) {
	cfg := orderSettings()
	cfg.SimulationSpeedMultiplier = 1

	sim, _, _ := newTestSim(t, cfg, nil)
	store := sim.Store()
	store.Clear()

	g := fixedGenome(components.Herbivore)
	g.FoodNeeded = 1
	g.OffspringCount = 3
	g.Lifespan = 40
	parent := store.SpawnCreature(components.Herbivore, 300, 200, g)
	store.Creature(parent).Age = g.Lifespan - 0.01
	store.SpawnFood(300, 200)

	sim.Step(0.1)

	if got := sim.FoodCount(); got != 0 {
		t.Errorf("food = %d, want 0 eaten", got)
	}
	if got := sim.HerbivoreCount(); got != 3 {
		t.Fatalf("herbivores = %d, want 3 children", got)
	}
	for _, e := range store.Creatures() {
		cr := store.Creature(e)
		if cr.ID == 1 {
			t.Fatal("parent survived past its lifespan")
		}
		if cr.Age != 0 {
			t.Errorf("child %d age = %v, want 0", cr.ID, cr.Age)
		}
	}
}

func TestStepRecordsPerf(t *testing.T) {
	sim, _, _ := newTestSim(t, config.DefaultSettings(), nil)
	for i := 0; i < 5; i++ {
		sim.Step(0.1)
	}
	p := sim.Perf()
	if p.Ticks != 5 {
		t.Errorf("perf ticks = %d, want 5", p.Ticks)
	}
	if p.AvgCreatures <= 0 {
		t.Errorf("AvgCreatures = %v, want > 0", p.AvgCreatures)
	}
}
