package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
)

func TestRandomGenomeRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, kind := range []components.Kind{components.Herbivore, components.Carnivore} {
		palette := components.Palette(kind)
		for i := 0; i < 500; i++ {
			g := RandomGenome(rng, kind)
			if g.Speed < 30 || g.Speed >= 80 {
				t.Fatalf("speed %v out of [30,80)", g.Speed)
			}
			if g.FoodNeeded < 3 || g.FoodNeeded > 6 {
				t.Fatalf("foodNeeded %d out of [3,7)", g.FoodNeeded)
			}
			if g.OffspringCount < 1 || g.OffspringCount > 2 {
				t.Fatalf("offspringCount %d out of [1,3)", g.OffspringCount)
			}
			if g.Lifespan < 40 || g.Lifespan >= 80 {
				t.Fatalf("lifespan %v out of [40,80)", g.Lifespan)
			}
			if g.Size < 2 || g.Size >= 4 {
				t.Fatalf("size %v out of [2,4)", g.Size)
			}
			if !inPalette(g.ColorTag, palette) {
				t.Fatalf("colour %06x not in %v palette", g.ColorTag, kind)
			}
		}
	}
}

func inPalette(tag uint32, palette []uint32) bool {
	for _, c := range palette {
		if c == tag {
			return true
		}
	}
	return false
}

func TestSeedInitialPopulation(t *testing.T) {
	s := NewEntityStore()
	rng := rand.New(rand.NewSource(2))
	b := Bounds{Width: 800, Height: 600}
	SeedInitialPopulation(s, rng, b, 60, 8)

	if s.Herbivores() != 60 || s.Carnivores() != 8 {
		t.Fatalf("seeded %d/%d, want 60/8", s.Herbivores(), s.Carnivores())
	}
	for _, e := range s.Creatures() {
		p := s.Position(e)
		if p.X < 0 || p.X > b.Width || p.Y < 0 || p.Y > b.Height {
			t.Fatalf("creature at %v outside bounds", *p)
		}
	}
}

func TestMaybeSpawnFoodNeverExceedsMax(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		maxFood  int
		prior    int
		dt       float64
		wantLive int
	}{
		{"burst capped", 1000, 10, 0, 1, 10},
		{"already full", 50, 5, 5, 1, 5},
		{"zero dt", 50, 100, 3, 0, 3},
		{"whole items", 10, 100, 0, 0.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewEntityStore()
			rng := rand.New(rand.NewSource(3))
			for i := 0; i < tt.prior; i++ {
				s.SpawnFood(1, 1)
			}
			MaybeSpawnFood(s, rng, Bounds{Width: 100, Height: 100}, tt.rate, tt.maxFood, tt.dt)
			if s.FoodCount() != tt.wantLive {
				t.Errorf("food = %d, want %d", s.FoodCount(), tt.wantLive)
			}
			if s.FoodCount() > tt.maxFood && tt.prior <= tt.maxFood {
				t.Errorf("food %d exceeds max %d", s.FoodCount(), tt.maxFood)
			}
		})
	}
}

func TestMaybeSpawnFoodIsUnbiased(t *testing.T) {
	s := NewEntityStore()
	rng := rand.New(rand.NewSource(4))
	b := Bounds{Width: 100, Height: 100}

	const (
		rate  = 25.0
		dt    = 1.0 / 60
		ticks = 60000
	)
	total := 0
	for i := 0; i < ticks; i++ {
		total += MaybeSpawnFood(s, rng, b, rate, math.MaxInt32, dt)
	}

	got := float64(total) / (ticks * dt)
	if math.Abs(got-rate) > 0.5 {
		t.Errorf("mean spawn rate = %.3f, want ~%v", got, rate)
	}
}

func TestRespawnIfBelowThreshold(t *testing.T) {
	b := Bounds{Width: 800, Height: 600}

	t.Run("herbivores from zero", func(t *testing.T) {
		s := NewEntityStore()
		rng := rand.New(rand.NewSource(5))
		SpawnRandom(s, rng, b, components.Carnivore, 4)
		h, c := RespawnIfBelowThreshold(s, rng, b, true, 15)
		if h != 10 || s.Herbivores() != 10 {
			t.Errorf("respawned %d herbivores (live %d), want 10", h, s.Herbivores())
		}
		if c != 0 {
			t.Errorf("respawned %d carnivores, want 0", c)
		}
	})

	t.Run("small deficit", func(t *testing.T) {
		s := NewEntityStore()
		rng := rand.New(rand.NewSource(6))
		SpawnRandom(s, rng, b, components.Herbivore, 12)
		SpawnRandom(s, rng, b, components.Carnivore, 1)
		h, c := RespawnIfBelowThreshold(s, rng, b, true, 15)
		if h != 3 {
			t.Errorf("respawned %d herbivores, want 3", h)
		}
		if c != 3 {
			t.Errorf("respawned %d carnivores, want min(3, 5-1) = 3", c)
		}
	})

	t.Run("carnivores from zero", func(t *testing.T) {
		s := NewEntityStore()
		rng := rand.New(rand.NewSource(7))
		SpawnRandom(s, rng, b, components.Herbivore, 20)
		_, c := RespawnIfBelowThreshold(s, rng, b, true, 15)
		if c != 3 || s.Carnivores() != 3 {
			t.Errorf("respawned %d carnivores, want 3", c)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		s := NewEntityStore()
		rng := rand.New(rand.NewSource(8))
		h, c := RespawnIfBelowThreshold(s, rng, b, false, 15)
		if h != 0 || c != 0 || s.Herbivores() != 0 || s.Carnivores() != 0 {
			t.Error("respawn must do nothing when disabled")
		}
	})
}
