package game

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var noopTarget = RenderFunc(func(*Frame) {})

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct{ snaps []telemetry.Snapshot }

func (r *recorder) Publish(s telemetry.Snapshot) { r.snaps = append(r.snaps, s) }

func newTestSim(t *testing.T, settings config.Settings, mutate func(*Options)) (*Simulation, *recorder, *fakeClock) {
	t.Helper()
	rec := &recorder{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	opts := Options{
		Seed:      7,
		Settings:  settings,
		StatsSink: rec,
		Clock:     clock.Now,
		Logger:    quietLogger(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	sim := New(opts)
	if err := sim.Handle(Initialize{WorldWidth: 800, WorldHeight: 600, Target: noopTarget}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return sim, rec, clock
}

func TestInitializeErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		msg  Initialize
		want error
	}{
		{"no render target", Options{StatsSink: telemetry.Discard}, Initialize{WorldWidth: 800, WorldHeight: 600}, ErrNoRenderTarget},
		{"no stats sink", Options{}, Initialize{WorldWidth: 800, WorldHeight: 600, Target: noopTarget}, ErrNoStatsSink},
		{"zero size", Options{StatsSink: telemetry.Discard}, Initialize{WorldWidth: 0, WorldHeight: 600, Target: noopTarget}, ErrInvalidWorldSize},
		{"nan size", Options{StatsSink: telemetry.Discard}, Initialize{WorldWidth: 800, WorldHeight: math.NaN(), Target: noopTarget}, ErrInvalidWorldSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			sim := New(tt.opts)
			err := sim.Handle(tt.msg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Handle = %v, want %v", err, tt.want)
			}
			if sim.Initialized() {
				t.Error("simulation should stay uninitialized")
			}
			sim.Step(1)
			if sim.Tick() != 0 || sim.HerbivoreCount() != 0 {
				t.Error("uninitialized simulation must not step")
			}
		})
	}
}

type bogusMessage struct{}

func (bogusMessage) messageKind() string { return "bogus" }

func TestMessagesBeforeInitialize(t *testing.T) {
	sim := New(Options{StatsSink: telemetry.Discard, Logger: quietLogger()})
	for _, msg := range []Message{UpdateConfig{}, Resize{WorldWidth: 10, WorldHeight: 10}, Reset{}} {
		if err := sim.Handle(msg); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s: err = %v, want ErrNotInitialized", Kind(msg), err)
		}
	}
	if err := sim.Handle(bogusMessage{}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("bogus: err = %v, want ErrUnknownMessage", err)
	}
}

func TestInitializeSeedsFromConfig(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.InitialHerbivores = 12
	cfg.InitialCarnivores = 3

	sim := New(Options{StatsSink: telemetry.Discard, Logger: quietLogger()})
	if err := sim.Handle(Initialize{WorldWidth: 400, WorldHeight: 300, Target: noopTarget, Config: &cfg}); err != nil {
		t.Fatal(err)
	}
	if sim.HerbivoreCount() != 12 || sim.CarnivoreCount() != 3 {
		t.Errorf("seeded %d/%d, want 12/3", sim.HerbivoreCount(), sim.CarnivoreCount())
	}
	if w, h := sim.WorldSize(); w != 400 || h != 300 {
		t.Errorf("world = %vx%v, want 400x300", w, h)
	}
	f := sim.Frame()
	if len(f.Creatures) != 15 || f.Width != 400 {
		t.Errorf("frame has %d creatures, width %v", len(f.Creatures), f.Width)
	}
}

func TestAgeAdvancesByScaledDT(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.InitialHerbivores = 5
	cfg.InitialCarnivores = 1
	cfg.SimulationSpeedMultiplier = 2
	cfg.RespawnEnabled = false
	cfg.CarnivoreChaseEnabled = false

	sim, _, _ := newTestSim(t, cfg, nil)
	for i := 0; i < 3; i++ {
		sim.Step(0.1)
	}

	for _, e := range sim.Store().Creatures() {
		cr := sim.Store().Creature(e)
		if cr.ID > 6 {
			continue // born during the run
		}
		if math.Abs(cr.Age-0.6) > 1e-9 {
			t.Errorf("creature %d age = %v, want 0.6", cr.ID, cr.Age)
		}
	}
	if math.Abs(sim.SimTime()-0.6) > 1e-9 {
		t.Errorf("sim time = %v, want 0.6", sim.SimTime())
	}
}

func TestStepIgnoresNegativeAndNaN(t *testing.T) {
	sim, _, _ := newTestSim(t, config.DefaultSettings(), nil)
	sim.Step(-1)
	sim.Step(math.NaN())
	if sim.SimTime() != 0 {
		t.Errorf("sim time = %v, want 0", sim.SimTime())
	}
	if sim.Tick() != 2 {
		t.Errorf("tick = %d, want 2", sim.Tick())
	}
}

func TestSixtySecondScenario(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.InitialHerbivores = 60
	cfg.InitialCarnivores = 8
	cfg.FoodRate = 25
	cfg.RespawnEnabled = false
	cfg.CarnivoreChaseEnabled = false

	sim, rec, clock := newTestSim(t, cfg, nil)
	const dt = time.Second / 60
	for i := 0; i < 3600; i++ {
		clock.Advance(dt)
		sim.Step(dt.Seconds())
		if sim.FoodCount() > cfg.MaxFood {
			t.Fatalf("tick %d: food %d exceeds max %d", i, sim.FoodCount(), cfg.MaxFood)
		}
	}

	if sim.SimTime() < 59.9 {
		t.Errorf("sim time = %v, want ~60", sim.SimTime())
	}
	if len(rec.snaps) < 55 || len(rec.snaps) > 60 {
		t.Errorf("got %d snapshots, want about one per second", len(rec.snaps))
	}
	for i, s := range rec.snaps {
		if s.Herbivores < 0 || s.Carnivores < 0 || s.Food < 0 {
			t.Fatalf("snapshot %d has negative counts: %+v", i, s)
		}
		if s.SpeciesTotal() != s.Herbivores {
			t.Fatalf("snapshot %d: species total %d != herbivores %d", i, s.SpeciesTotal(), s.Herbivores)
		}
		for tag := range s.SpeciesCounts {
			if !inPalette(tag, components.HerbivorePalette) {
				t.Fatalf("snapshot %d: unknown herbivore tag %06x", i, tag)
			}
		}
		if i > 0 && s.T <= rec.snaps[i-1].T {
			t.Fatalf("snapshot timestamps not increasing")
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

func TestRespawnAfterHerbivoreExtinction(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.InitialHerbivores = 4
	cfg.InitialCarnivores = 3
	cfg.MinPopulation = 15
	cfg.RespawnEnabled = true

	sim, _, _ := newTestSim(t, cfg, nil)
	for _, e := range sim.Store().Creatures() {
		if sim.Store().Creature(e).Kind == components.Herbivore {
			sim.Store().Kill(e)
		}
	}
	if sim.HerbivoreCount() != 0 {
		t.Fatal("setup: herbivores should be gone")
	}

	sim.Step(0)
	if got := sim.HerbivoreCount(); got != 10 {
		t.Errorf("herbivores after respawn = %d, want min(10, 15) = 10", got)
	}
	if got := sim.CarnivoreCount(); got != 3 {
		t.Errorf("carnivores = %d, want 3 untouched", got)
	}
}

func TestExtinctionIsSteadyState(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.RespawnEnabled = false

	sim, rec, clock := newTestSim(t, cfg, nil)
	for _, e := range sim.Store().Creatures() {
		sim.Store().Kill(e)
	}
	for i := 0; i < 300; i++ {
		clock.Advance(100 * time.Millisecond)
		sim.Step(0.1)
	}

	if sim.HerbivoreCount() != 0 || sim.CarnivoreCount() != 0 {
		t.Fatalf("creatures reappeared with respawn disabled")
	}
	if sim.Tick() != 300 {
		t.Errorf("tick = %d, want 300", sim.Tick())
	}
	if len(rec.snaps) < 25 {
		t.Fatalf("got %d snapshots, stats must keep flowing", len(rec.snaps))
	}
	last := rec.snaps[len(rec.snaps)-1]
	if last.Herbivores != 0 || last.Carnivores != 0 || len(last.SpeciesCounts) != 0 {
		t.Errorf("last snapshot = %+v, want zero creatures", last)
	}
	if last.Food == 0 {
		t.Error("food should keep spawning after extinction")
	}
}

func TestUpdateConfigIsAtomic(t *testing.T) {
	sim, _, _ := newTestSim(t, config.DefaultSettings(), nil)
	before := sim.Settings()

	rate := 90.0
	maxFood := 12
	mut := 7.0
	if err := sim.Handle(UpdateConfig{Patch: config.Patch{FoodRate: &rate, MaxFood: &maxFood, MutationRate: &mut}}); err != nil {
		t.Fatal(err)
	}

	got := sim.Settings()
	if got.FoodRate != 90 || got.MaxFood != 12 {
		t.Errorf("patched fields = %v/%d, want 90/12", got.FoodRate, got.MaxFood)
	}
	if got.MutationRate != 1 {
		t.Errorf("mutation rate = %v, want clamped 1", got.MutationRate)
	}
	if got.MinPopulation != before.MinPopulation || got.InitialHerbivores != before.InitialHerbivores {
		t.Error("unpatched fields changed")
	}

	for i := 0; i < 120; i++ {
		sim.Step(1.0 / 60)
	}
	if sim.FoodCount() > 12 {
		t.Errorf("food = %d, new max 12 not honoured", sim.FoodCount())
	}
}

func TestResetRestartsIdentifiers(t *testing.T) {
	sim, _, _ := newTestSim(t, config.DefaultSettings(), nil)
	for i := 0; i < 200; i++ {
		sim.Step(1.0 / 60)
	}

	if err := sim.Handle(Reset{}); err != nil {
		t.Fatal(err)
	}

	cfg := sim.Settings()
	if sim.HerbivoreCount() != cfg.InitialHerbivores || sim.CarnivoreCount() != cfg.InitialCarnivores {
		t.Errorf("after reset %d/%d, want %d/%d",
			sim.HerbivoreCount(), sim.CarnivoreCount(), cfg.InitialHerbivores, cfg.InitialCarnivores)
	}
	if sim.FoodCount() != 0 || sim.Tick() != 0 || sim.SimTime() != 0 {
		t.Error("reset should clear food and time")
	}
	first := sim.Store().Creatures()[0]
	if id := sim.Store().Creature(first).ID; id != 1 {
		t.Errorf("first ID after reset = %d, want 1", id)
	}
}

func TestResize(t *testing.T) {
	sim, _, _ := newTestSim(t, config.DefaultSettings(), func(o *Options) { o.SpatialIndex = true })
	if err := sim.Handle(Resize{WorldWidth: 200, WorldHeight: 100}); err != nil {
		t.Fatal(err)
	}
	if err := sim.Handle(Resize{WorldWidth: -1, WorldHeight: 100}); !errors.Is(err, ErrInvalidWorldSize) {
		t.Errorf("err = %v, want ErrInvalidWorldSize", err)
	}
	sim.Step(1.0 / 60)
	for _, c := range sim.Frame().Creatures {
		if c.X > 200 || c.Y > 100 {
			t.Fatalf("creature %d at (%v, %v) outside resized world", c.ID, c.X, c.Y)
		}
	}
}

func TestSeededRunsAreReproducible(t *testing.T) {
	run := func(index bool) (int, int, int) {
		sim, _, _ := newTestSim(t, config.DefaultSettings(), func(o *Options) {
			o.Seed = 99
			o.SpatialIndex = index
			o.GridCellSize = 50
		})
		for i := 0; i < 1200; i++ {
			sim.Step(1.0 / 60)
		}
		return sim.HerbivoreCount(), sim.CarnivoreCount(), sim.FoodCount()
	}

	h1, c1, f1 := run(false)
	h2, c2, f2 := run(false)
	if h1 != h2 || c1 != c2 || f1 != f2 {
		t.Errorf("same seed diverged: %d/%d/%d vs %d/%d/%d", h1, c1, f1, h2, c2, f2)
	}
	h3, c3, f3 := run(true)
	if h1 != h3 || c1 != c3 || f1 != f3 {
		t.Errorf("grid index changed the outcome: %d/%d/%d vs %d/%d/%d", h1, c1, f1, h3, c3, f3)
	}
}

func TestWindowCallback(t *testing.T) {
	var windows []telemetry.WindowStats
	sim, _, _ := newTestSim(t, config.DefaultSettings(), func(o *Options) {
		o.StatsWindowSec = 2
		o.WindowCallback = func(s telemetry.WindowStats) { windows = append(windows, s) }
	})
	for i := 0; i < 300; i++ {
		sim.Step(1.0 / 60)
	}
	if len(windows) != 2 {
		t.Fatalf("got %d windows over 5 simulated seconds, want 2", len(windows))
	}
	if windows[0].FoodSpawned == 0 {
		t.Error("window should count spawned food")
	}
	if windows[1].WindowStartTick != windows[0].WindowEndTick {
		t.Error("windows should be contiguous")
	}
}
