// Package game owns the ecosystem simulation context and its tick loop.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Simulation is one self-contained ecosystem. It is not safe for concurrent
// use: a single goroutine (see Runner) owns it.
type Simulation struct {
	store    *systems.EntityStore
	rng      *rand.Rand
	seed     int64
	settings config.Settings
	bounds   systems.Bounds

	initialized bool
	hasSink     bool
	target      RenderTarget

	spatialIndex bool
	gridCellSize float64

	reporter       *telemetry.Reporter
	collector      *telemetry.Collector
	perf           *telemetry.PerfCollector
	output         *telemetry.OutputManager
	windowCallback func(telemetry.WindowStats)
	logStats       bool
	logger         *slog.Logger

	tick    int64
	simTime float64
	extinct bool

	frame Frame
}

// New creates an uninitialized simulation. Send it an Initialize message
// before stepping.
func New(opts Options) *Simulation {
	opts.withDefaults()

	s := &Simulation{
		store:          systems.NewEntityStore(),
		rng:            rand.New(rand.NewSource(opts.Seed)),
		seed:           opts.Seed,
		settings:       opts.Settings,
		hasSink:        opts.StatsSink != nil,
		spatialIndex:   opts.SpatialIndex,
		gridCellSize:   opts.GridCellSize,
		collector:      telemetry.NewCollector(opts.StatsWindowSec),
		perf:           telemetry.NewPerfCollector(opts.PerfWindow, nil),
		output:         opts.Output,
		windowCallback: opts.WindowCallback,
		logStats:       opts.LogStats,
		logger:         opts.Logger,
	}

	var sink telemetry.Sink = telemetry.Discard
	if opts.StatsSink != nil {
		sink = opts.StatsSink
	}
	if s.output != nil {
		sink = telemetry.Multi{sink, telemetry.SinkFunc(s.writeSnapshot)}
	}
	s.reporter = telemetry.NewReporter(sink, opts.StatsInterval, opts.Clock)
	return s
}

func (s *Simulation) writeSnapshot(snap telemetry.Snapshot) {
	if err := s.output.WriteSnapshot(snap); err != nil {
		s.logger.Error("failed to write stats", "error", err)
	}
}

// Handle applies one inbound message synchronously.
func (s *Simulation) Handle(msg Message) error {
	switch m := msg.(type) {
	case Initialize:
		if err := s.initialize(m); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return nil
	case *Initialize:
		return s.Handle(*m)
	case UpdateConfig:
		if !s.initialized {
			return fmt.Errorf("updateConfig: %w", ErrNotInitialized)
		}
		s.applyConfig(m.Patch)
		return nil
	case Resize:
		if !s.initialized {
			return fmt.Errorf("resize: %w", ErrNotInitialized)
		}
		if !validSize(m.WorldWidth, m.WorldHeight) {
			return fmt.Errorf("resize %vx%v: %w", m.WorldWidth, m.WorldHeight, ErrInvalidWorldSize)
		}
		s.bounds = systems.Bounds{Width: m.WorldWidth, Height: m.WorldHeight}
		s.store.ResizePreyIndex(m.WorldWidth, m.WorldHeight)
		s.logger.Info("world resized", "width", m.WorldWidth, "height", m.WorldHeight)
		return nil
	case Reset:
		if !s.initialized {
			return fmt.Errorf("reset: %w", ErrNotInitialized)
		}
		s.reset()
		s.logger.Info("simulation reset",
			"herbivores", s.store.Herbivores(),
			"carnivores", s.store.Carnivores(),
		)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}
}

func validSize(w, h float64) bool {
	return w > 0 && h > 0 && !math.IsInf(w, 0) && !math.IsInf(h, 0)
}

func (s *Simulation) initialize(m Initialize) error {
	if m.Target == nil {
		return ErrNoRenderTarget
	}
	if !s.hasSink {
		return ErrNoStatsSink
	}
	if !validSize(m.WorldWidth, m.WorldHeight) {
		return fmt.Errorf("%vx%v: %w", m.WorldWidth, m.WorldHeight, ErrInvalidWorldSize)
	}

	if m.Config != nil {
		s.settings = m.Config.Sanitize()
	}
	s.target = m.Target
	s.bounds = systems.Bounds{Width: m.WorldWidth, Height: m.WorldHeight}
	if s.spatialIndex {
		s.store.EnablePreyIndex(m.WorldWidth, m.WorldHeight, s.gridCellSize)
	}
	s.reset()
	s.initialized = true

	s.logger.Info("simulation initialized",
		"seed", s.seed,
		"width", m.WorldWidth,
		"height", m.WorldHeight,
		"herbivores", s.store.Herbivores(),
		"carnivores", s.store.Carnivores(),
		"spatial_index", s.store.HasPreyIndex(),
	)
	return nil
}

// reset clears both collections, restarts identifiers and re-seeds.
func (s *Simulation) reset() {
	s.store.Clear()
	systems.SeedInitialPopulation(s.store, s.rng, s.bounds, s.settings.InitialHerbivores, s.settings.InitialCarnivores)
	s.tick = 0
	s.simTime = 0
	s.extinct = false
	s.collector.Restart(0, 0)
	s.reporter.Restart()
}

func (s *Simulation) applyConfig(p config.Patch) {
	next := s.settings.Apply(p)
	changed := s.settings.Changed(next)
	s.settings = next
	if len(changed) > 0 {
		s.logger.Info("config applied", "changed", changed)
	}
}

// Step advances the simulation by one tick of realDT wall seconds, scaled by
// the speed multiplier. Negative or NaN durations count as zero. Does
// nothing before initialization.
func (s *Simulation) Step(realDT float64) {
	if !s.initialized {
		return
	}
	if math.IsNaN(realDT) || realDT < 0 || math.IsInf(realDT, 0) {
		realDT = 0
	}
	dt := realDT * s.settings.SimulationSpeedMultiplier

	s.perf.StartTick()

	spawned := systems.MaybeSpawnFood(s.store, s.rng, s.bounds, s.settings.FoodRate, s.settings.MaxFood, dt)
	s.perf.Lap(telemetry.PhaseFoodSpawn)

	eaten, turns := 0, 0
	// Children appended during the pass wait for the next tick.
	n := len(s.store.Creatures())
	for i := 0; i < n; i++ {
		e := s.store.Creatures()[i]
		if !s.store.Creature(e).Alive {
			continue
		}
		turns++
		if s.stepCreature(e, dt) {
			eaten++
		}
	}

	s.store.Compact()
	s.perf.Lap(telemetry.PhaseCompaction)

	h, c := systems.RespawnIfBelowThreshold(s.store, s.rng, s.bounds, s.settings.RespawnEnabled, s.settings.MinPopulation)
	if h > 0 || c > 0 {
		s.logger.Debug("respawned", "herbivores", h, "carnivores", c, "tick", s.tick)
	}
	s.perf.Lap(telemetry.PhaseRespawn)

	s.tick++
	s.simTime += dt

	s.collector.RecordFood(spawned, eaten)
	s.collector.RecordRespawn(h, c)
	s.trackExtinction()
	s.flushTelemetry()
	s.reporter.Maybe(s)
	s.perf.Lap(telemetry.PhaseTelemetry)

	s.perf.EndTick(turns)
}

// stepCreature runs the per-creature pipeline. Reports whether e ate food.
func (s *Simulation) stepCreature(e ecs.Entity, dt float64) (ate bool) {
	cr := s.store.Creature(e)
	cr.Age += dt
	kind := cr.Kind

	systems.Plan(s.store, s.rng, e, s.settings.CarnivoreChaseEnabled)
	s.perf.Lap(telemetry.PhaseBehavior)

	pos, vel, _, _ := s.store.Get(e)
	ox, oy := pos.X, pos.Y
	systems.Integrate(pos, vel, dt, s.bounds)
	s.store.Moved(e, ox, oy)
	s.perf.Lap(telemetry.PhasePhysics)

	if kind == components.Herbivore {
		ate = systems.Feed(s.store, e)
	} else if _, ok := systems.Predate(s.store, e); ok {
		s.collector.RecordDeath(components.Herbivore, components.CausePredation)
	}

	s.store.Creature(e).Satiation += dt

	if born := systems.Reproduce(s.store, s.rng, e, s.bounds, s.settings.MutationRate); born > 0 {
		s.collector.RecordBirth(kind, born)
	}

	if cause := systems.CheckDeath(s.store, e); cause != components.CauseNone {
		s.collector.RecordDeath(kind, cause)
	}
	s.perf.Lap(telemetry.PhaseInteraction)
	return ate
}

func (s *Simulation) trackExtinction() {
	alive := s.store.Herbivores() + s.store.Carnivores()
	switch {
	case alive == 0 && !s.extinct:
		s.extinct = true
		s.logger.Warn("population extinct", "tick", s.tick, "sim_time", s.simTime)
	case alive > 0 && s.extinct:
		s.extinct = false
		s.logger.Info("population recovered", "tick", s.tick, "creatures", alive)
	}
}

// Render hands the current frame to the render target.
func (s *Simulation) Render() {
	if !s.initialized {
		return
	}
	s.perf.RecordFrame()
	s.target.Draw(s.Frame())
}

// Frame rebuilds and returns the reusable frame view. The returned value is
// overwritten by the next call.
func (s *Simulation) Frame() *Frame {
	f := &s.frame
	f.Width, f.Height = s.bounds.Width, s.bounds.Height
	f.Tick = s.tick
	f.SimTime = s.simTime
	f.Herbivores = s.store.Herbivores()
	f.Carnivores = s.store.Carnivores()

	f.Creatures = f.Creatures[:0]
	for _, e := range s.store.Creatures() {
		pos, _, cr, g := s.store.Get(e)
		if !cr.Alive {
			continue
		}
		f.Creatures = append(f.Creatures, CreatureView{
			ID:       cr.ID,
			X:        pos.X,
			Y:        pos.Y,
			Kind:     cr.Kind,
			ColorTag: g.ColorTag,
			Size:     g.Size,
		})
	}

	f.Food = f.Food[:0]
	for _, e := range s.store.FoodItems() {
		if s.store.Eaten(e) {
			continue
		}
		p := s.store.Position(e)
		f.Food = append(f.Food, FoodView{X: p.X, Y: p.Y})
	}
	return f
}

// Initialized reports whether an Initialize message has been applied.
func (s *Simulation) Initialized() bool { return s.initialized }

// Tick returns the number of completed ticks since the last reset.
func (s *Simulation) Tick() int64 { return s.tick }

// SimTime returns simulated seconds since the last reset.
func (s *Simulation) SimTime() float64 { return s.simTime }

// HerbivoreCount returns the live herbivore count.
func (s *Simulation) HerbivoreCount() int { return s.store.Herbivores() }

// CarnivoreCount returns the live carnivore count.
func (s *Simulation) CarnivoreCount() int { return s.store.Carnivores() }

// FoodCount returns the live food count.
func (s *Simulation) FoodCount() int { return s.store.FoodCount() }

// SpeciesCounts returns live herbivores per colour tag.
func (s *Simulation) SpeciesCounts() map[uint32]int { return s.store.SpeciesCounts() }

// Settings returns the current configuration.
func (s *Simulation) Settings() config.Settings { return s.settings }

// WorldSize returns the world extent.
func (s *Simulation) WorldSize() (float64, float64) { return s.bounds.Width, s.bounds.Height }

// Seed returns the seed of the random source.
func (s *Simulation) Seed() int64 { return s.seed }

// Perf returns the rolling step timing.
func (s *Simulation) Perf() telemetry.PerfStats { return s.perf.Stats() }

// Store exposes the entity store for inspection in tests and tools.
func (s *Simulation) Store() *systems.EntityStore { return s.store }
