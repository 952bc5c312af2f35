package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one timed section of a simulation step.
type Phase uint8

const (
	PhaseFoodSpawn Phase = iota
	PhaseBehavior
	PhasePhysics
	PhaseInteraction
	PhaseCompaction
	PhaseRespawn
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{
	"food_spawn", "behavior", "physics", "interaction", "compaction", "respawn", "telemetry",
}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// PerCreature reports whether the phase is lapped once per creature and
// summed over the creature pass.
func (p Phase) PerCreature() bool {
	return p == PhaseBehavior || p == PhasePhysics || p == PhaseInteraction
}

type tickSample struct {
	total     time.Duration
	phases    [NumPhases]time.Duration
	creatures int
}

// PerfCollector times simulation steps over a rolling window of ticks.
//
// A step calls StartTick, then Lap at the end of each phase, then EndTick.
// Lap charges everything since the previous lap to the named phase, so the
// creature pass laps behavior, physics and interaction for every creature
// and the per-tick totals are sums over the pass.
type PerfCollector struct {
	now     func() time.Time
	samples []tickSample
	next    int
	count   int

	cur       tickSample
	tickStart time.Time
	mark      time.Time

	lastFrame time.Time
	frameDur  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
// A nil clock uses time.Now.
func NewPerfCollector(windowSize int, now func() time.Time) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	if now == nil {
		now = time.Now
	}
	return &PerfCollector{
		now:     now,
		samples: make([]tickSample, windowSize),
	}
}

// StartTick begins timing a new step.
func (p *PerfCollector) StartTick() {
	t := p.now()
	p.tickStart, p.mark = t, t
	p.cur = tickSample{}
}

// Lap charges the time since the previous lap, or since StartTick, to phase.
func (p *PerfCollector) Lap(phase Phase) {
	t := p.now()
	p.cur.phases[phase] += t.Sub(p.mark)
	p.mark = t
}

// EndTick records the step. creatures is the number of creatures that took
// a turn in the pass.
func (p *PerfCollector) EndTick(creatures int) {
	p.cur.total = p.now().Sub(p.tickStart)
	p.cur.creatures = creatures

	p.samples[p.next] = p.cur
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// RecordFrame records the interval between two rendered frames.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frameDur = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// PerfStats aggregates the current window.
type PerfStats struct {
	Ticks   int
	AvgTick time.Duration
	MaxTick time.Duration

	PhaseAvg [NumPhases]time.Duration

	// AvgCreatures is the mean number of creatures per pass; PerCreature the
	// mean behavior+physics+interaction cost of one creature turn.
	AvgCreatures float64
	PerCreature  time.Duration

	TicksPerSecond float64
	FPS            float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var out PerfStats
	if p.frameDur > 0 {
		out.FPS = float64(time.Second) / float64(p.frameDur)
	}
	if p.count == 0 {
		return out
	}

	var total, creatureTime time.Duration
	var phaseSum [NumPhases]time.Duration
	creatures := 0
	for _, s := range p.samples[:p.count] {
		total += s.total
		if s.total > out.MaxTick {
			out.MaxTick = s.total
		}
		for ph, d := range s.phases {
			phaseSum[ph] += d
			if Phase(ph).PerCreature() {
				creatureTime += d
			}
		}
		creatures += s.creatures
	}

	n := time.Duration(p.count)
	out.Ticks = p.count
	out.AvgTick = total / n
	for ph := range phaseSum {
		out.PhaseAvg[ph] = phaseSum[ph] / n
	}
	out.AvgCreatures = float64(creatures) / float64(p.count)
	if creatures > 0 {
		out.PerCreature = creatureTime / time.Duration(creatures)
	}
	if out.AvgTick > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTick)
	}
	return out
}

// Pct returns the share of the average tick spent in phase, in percent.
func (s PerfStats) Pct(phase Phase) float64 {
	if s.AvgTick <= 0 {
		return 0
	}
	return float64(s.PhaseAvg[phase]) / float64(s.AvgTick) * 100
}

// LogStats logs the window at Info.
func (s PerfStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
		slog.Float64("avg_creatures", s.AvgCreatures),
		slog.Int64("per_creature_ns", s.PerCreature.Nanoseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		if pct := s.Pct(ph); pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the flat perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int64   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	AvgCreatures   float64 `csv:"avg_creatures"`
	PerCreatureNS  int64   `csv:"per_creature_ns"`
	FoodSpawnPct   float64 `csv:"food_spawn_pct"`
	BehaviorPct    float64 `csv:"behavior_pct"`
	PhysicsPct     float64 `csv:"physics_pct"`
	InteractionPct float64 `csv:"interaction_pct"`
	CompactionPct  float64 `csv:"compaction_pct"`
	RespawnPct     float64 `csv:"respawn_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the window for perf.csv.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		AvgCreatures:   s.AvgCreatures,
		PerCreatureNS:  s.PerCreature.Nanoseconds(),
		FoodSpawnPct:   s.Pct(PhaseFoodSpawn),
		BehaviorPct:    s.Pct(PhaseBehavior),
		PhysicsPct:     s.Pct(PhasePhysics),
		InteractionPct: s.Pct(PhaseInteraction),
		CompactionPct:  s.Pct(PhaseCompaction),
		RespawnPct:     s.Pct(PhaseRespawn),
		TelemetryPct:   s.Pct(PhaseTelemetry),
	}
}
