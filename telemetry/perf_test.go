package telemetry

import (
	"math"
	"testing"
	"time"
)

// stepClock advances by step on every call.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

// runTick laps food spawn, one behavior/physics/interaction triple per
// creature and compaction, then ends the tick.
func runTick(pc *PerfCollector, creatures int) {
	pc.StartTick()
	pc.Lap(PhaseFoodSpawn)
	for i := 0; i < creatures; i++ {
		pc.Lap(PhaseBehavior)
		pc.Lap(PhasePhysics)
		pc.Lap(PhaseInteraction)
	}
	pc.Lap(PhaseCompaction)
	pc.EndTick(creatures)
}

func TestPerfCollectorLaps(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0), step: time.Millisecond}
	pc := NewPerfCollector(10, clock.now)

	for i := 0; i < 4; i++ {
		runTick(pc, 2)
	}
	stats := pc.Stats()

	// 8 laps plus the untracked span before EndTick.
	if stats.AvgTick != 9*time.Millisecond {
		t.Errorf("AvgTick = %v, want 9ms", stats.AvgTick)
	}
	if stats.Ticks != 4 {
		t.Errorf("Ticks = %d, want 4", stats.Ticks)
	}

	tests := []struct {
		phase Phase
		want  time.Duration
	}{
		{PhaseFoodSpawn, time.Millisecond},
		{PhaseBehavior, 2 * time.Millisecond},
		{PhasePhysics, 2 * time.Millisecond},
		{PhaseInteraction, 2 * time.Millisecond},
		{PhaseCompaction, time.Millisecond},
		{PhaseRespawn, 0},
	}
	for _, tt := range tests {
		if got := stats.PhaseAvg[tt.phase]; got != tt.want {
			t.Errorf("%s avg = %v, want %v", tt.phase, got, tt.want)
		}
	}

	if stats.AvgCreatures != 2 {
		t.Errorf("AvgCreatures = %v, want 2", stats.AvgCreatures)
	}
	if stats.PerCreature != 3*time.Millisecond {
		t.Errorf("PerCreature = %v, want 3ms", stats.PerCreature)
	}
	if pct := stats.Pct(PhaseBehavior); math.Abs(pct-200.0/9) > 1e-9 {
		t.Errorf("behavior pct = %v, want %v", pct, 200.0/9)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgTickUS != 9000 || row.PerCreatureNS != 3e6 {
		t.Errorf("unexpected csv row %+v", row)
	}
	if row.PhysicsPct != row.BehaviorPct || row.RespawnPct != 0 {
		t.Errorf("unexpected phase shares %+v", row)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(2, clock.now)

	for _, step := range []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond} {
		clock.step = step
		pc.StartTick()
		pc.EndTick(0)
	}

	stats := pc.Stats()
	if stats.Ticks != 2 {
		t.Fatalf("Ticks = %d, want 2", stats.Ticks)
	}
	if stats.AvgTick != 3*time.Millisecond || stats.MaxTick != 4*time.Millisecond {
		t.Errorf("avg/max = %v/%v, want 3ms/4ms", stats.AvgTick, stats.MaxTick)
	}
	if stats.PerCreature != 0 {
		t.Errorf("PerCreature = %v with no creatures, want 0", stats.PerCreature)
	}
}

func TestPerfCollectorEmptyAndFrames(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0), step: 20 * time.Millisecond}
	pc := NewPerfCollector(0, clock.now)

	stats := pc.Stats()
	if stats.Ticks != 0 || stats.AvgTick != 0 || stats.Pct(PhaseBehavior) != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	pc.RecordFrame()
	pc.RecordFrame()
	if fps := pc.Stats().FPS; math.Abs(fps-50) > 1e-9 {
		t.Errorf("FPS = %v, want 50", fps)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseInteraction.String() != "interaction" || NumPhases.String() != "unknown" {
		t.Error("unexpected phase names")
	}
	if !PhasePhysics.PerCreature() || PhaseCompaction.PerCreature() {
		t.Error("unexpected per-creature phases")
	}
}
