package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/components"
)

// Collector accumulates events within simulated-time windows and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	windowStartTick int64
	windowStartTime float64

	herbBirths int
	carnBirths int
	herbDeaths int
	carnDeaths int

	deathsAge        int
	deathsStarvation int
	deathsPredation  int

	kills       int
	foodSpawned int
	foodEaten   int

	herbRespawned int
	carnRespawned int
}

// NewCollector creates a collector flushing every windowDurationSec
// simulated seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 10
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordBirth records a birth by reproduction.
func (c *Collector) RecordBirth(kind components.Kind, n int) {
	if kind == components.Herbivore {
		c.herbBirths += n
	} else {
		c.carnBirths += n
	}
}

// RecordDeath records a death and its cause.
func (c *Collector) RecordDeath(kind components.Kind, cause components.DeathCause) {
	if kind == components.Herbivore {
		c.herbDeaths++
	} else {
		c.carnDeaths++
	}
	switch cause {
	case components.CauseAge:
		c.deathsAge++
	case components.CauseStarvation:
		c.deathsStarvation++
	case components.CausePredation:
		c.deathsPredation++
		c.kills++
	}
}

// RecordFood records food spawned and eaten this tick.
func (c *Collector) RecordFood(spawned, eaten int) {
	c.foodSpawned += spawned
	c.foodEaten += eaten
}

// RecordRespawn records creatures added by the respawn check.
func (c *Collector) RecordRespawn(herbivores, carnivores int) {
	c.herbRespawned += herbivores
	c.carnRespawned += carnivores
}

// ShouldFlush returns true once a full window of simulated time has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDurationSec
}

// Restart discards the current window and starts a new one at (tick, simTime).
func (c *Collector) Restart(tick int64, simTime float64) {
	*c = Collector{windowDurationSec: c.windowDurationSec, windowStartTick: tick, windowStartTime: simTime}
}

// Population is the live-creature sample taken at flush time.
type Population struct {
	Herbivores []components.Genome
	Carnivores []components.Genome
	Food       int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(tick int64, simTime float64, pop Population) WindowStats {
	s := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		SimTimeSec:      simTime,

		Herbivores: len(pop.Herbivores),
		Carnivores: len(pop.Carnivores),
		Food:       pop.Food,

		HerbBirths: c.herbBirths,
		CarnBirths: c.carnBirths,
		HerbDeaths: c.herbDeaths,
		CarnDeaths: c.carnDeaths,

		DeathsAge:        c.deathsAge,
		DeathsStarvation: c.deathsStarvation,
		DeathsPredation:  c.deathsPredation,
		Kills:            c.kills,

		FoodSpawned:   c.foodSpawned,
		FoodEaten:     c.foodEaten,
		HerbRespawned: c.herbRespawned,
		CarnRespawned: c.carnRespawned,

		ActiveColors: countColors(pop.Herbivores),
	}
	s.HerbSpeed = ComputeTraitStats(genomeField(pop.Herbivores, func(g components.Genome) float64 { return g.Speed }))
	s.HerbLifespan = ComputeTraitStats(genomeField(pop.Herbivores, func(g components.Genome) float64 { return g.Lifespan }))
	s.HerbFoodNeeded = ComputeTraitStats(genomeField(pop.Herbivores, func(g components.Genome) float64 { return float64(g.FoodNeeded) }))
	s.HerbOffspring = ComputeTraitStats(genomeField(pop.Herbivores, func(g components.Genome) float64 { return float64(g.OffspringCount) }))
	s.CarnSpeed = ComputeTraitStats(genomeField(pop.Carnivores, func(g components.Genome) float64 { return g.Speed }))
	s.CarnLifespan = ComputeTraitStats(genomeField(pop.Carnivores, func(g components.Genome) float64 { return g.Lifespan }))

	c.Restart(tick, simTime)
	return s
}

func genomeField(gs []components.Genome, f func(components.Genome) float64) []float64 {
	out := make([]float64, len(gs))
	for i, g := range gs {
		out[i] = f(g)
	}
	return out
}

func countColors(gs []components.Genome) int {
	seen := make(map[uint32]struct{}, 8)
	for _, g := range gs {
		seen[g.ColorTag] = struct{}{}
	}
	return len(seen)
}

// TraitStats summarizes one genome field over a population.
type TraitStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeTraitStats calculates mean, sample std and empirical percentiles.
// Empty input yields zeros.
func ComputeTraitStats(values []float64) TraitStats {
	if len(values) == 0 {
		return TraitStats{}
	}
	var ts TraitStats
	if len(values) == 1 {
		ts.Mean = values[0]
	} else {
		ts.Mean, ts.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	ts.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	ts.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	ts.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return ts
}

// CoefficientOfVariation returns std/mean of values, 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
