package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Fixed real time per evaluation step.
const evalDT = 1.0 / 60

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	base        config.Settings
	width       float64
	height      float64
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Respawn is always disabled.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, base config.Settings, width, height float64) *FitnessEvaluator {
	base.RespawnEnabled = false
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		base:        base,
		width:       width,
		height:      height,
		statsWindow: 10.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either species stays below this for
// extinctionGraceSec simulated seconds, it counts as functionally extinct.
const (
	minViablePop       = 2
	extinctionGraceSec = 20.0
	warmupSec          = 5.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64                   // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via WindowCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	settings := fe.params.ApplyToSettings(fe.base, x)

	// Each seed gets its own simulation; they run in parallel.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(settings, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: computeFitness(result.survivalTicks, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(settings config.Settings, seed int64) *runResult {
	result := &runResult{}

	sim := game.New(game.Options{
		Seed:           seed,
		Settings:       settings,
		StatsSink:      telemetry.Discard,
		StatsWindowSec: fe.statsWindow,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		WindowCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err := sim.Handle(game.Initialize{
		WorldWidth:  fe.width,
		WorldHeight: fe.height,
		Target:      game.RenderFunc(func(*game.Frame) {}),
	}); err != nil {
		return result
	}

	dt := evalDT * settings.SimulationSpeedMultiplier
	var herbBelowSec, carnBelowSec float64

	for sim.Tick() < fe.maxTicks {
		sim.Step(evalDT)

		if sim.SimTime() < warmupSec {
			continue
		}

		herb := sim.HerbivoreCount()
		carn := sim.CarnivoreCount()

		// Hard extinction: either species completely gone
		if herb == 0 || carn == 0 {
			result.survivalTicks = sim.Tick()
			return result
		}

		herbBelowSec = belowFor(herbBelowSec, herb, dt)
		carnBelowSec = belowFor(carnBelowSec, carn, dt)
		if herbBelowSec >= extinctionGraceSec || carnBelowSec >= extinctionGraceSec {
			result.survivalTicks = sim.Tick()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// belowFor accumulates time spent below minViablePop, resetting on recovery.
func belowFor(acc float64, count int, dt float64) float64 {
	if count < minViablePop {
		return acc + dt
	}
	return 0
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
func computeFitness(survivalTicks int64, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.40
	qualityWeightStability = 0.40
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 1 // skip first N windows (warmup)
	qualityMinPop        = 2 // exclude windows where either species < this
	targetRatio          = 7.5
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	valid := windows[qualityWarmupWindows:]

	var ratioSum, huntSum float64
	var ratioCount, huntCount int

	herbCounts := make([]float64, 0, len(valid))
	carnCounts := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Herbivores < qualityMinPop || w.Carnivores < qualityMinPop {
			continue
		}

		herbCounts = append(herbCounts, float64(w.Herbivores))
		carnCounts = append(carnCounts, float64(w.Carnivores))

		// 1. Population ratio score
		ratio := float64(w.Herbivores) / float64(w.Carnivores)
		logErr := math.Log(ratio / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		// 3. Hunting activity: kills per carnivore in the window
		killsPerCarn := float64(w.Kills) / float64(w.Carnivores)
		huntSum += 1.0 - math.Exp(-killsPerCarn)
		huntCount++
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	// 2. Population stability (CV across all valid windows)
	stabilityScore := 0.0
	if len(herbCounts) >= 2 {
		cvHerb := telemetry.CoefficientOfVariation(herbCounts)
		cvCarn := telemetry.CoefficientOfVariation(carnCounts)
		stabilityScore = math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))
	}

	huntScore := huntSum / float64(huntCount)

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntScore

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
