// Package main provides CMA-ES optimization for finding ecosystem settings
// that keep both species alive and balanced.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ecosim/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalSeeds returns n seeds, preferring the configured ones.
func evalSeeds(configured []int64, n int) []int64 {
	if n <= 0 {
		n = len(configured)
	}
	if n <= 0 {
		n = 3
	}
	seeds := make([]int64, n)
	for i := range seeds {
		if i < len(configured) {
			seeds[i] = configured[i]
			continue
		}
		seeds[i] = int64(i*1000 + 42)
	}
	return seeds
}

func main() {
	// CLI flags; zero means "use the optimize section of the config".
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 0, "Maximum simulation duration in ticks (cap)")
	seeds := flag.Int("seeds", 0, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if *outputDir == "" {
		logger.Error("--output is required")
		os.Exit(2)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	if err := config.Init(*configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	baseCfg := config.Cfg()

	if *maxTicks <= 0 {
		*maxTicks = baseCfg.Optimize.MaxTicks
	}
	if *maxTicks <= 0 {
		*maxTicks = 36000
	}
	if *maxEvals <= 0 {
		*maxEvals = baseCfg.Optimize.MaxEvals
	}
	if *maxEvals <= 0 {
		*maxEvals = 200
	}

	params := NewParamVector(baseCfg.Simulation)
	runSeeds := evalSeeds(baseCfg.Optimize.Seeds, *seeds)

	width, height := baseCfg.Server.WorldWidth, baseCfg.Server.WorldHeight
	if width <= 0 || height <= 0 {
		width, height = baseCfg.WorldSize()
	}
	evaluator := NewFitnessEvaluator(params, int64(*maxTicks), runSeeds, baseCfg.Simulation, width, height)
	evaluator.statsWindow = baseCfg.Telemetry.StatsWindow

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		logger.Error("failed to create log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	var bestFitness float64 = 1e9
	var bestParams []float64
	startTime := time.Now()

	evalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := evalFunc(x)
		evalCount++

		// Clamped values are the ones actually simulated.
		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = make([]float64, len(clamped))
			copy(bestParams, clamped)
		}

		quality := evaluator.LastQuality()
		row := []string{
			strconv.Itoa(evalCount),
			fmt.Sprintf("%.6f", fitness),
			fmt.Sprintf("%.4f", quality),
		}
		for _, v := range clamped {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		survivalSec := -fitness / (1.0 + 0.2*quality) * evalDT
		fmt.Printf("Eval %d/%d: survived=%.0fs quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, survivalSec, quality, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", len(runSeeds), *maxTicks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		logger.Info("optimization ended", "reason", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		logger.Error("no evaluations completed")
		os.Exit(1)
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.0f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	best := params.ApplyToSettings(baseCfg.Simulation, bestParams)
	// Respawn was disabled only for evaluation.
	best.RespawnEnabled = baseCfg.Simulation.RespawnEnabled

	settingsPath := filepath.Join(*outputDir, "best_settings.yaml")
	if err := config.WriteSettingsYAML(settingsPath, best); err != nil {
		logger.Error("failed to write best settings", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nBest settings saved to: %s\n", settingsPath)

	bestCfg := *baseCfg
	bestCfg.Simulation = best
	bestConfigPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(bestConfigPath); err != nil {
		logger.Error("failed to write best config", "error", err)
	} else {
		fmt.Printf("Best config saved to: %s\n", bestConfigPath)
	}
}
