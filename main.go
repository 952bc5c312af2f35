package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
)

// headlessDT is the fixed real time per headless step.
const headlessDT = time.Second / 60

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Headless ticks between max-tick checks")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	var output *telemetry.OutputManager
	if *outputDir != "" {
		var err error
		output, err = telemetry.NewOutputManager(*outputDir)
		if err != nil {
			slog.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		defer output.Close()
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	opts := game.Options{
		Seed:           rngSeed,
		Settings:       cfg.Simulation,
		StatsInterval:  time.Duration(cfg.Telemetry.StatsIntervalMS) * time.Millisecond,
		SpatialIndex:   cfg.World.SpatialIndex,
		GridCellSize:   cfg.World.GridCellSize,
		StatsWindowSec: statsWindowSec,
		Output:         output,
		LogStats:       *logStats,
		Logger:         logger,
	}

	if *headless {
		if err := runHeadless(cfg, opts, *maxTicks, *stepsPerUpdate, *logStats); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runViewer(cfg, opts, *maxTicks); err != nil {
		slog.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless steps the simulation as fast as possible with a fixed real
// dt. The stats clock advances with the steps, so output is reproducible.
func runHeadless(cfg *config.Config, opts game.Options, maxTicks, stepsPerUpdate int, logStats bool) error {
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	clock := time.Unix(0, 0)
	opts.Clock = func() time.Time { return clock }
	opts.StatsSink = telemetry.Discard
	if logStats {
		opts.StatsSink = telemetry.SinkFunc(func(s telemetry.Snapshot) {
			slog.Info("stats", "t", s.T, "herbivores", s.Herbivores, "carnivores", s.Carnivores, "food", s.Food, "species", len(s.SpeciesCounts))
		})
	}

	sim := game.New(opts)
	w, h := cfg.WorldSize()
	if err := sim.Handle(game.Initialize{WorldWidth: w, WorldHeight: h, Target: game.RenderFunc(func(*game.Frame) {})}); err != nil {
		return err
	}

	slog.Info("starting headless simulation",
		"seed", sim.Seed(),
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
	)

	for {
		for i := 0; i < stepsPerUpdate; i++ {
			clock = clock.Add(headlessDT)
			sim.Step(headlessDT.Seconds())
		}

		if maxTicks > 0 && int(sim.Tick()) >= maxTicks {
			slog.Info("max ticks reached",
				"tick", sim.Tick(),
				"herbivores", sim.HerbivoreCount(),
				"carnivores", sim.CarnivoreCount(),
			)
			return nil
		}
	}
}
