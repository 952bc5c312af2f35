// Command ecoserver runs the ecosystem headless and serves it over
// websockets at /ws.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	configPath := flag.String("config", os.Getenv("ECOSIM_CONFIG"), "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", "", "Listen address (empty = config or ECOSIM_ADDR)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	listen := cfg.Server.Addr
	if env := os.Getenv("ECOSIM_ADDR"); env != "" {
		listen = env
	}
	if *addr != "" {
		listen = *addr
	}

	if err := run(cfg, listen, *seed, logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, addr string, seed int64, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runner *game.Runner
	hub := server.NewHub(server.HubOptions{
		Sender:         senderFunc(func(m game.Message) bool { return runner.Send(m) }),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MessageRate:    cfg.Server.MessageRate,
		MessageBurst:   cfg.Server.MessageBurst,
		DefaultWidth:   cfg.Server.WorldWidth,
		DefaultHeight:  cfg.Server.WorldHeight,
		Logger:         logger,
	})
	caster := server.NewFrameCaster(hub, cfg.Server.FrameEvery)
	hub.SetTarget(caster)

	sim := game.New(game.Options{
		Seed:           seed,
		Settings:       cfg.Simulation,
		StatsSink:      hub,
		StatsInterval:  time.Duration(cfg.Telemetry.StatsIntervalMS) * time.Millisecond,
		SpatialIndex:   cfg.World.SpatialIndex,
		GridCellSize:   cfg.World.GridCellSize,
		StatsWindowSec: cfg.Telemetry.StatsWindow,
		Logger:         logger,
	})
	runner = game.NewRunner(sim, game.RunnerOptions{
		TickInterval: time.Duration(cfg.Server.TickMS) * time.Millisecond,
		Logger:       logger,
	})

	// The world runs before any client connects; clients may re-initialize.
	runner.Send(game.Initialize{
		WorldWidth:  cfg.Server.WorldWidth,
		WorldHeight: cfg.Server.WorldHeight,
		Target:      caster,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	seedUsed := sim.Seed()
	errCh := make(chan error, 2)
	go func() { errCh <- runner.Run(ctx) }()
	go func() {
		slog.Info("ecoserver listening", "addr", addr, "seed", seedUsed)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case runErr = <-errCh:
		stop()
	}

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	return runErr
}

type senderFunc func(game.Message) bool

func (f senderFunc) Send(m game.Message) bool { return f(m) }
