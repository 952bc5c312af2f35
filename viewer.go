package main

import (
	"context"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/camera"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/renderer"
	"github.com/pthm-cable/ecosim/telemetry"
	"github.com/pthm-cable/ecosim/ui"
)

const controlsLegend = "[Space] Pause  [+/-] Zoom  [Home] 1x  [,/.] Speed  [R] Reset  [C] Controls  [V] Chart  [G] Grid"

// viewer is the raylib front end. It runs on the main thread; the
// simulation runs on the runner goroutine and is reached only via messages.
type viewer struct {
	runner   *game.Runner
	cam      *camera.Camera
	render   *renderer.Renderer
	stats    *telemetry.Latest
	history  *telemetry.History
	hud      *ui.HUD
	chart    *ui.PopulationChart
	controls *ui.ControlsPanel
	hudData  ui.HUDData
}

func runViewer(cfg *config.Config, opts game.Options, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Ecosystem")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := &viewer{
		cam:      camera.New(float32(cfg.Screen.Width), float32(cfg.Screen.Height), float32(cfg.Screen.Zoom)),
		stats:    telemetry.NewLatest(),
		history:  telemetry.NewHistory(telemetry.DefaultHistoryPoints),
		hud:      ui.NewHUD(),
		controls: ui.NewControlsPanel(float32(cfg.Screen.Width)-250, 10, 240, cfg.Simulation),
	}
	v.render = renderer.New(v.cam, cfg.Screen.ShowGrid, cfg.Screen.GridStep)
	v.chart = ui.NewPopulationChart(v.chartBounds())
	v.hudData = ui.HUDData{Title: "Ecosystem", Speed: cfg.Simulation.SimulationSpeedMultiplier}

	opts.StatsSink = v.stats
	sim := game.New(opts)
	v.runner = game.NewRunner(sim, game.RunnerOptions{
		TickInterval: tickInterval(cfg),
		Logger:       opts.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- v.runner.Run(ctx) }()

	settings := cfg.Simulation
	w, h := v.cam.WorldSize()
	v.runner.Send(game.Initialize{WorldWidth: w, WorldHeight: h, Target: v.render.Target(), Config: &settings})

	for !rl.WindowShouldClose() {
		select {
		case err := <-done:
			return err
		default:
		}

		v.handleInput()
		v.pollStats()

		rl.BeginDrawing()
		v.render.Render()
		v.drawOverlay()
		rl.EndDrawing()

		if maxTicks > 0 && v.render.Frame().Tick >= int64(maxTicks) {
			slog.Info("max ticks reached", "tick", v.render.Frame().Tick)
			break
		}
	}

	cancel()
	return <-done
}

func (v *viewer) handleInput() {
	if rl.IsWindowResized() {
		if v.cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())) {
			v.sendResize()
		}
		v.chart.SetBounds(v.chartBounds())
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.runner.SetPaused(!v.runner.Paused())
	}

	// Zoom changes the world extent, so it is sent as a resize.
	zoomed := false
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		zoomed = v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		zoomed = v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		zoomed = v.cam.Reset()
	}
	if zoomed {
		v.sendResize()
	}

	if rl.IsKeyPressed(rl.KeyComma) {
		v.setSpeed(v.controls.Settings().SimulationSpeedMultiplier / 2)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.setSpeed(v.controls.Settings().SimulationSpeedMultiplier * 2)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		v.reset()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyV) {
		v.chart.ToggleView()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		v.render.ShowGrid = !v.render.ShowGrid
	}
}

func (v *viewer) sendResize() {
	w, h := v.cam.WorldSize()
	v.runner.Send(game.Resize{WorldWidth: w, WorldHeight: h})
}

func (v *viewer) setSpeed(speed float64) {
	cur := v.controls.Settings()
	next := cur
	next.SimulationSpeedMultiplier = speed
	next = next.Sanitize()
	v.controls.SetSettings(next)
	v.hudData.Speed = next.SimulationSpeedMultiplier
	v.runner.Send(game.UpdateConfig{Patch: cur.Diff(next)})
}

func (v *viewer) reset() {
	v.history.Clear()
	v.runner.Send(game.Reset{})
}

func (v *viewer) pollStats() {
	if s, ok := v.stats.Poll(); ok {
		v.history.Push(s)
		v.hudData = ui.DataFromSnapshot(v.hudData, s)
	}
}

func (v *viewer) drawOverlay() {
	f := v.render.Frame()
	d := v.hudData
	d.Tick = f.Tick
	d.SimTime = f.SimTime
	if v.render.HasFrame() {
		// Frame counts are newer than the last snapshot.
		d.Herbivores, d.Carnivores, d.Food = f.Herbivores, f.Carnivores, len(f.Food)
	}
	d.Zoom = v.cam.Zoom
	d.FPS = rl.GetFPS()
	d.Paused = v.runner.Paused()
	v.hud.Draw(d)
	v.hud.DrawControls(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), controlsLegend)

	v.chart.Draw(v.history)

	action := v.controls.Draw()
	if !action.Patch.Empty() {
		v.hudData.Speed = v.controls.Settings().SimulationSpeedMultiplier
		v.runner.Send(game.UpdateConfig{Patch: action.Patch})
	}
	if action.Reset {
		v.reset()
	}
	if action.Chart {
		v.chart.ToggleView()
	}
}

func (v *viewer) chartBounds() rl.Rectangle {
	sh := float32(rl.GetScreenHeight())
	return rl.Rectangle{X: 10, Y: sh - 200, Width: 360, Height: 160}
}

// tickInterval matches the tick loop to the display rate.
func tickInterval(cfg *config.Config) time.Duration {
	if cfg.Screen.TargetFPS <= 0 {
		return game.DefaultTickInterval
	}
	return time.Second / time.Duration(cfg.Screen.TargetFPS)
}
