package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Herbivores int
	Carnivores int
	Food       int
	Species    int
	Tick       int64
	SimTime    float64
	Speed      float64
	Zoom       float32
	FPS        int32
	Paused     bool
	StatsAge   float64 // wall seconds covered by the latest snapshot
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	th := h.renderer.Theme

	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	x := int32(10)
	y := int32(35)
	y = h.renderer.DrawSwatchValue(x, y, th.HerbivoreColor, fmt.Sprintf("Herbivores: %d (%d species)", data.Herbivores, data.Species))
	y = h.renderer.DrawSwatchValue(x, y, th.CarnivoreColor, fmt.Sprintf("Carnivores: %d", data.Carnivores))
	y = h.renderer.DrawSwatchValue(x, y, th.FoodColor, fmt.Sprintf("Food: %d", data.Food))

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Sim: %.0fs | Speed: %.2gx | Zoom: %.2gx | FPS: %d", data.Tick, data.SimTime, data.Speed, data.Zoom, data.FPS),
		x, y+4, 14, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", x, y+24, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// DataFromSnapshot fills the population fields of d from a stats snapshot.
func DataFromSnapshot(d HUDData, s telemetry.Snapshot) HUDData {
	d.Herbivores = s.Herbivores
	d.Carnivores = s.Carnivores
	d.Food = s.Food
	d.Species = len(s.SpeciesCounts)
	d.StatsAge = s.T
	return d
}
