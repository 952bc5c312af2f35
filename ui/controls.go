package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/config"
)

// ControlAction is what the controls panel asks of the simulation this frame.
type ControlAction struct {
	Patch config.Patch // empty when nothing changed
	Reset bool
	Chart bool // toggle the chart view
}

// ControlsPanel renders raygui sliders and toggles for the live settings.
type ControlsPanel struct {
	renderer *Renderer
	x, y     float32
	width    float32
	visible  bool

	settings config.Settings
}

// NewControlsPanel creates a new controls panel showing s.
func NewControlsPanel(x, y, width float32, s config.Settings) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		settings: s,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Settings returns the values the panel currently shows.
func (c *ControlsPanel) Settings() config.Settings { return c.settings }

// SetSettings replaces the values the panel shows, e.g. after a reload.
func (c *ControlsPanel) SetSettings(s config.Settings) { c.settings = s }

const (
	sliderHeight = 16
	rowHeight    = 36
)

// Draw renders the panel and returns the requested action.
func (c *ControlsPanel) Draw() ControlAction {
	var action ControlAction
	if !c.visible {
		return action
	}

	th := c.renderer.Theme
	next := c.settings
	panelHeight := float32(rowHeight*7 + 3*24 + 60)
	c.renderer.DrawPanel(int32(c.x), int32(c.y), int32(c.width), int32(panelHeight))

	x := c.x + float32(th.Padding)
	y := c.y + float32(th.Padding)
	w := c.width - float32(2*th.Padding)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 24

	c.sliderFloat(x, &y, w, fmt.Sprintf("Food rate: %.0f/s", next.FoodRate), &next.FoodRate, 1, 100)
	c.sliderFloat(x, &y, w, fmt.Sprintf("Mutation: %.0f%%", next.MutationRate*100), &next.MutationRate, 0, 0.5)
	c.sliderInt(x, &y, w, fmt.Sprintf("Max food: %d", next.MaxFood), &next.MaxFood, 50, 3000)
	c.sliderFloat(x, &y, w, fmt.Sprintf("Speed: %.1fx", next.SimulationSpeedMultiplier), &next.SimulationSpeedMultiplier, 0.1, 5)
	c.sliderInt(x, &y, w, fmt.Sprintf("Min population: %d", next.MinPopulation), &next.MinPopulation, 1, 60)
	c.sliderInt(x, &y, w, fmt.Sprintf("Initial herbivores: %d", next.InitialHerbivores), &next.InitialHerbivores, 1, 300)
	c.sliderInt(x, &y, w, fmt.Sprintf("Initial carnivores: %d", next.InitialCarnivores), &next.InitialCarnivores, 1, 60)

	next.RespawnEnabled = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 14, Height: 14}, "Respawn", next.RespawnEnabled)
	y += 24
	next.CarnivoreChaseEnabled = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 14, Height: 14}, "Carnivores chase", next.CarnivoreChaseEnabled)
	y += 28

	half := (w - 8) / 2
	action.Reset = gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, "Reset")
	action.Chart = gui.Button(rl.Rectangle{X: x + half + 8, Y: y, Width: half, Height: 24}, "Chart view")

	next = next.Sanitize()
	action.Patch = c.settings.Diff(next)
	c.settings = next
	return action
}

// slider draws a labelled slider and returns its value. The float32
// round trip is lossy, so callers only store the result when it moved.
func (c *ControlsPanel) slider(x float32, y *float32, w float32, label string, value, lo, hi float32) float32 {
	// Widen the range so loaded values outside it are not clamped away.
	lo, hi = min(lo, value), max(hi, value)
	rl.DrawText(label, int32(x), int32(*y), c.renderer.Theme.FontSize, c.renderer.Theme.LabelColor)
	v := gui.SliderBar(rl.Rectangle{X: x, Y: *y + 14, Width: w, Height: sliderHeight}, "", "", value, lo, hi)
	*y += rowHeight
	return v
}

func (c *ControlsPanel) sliderFloat(x float32, y *float32, w float32, label string, field *float64, lo, hi float32) {
	cur := float32(*field)
	if v := c.slider(x, y, w, label, cur, lo, hi); v != cur {
		*field = float64(v)
	}
}

func (c *ControlsPanel) sliderInt(x float32, y *float32, w float32, label string, field *int, lo, hi float32) {
	if v := int(c.slider(x, y, w, label, float32(*field), lo, hi)); v != *field {
		*field = v
	}
}
