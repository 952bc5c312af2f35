package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/telemetry"
)

// ChartView selects what the population chart plots.
type ChartView int

const (
	ChartTotals  ChartView = iota // herbivores, carnivores and food
	ChartSpecies                  // one line per herbivore colour tag
)

// PopulationChart plots the snapshot history as line series.
type PopulationChart struct {
	renderer *Renderer
	bounds   rl.Rectangle
	View     ChartView
}

// NewPopulationChart creates a chart occupying the given screen rectangle.
func NewPopulationChart(bounds rl.Rectangle) *PopulationChart {
	return &PopulationChart{renderer: NewRenderer(), bounds: bounds}
}

// ToggleView switches between the totals and species views.
func (c *PopulationChart) ToggleView() {
	if c.View == ChartTotals {
		c.View = ChartSpecies
	} else {
		c.View = ChartTotals
	}
}

// SetBounds moves the chart.
func (c *PopulationChart) SetBounds(bounds rl.Rectangle) { c.bounds = bounds }

// Draw renders the chart for h.
func (c *PopulationChart) Draw(h *telemetry.History) {
	th := c.renderer.Theme
	b := c.bounds
	c.renderer.DrawPanel(int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height))

	title := "Population"
	if c.View == ChartSpecies {
		title = "Herbivore species"
	}
	rl.DrawText(title, int32(b.X)+th.Padding, int32(b.Y)+4, th.HeaderFontSize, th.SectionHeader)

	plot := rl.Rectangle{
		X:      b.X + float32(th.Padding),
		Y:      b.Y + 24,
		Width:  b.Width - float32(2*th.Padding),
		Height: b.Height - 24 - float32(th.Padding),
	}
	points := h.Points()
	if len(points) < 2 {
		rl.DrawText("waiting for stats", int32(plot.X), int32(plot.Y), th.FontSize, th.LabelColor)
		return
	}

	span := points[len(points)-1].T - points[0].T
	rl.DrawText(fmt.Sprintf("%.0fs", span), int32(plot.X+plot.Width)-30, int32(b.Y)+4, th.FontSize, th.LabelColor)

	if c.View == ChartSpecies {
		peak := float32(max(h.PeakSpecies(), 1))
		for _, tag := range h.SpeciesTags() {
			c.series(plot, len(points), peak, TagColor(tag, 255), func(i int) float32 {
				return float32(points[i].SpeciesCounts[tag])
			})
		}
		return
	}

	creatures, food := h.PeakTotals()
	peak := float32(max(creatures, 1))
	foodPeak := float32(max(food, 1))
	// Food uses its own scale, it usually dwarfs the creature counts.
	c.series(plot, len(points), foodPeak, th.FoodColor, func(i int) float32 { return float32(points[i].Food) })
	c.series(plot, len(points), peak, th.HerbivoreColor, func(i int) float32 { return float32(points[i].Herbivores) })
	c.series(plot, len(points), peak, th.CarnivoreColor, func(i int) float32 { return float32(points[i].Carnivores) })
	rl.DrawText(fmt.Sprintf("max %d", creatures), int32(plot.X), int32(plot.Y), th.FontSize, th.LabelColor)
}

func (c *PopulationChart) series(plot rl.Rectangle, n int, peak float32, color rl.Color, value func(int) float32) {
	step := plot.Width / float32(n-1)
	prev := rl.Vector2{X: plot.X, Y: plot.Y + plot.Height*(1-value(0)/peak)}
	for i := 1; i < n; i++ {
		next := rl.Vector2{X: plot.X + step*float32(i), Y: plot.Y + plot.Height*(1-value(i)/peak)}
		rl.DrawLineEx(prev, next, 1.5, color)
		prev = next
	}
}
