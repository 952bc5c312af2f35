// Package renderer draws simulation frames with raylib. Frames arrive on
// the tick goroutine through a game.FrameBuffer; drawing happens on the
// main thread, which owns the GL context.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/camera"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/game"
)

// Colours.
var (
	BackgroundColor = rl.Black
	FoodColor       = rl.Color{R: 34, G: 197, B: 94, A: 255}
	GridColor       = rl.Color{R: 40, G: 40, B: 48, A: 255}
	BorderColor     = rl.Color{R: 70, G: 70, B: 80, A: 255}
)

// FoodSize is the edge of the square drawn for a food item, in world units.
const FoodSize = 2

// Renderer draws the latest frame handed to its buffer.
type Renderer struct {
	buffer *game.FrameBuffer
	cam    *camera.Camera

	frame   game.Frame
	version uint64

	ShowGrid bool
	GridStep int
}

// New creates a renderer that reads from a fresh frame buffer.
func New(cam *camera.Camera, showGrid bool, gridStep int) *Renderer {
	if gridStep <= 0 {
		gridStep = 50
	}
	return &Renderer{
		buffer:   &game.FrameBuffer{},
		cam:      cam,
		ShowGrid: showGrid,
		GridStep: gridStep,
	}
}

// Target returns the render target to hand to the simulation.
func (r *Renderer) Target() game.RenderTarget { return r.buffer }

// Frame returns the frame drawn last. Valid until the next Render.
func (r *Renderer) Frame() *game.Frame { return &r.frame }

// HasFrame reports whether any frame has arrived yet.
func (r *Renderer) HasFrame() bool { return r.version > 0 }

// Render pulls the newest frame and draws the world. Must be called between
// rl.BeginDrawing and rl.EndDrawing.
func (r *Renderer) Render() {
	r.version = r.buffer.CopyTo(&r.frame, r.version)

	rl.ClearBackground(BackgroundColor)
	if r.ShowGrid {
		r.drawGrid()
	}
	r.drawBorder()

	foodPx := r.cam.Scale(FoodSize)
	for _, f := range r.frame.Food {
		sx, sy := r.cam.WorldToScreen(f.X, f.Y)
		rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: foodPx, Y: foodPx}, FoodColor)
	}

	for _, c := range r.frame.Creatures {
		if !r.cam.IsVisible(c.X, c.Y, c.Size) {
			continue
		}
		sx, sy := r.cam.WorldToScreen(c.X, c.Y)
		radius := r.cam.Scale(c.Size)
		color := tagColor(c.ColorTag)
		if c.Kind == components.Carnivore {
			// Carnivores get an outline so they stand out at small sizes.
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius+1, rl.White)
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, color)
	}
}

func (r *Renderer) drawGrid() {
	step := float64(r.GridStep)
	w, h := r.frame.Width, r.frame.Height
	_, bottom := r.cam.WorldToScreen(0, h)
	right, _ := r.cam.WorldToScreen(w, 0)

	for x := step; x < w; x += step {
		sx, _ := r.cam.WorldToScreen(x, 0)
		rl.DrawLineV(rl.Vector2{X: sx, Y: 0}, rl.Vector2{X: sx, Y: bottom}, GridColor)
	}
	for y := step; y < h; y += step {
		_, sy := r.cam.WorldToScreen(0, y)
		rl.DrawLineV(rl.Vector2{X: 0, Y: sy}, rl.Vector2{X: right, Y: sy}, GridColor)
	}
}

func (r *Renderer) drawBorder() {
	w, h := r.cam.WorldToScreen(r.frame.Width, r.frame.Height)
	rl.DrawRectangleLinesEx(rl.Rectangle{Width: w, Height: h}, 1, BorderColor)
}

func tagColor(tag uint32) rl.Color {
	cr, cg, cb := components.RGB(tag)
	return rl.Color{R: cr, G: cg, B: cb, A: 255}
}
