// Package camera maps the bounded world onto the screen.
package camera

// Default zoom limits.
const (
	DefaultMinZoom = 0.25
	DefaultMaxZoom = 4.0
)

// Camera controls the viewport into the simulation world.
// The world origin sits at the top-left of the screen and the world always
// fills the viewport, so its extent is the viewport divided by the zoom.
type Camera struct {
	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera for the given viewport. A non-positive zoom means 1.
func New(viewportW, viewportH, zoom float32) *Camera {
	c := &Camera{
		Zoom:      1,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   DefaultMinZoom,
		MaxZoom:   DefaultMaxZoom,
	}
	if zoom > 0 {
		c.SetZoom(zoom)
	}
	return c
}

// WorldSize returns the world extent visible at the current zoom.
func (c *Camera) WorldSize() (w, h float64) {
	return float64(c.ViewportW / c.Zoom), float64(c.ViewportH / c.Zoom)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float32) {
	return float32(wx) * c.Zoom, float32(wy) * c.Zoom
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float64) {
	return float64(sx / c.Zoom), float64(sy / c.Zoom)
}

// Scale converts a world length to pixels.
func (c *Camera) Scale(length float64) float32 {
	return float32(length) * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with the given world
// radius overlaps the viewport.
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	sx, sy := c.WorldToScreen(wx, wy)
	r := c.Scale(radius)
	return sx+r >= 0 && sy+r >= 0 && sx-r <= c.ViewportW && sy-r <= c.ViewportH
}

// Resize updates viewport dimensions. Reports whether the world extent changed.
func (c *Camera) Resize(viewportW, viewportH float32) bool {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return false
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	return true
}

// SetZoom sets the zoom level, clamped to min/max. Reports whether it changed.
func (c *Camera) SetZoom(zoom float32) bool {
	next := clamp(zoom, c.MinZoom, c.MaxZoom)
	if next == c.Zoom {
		return false
	}
	c.Zoom = next
	return true
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) bool {
	return c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to 1:1 zoom.
func (c *Camera) Reset() bool {
	return c.SetZoom(1)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
