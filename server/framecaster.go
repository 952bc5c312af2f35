package server

import "github.com/pthm-cable/ecosim/game"

// FrameCaster is a render target that broadcasts every Nth frame.
type FrameCaster struct {
	hub   *Hub
	every int
	n     int
}

// NewFrameCaster creates a caster. every <= 0 disables frames entirely.
func NewFrameCaster(hub *Hub, every int) *FrameCaster {
	return &FrameCaster{hub: hub, every: every}
}

// Draw implements game.RenderTarget. Called on the tick goroutine.
func (f *FrameCaster) Draw(frame *game.Frame) {
	if f.every <= 0 {
		return
	}
	f.n++
	if f.n%f.every != 0 {
		return
	}
	f.hub.BroadcastFrame(frame)
}

var _ game.RenderTarget = (*FrameCaster)(nil)
