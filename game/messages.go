package game

import (
	"errors"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
)

// Startup and routing errors returned by Handle.
var (
	ErrNoRenderTarget   = errors.New("no render target")
	ErrNoStatsSink      = errors.New("no stats sink")
	ErrInvalidWorldSize = errors.New("invalid world size")
	ErrNotInitialized   = errors.New("simulation not initialized")
	ErrUnknownMessage   = errors.New("unknown message")
)

// Message is an inbound command for the simulation.
type Message interface {
	messageKind() string
}

// Initialize sets the world extent, render target and configuration and
// seeds a fresh population. A nil Config keeps the current settings.
type Initialize struct {
	WorldWidth  float64
	WorldHeight float64
	Target      RenderTarget
	Config      *config.Settings
}

// UpdateConfig applies a partial configuration change atomically.
type UpdateConfig struct {
	Patch config.Patch
}

// Resize changes the world extent.
type Resize struct {
	WorldWidth  float64
	WorldHeight float64
}

// Reset clears the world and re-seeds it from the current configuration.
type Reset struct{}

func (Initialize) messageKind() string   { return "initialize" }
func (UpdateConfig) messageKind() string { return "updateConfig" }
func (Resize) messageKind() string       { return "resize" }
func (Reset) messageKind() string        { return "reset" }

// Kind returns the wire name of a message.
func Kind(m Message) string { return m.messageKind() }

// RenderTarget is the presentation hand-off. Draw is called on the tick loop
// after every tick; it must not block and must not retain f after returning.
type RenderTarget interface {
	Draw(f *Frame)
}

// RenderFunc adapts a function to a RenderTarget.
type RenderFunc func(*Frame)

// Draw calls fn(f).
func (fn RenderFunc) Draw(f *Frame) { fn(f) }

// CreatureView is the read-only rendering view of one creature.
type CreatureView struct {
	ID       uint64          `json:"id"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Kind     components.Kind `json:"kind"`
	ColorTag uint32          `json:"color"`
	Size     float64         `json:"size"`
}

// FoodView is the rendering view of one food item.
type FoodView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is the per-tick view handed to the render target.
type Frame struct {
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Tick       int64          `json:"tick"`
	SimTime    float64        `json:"simTime"`
	Herbivores int            `json:"herbivores"`
	Carnivores int            `json:"carnivores"`
	Creatures  []CreatureView `json:"creatures"`
	Food       []FoodView     `json:"food"`
}

// Clone returns a deep copy of f that is safe to keep.
func (f *Frame) Clone() *Frame {
	out := *f
	out.Creatures = append([]CreatureView(nil), f.Creatures...)
	out.Food = append([]FoodView(nil), f.Food...)
	return &out
}
