// Package server exposes a Runner over websockets: clients send the
// simulation messages as JSON envelopes and receive stats snapshots and,
// optionally, frames.
package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

// Inbound message types. "init" and "config" are accepted as aliases.
const (
	TypeInitialize   = "initialize"
	TypeUpdateConfig = "updateConfig"
	TypeResize       = "resize"
	TypeReset        = "reset"
)

// Outbound message types.
const (
	TypeStats = "stats"
	TypeFrame = "frame"
	TypeError = "error"
)

// Envelope is the inbound wire form of a message.
type Envelope struct {
	Type   string          `json:"type"`
	Width  float64         `json:"width,omitempty"`
	Height float64         `json:"height,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// StatsMessage is the outbound stats frame: the snapshot fields sit next to
// the type, {"type":"stats","t":...,"herbivores":...}.
type StatsMessage struct {
	Type string `json:"type"`
	telemetry.Snapshot
}

// Outbound is the wire form of frames and errors.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Decoder turns envelopes into simulation messages. Initialize always gets
// the server's render target, and falls back to the default world size.
type Decoder struct {
	Target        game.RenderTarget
	DefaultWidth  float64
	DefaultHeight float64
}

// Decode parses one inbound frame.
func (d Decoder) Decode(data []byte) (game.Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Type {
	case TypeInitialize, "init":
		w, h := env.Width, env.Height
		if w <= 0 || h <= 0 {
			w, h = d.DefaultWidth, d.DefaultHeight
		}
		msg := game.Initialize{WorldWidth: w, WorldHeight: h, Target: d.Target}
		if len(env.Config) > 0 {
			// Missing fields keep their defaults.
			s := config.DefaultSettings()
			if err := json.Unmarshal(env.Config, &s); err != nil {
				return nil, fmt.Errorf("%w: config: %v", ErrMalformed, err)
			}
			msg.Config = &s
		}
		return msg, nil

	case TypeUpdateConfig, "config":
		var p config.Patch
		if len(env.Config) > 0 {
			if err := json.Unmarshal(env.Config, &p); err != nil {
				return nil, fmt.Errorf("%w: config: %v", ErrMalformed, err)
			}
		}
		return game.UpdateConfig{Patch: p}, nil

	case TypeResize:
		if env.Width <= 0 || env.Height <= 0 {
			return nil, fmt.Errorf("%w: resize needs positive width and height", ErrMalformed)
		}
		return game.Resize{WorldWidth: env.Width, WorldHeight: env.Height}, nil

	case TypeReset:
		return game.Reset{}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// EncodeStats renders a flat stats message.
func EncodeStats(s telemetry.Snapshot) ([]byte, error) {
	return json.Marshal(StatsMessage{Type: TypeStats, Snapshot: s})
}

// EncodeFrame renders a frame envelope.
func EncodeFrame(f *game.Frame) ([]byte, error) {
	return json.Marshal(Outbound{Type: TypeFrame, Data: f})
}

// EncodeError renders an error envelope.
func EncodeError(err error) []byte {
	data, _ := json.Marshal(Outbound{Type: TypeError, Error: err.Error()})
	return data
}
