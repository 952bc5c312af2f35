package server

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
)

func TestDecode(t *testing.T) {
	target := game.RenderFunc(func(*game.Frame) {})
	d := Decoder{Target: target, DefaultWidth: 800, DefaultHeight: 600}

	tests := []struct {
		name    string
		in      string
		wantErr error
		check   func(t *testing.T, m game.Message)
	}{
		{
			name: "initialize with defaults",
			in:   `{"type":"initialize"}`,
			check: func(t *testing.T, m game.Message) {
				init := m.(game.Initialize)
				if init.WorldWidth != 800 || init.WorldHeight != 600 {
					t.Errorf("size = %vx%v, want default 800x600", init.WorldWidth, init.WorldHeight)
				}
				if init.Target == nil || init.Config != nil {
					t.Errorf("target = %v, config = %v", init.Target, init.Config)
				}
			},
		},
		{
			name: "init alias with config",
			in:   `{"type":"init","width":300,"height":200,"config":{"foodRate":40,"respawnEnabled":false}}`,
			check: func(t *testing.T, m game.Message) {
				init := m.(game.Initialize)
				if init.WorldWidth != 300 || init.Config == nil {
					t.Fatalf("got %+v", init)
				}
				if init.Config.FoodRate != 40 || init.Config.RespawnEnabled {
					t.Errorf("config = %+v", *init.Config)
				}
				if init.Config.MaxFood != 800 {
					t.Errorf("missing fields should keep defaults, max food = %d", init.Config.MaxFood)
				}
			},
		},
		{
			name: "update config patch",
			in:   `{"type":"updateConfig","config":{"mutationRate":0.2}}`,
			check: func(t *testing.T, m game.Message) {
				p := m.(game.UpdateConfig).Patch
				if p.MutationRate == nil || *p.MutationRate != 0.2 {
					t.Errorf("patch = %+v", p)
				}
				if p.FoodRate != nil {
					t.Error("unset field should stay nil")
				}
			},
		},
		{
			name: "resize",
			in:   `{"type":"resize","width":100,"height":50}`,
			check: func(t *testing.T, m game.Message) {
				if r := m.(game.Resize); r.WorldWidth != 100 || r.WorldHeight != 50 {
					t.Errorf("resize = %+v", r)
				}
			},
		},
		{
			name:  "reset",
			in:    `{"type":"reset"}`,
			check: func(t *testing.T, m game.Message) { _ = m.(game.Reset) },
		},
		{name: "bad resize", in: `{"type":"resize","width":0}`, wantErr: ErrMalformed},
		{name: "not json", in: `nope`, wantErr: ErrMalformed},
		{name: "missing type", in: `{}`, wantErr: ErrMalformed},
		{name: "unknown type", in: `{"type":"explode"}`, wantErr: ErrUnknownType},
		{name: "bad config", in: `{"type":"config","config":{"foodRate":"fast"}}`, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := d.Decode([]byte(tt.in))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			tt.check(t, m)
		})
	}
}

func TestEncodeStats(t *testing.T) {
	data, err := EncodeStats(telemetry.Snapshot{T: 2, Herbivores: 3, SpeciesCounts: map[uint32]int{1: 3}})
	if err != nil {
		t.Fatal(err)
	}

	var out StatsMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Type != TypeStats || out.T != 2 || out.Herbivores != 3 || out.SpeciesCounts[1] != 3 {
		t.Errorf("decoded %+v", out)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"type", "t", "herbivores", "carnivores", "food", "speciesCounts"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level %q in %s", key, data)
		}
	}
	if _, ok := raw["data"]; ok {
		t.Errorf("stats should not be nested under data: %s", data)
	}
}
