package components

import "testing"

func TestGenomeClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Genome
		want Genome
	}{
		{
			name: "all below",
			in:   Genome{Speed: 1, FoodNeeded: 0, OffspringCount: 0, Lifespan: 5, Size: 0.2},
			want: Genome{Speed: MinSpeed, FoodNeeded: 1, OffspringCount: 1, Lifespan: MinLifespan, Size: MinSize},
		},
		{
			name: "offspring above",
			in:   Genome{Speed: 50, FoodNeeded: 4, OffspringCount: 9, Lifespan: 60, Size: 3},
			want: Genome{Speed: 50, FoodNeeded: 4, OffspringCount: MaxOffspring, Lifespan: 60, Size: 3},
		},
		{
			name: "in range untouched",
			in:   Genome{Speed: 42, FoodNeeded: 3, OffspringCount: 2, Lifespan: 70, ColorTag: 0x22c55e, Size: 2.5},
			want: Genome{Speed: 42, FoodNeeded: 3, OffspringCount: 2, Lifespan: 70, ColorTag: 0x22c55e, Size: 2.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.in
			g.Clamp()
			if g != tt.want {
				t.Errorf("Clamp() = %+v, want %+v", g, tt.want)
			}
		})
	}
}

func TestPalette(t *testing.T) {
	if len(Palette(Herbivore)) == 0 || len(Palette(Carnivore)) == 0 {
		t.Fatal("palettes must not be empty")
	}
	r, g, b := RGB(0xef4444)
	if r != 0xef || g != 0x44 || b != 0x44 {
		t.Errorf("RGB = %x %x %x", r, g, b)
	}
	if Herbivore.String() != "herbivore" || Carnivore.String() != "carnivore" {
		t.Error("unexpected kind names")
	}
}
