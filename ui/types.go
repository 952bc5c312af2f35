// Package ui draws the heads-up display, the population chart and the
// runtime controls on top of the world view.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	HerbivoreColor rl.Color
	CarnivoreColor rl.Color
	FoodColor      rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		HerbivoreColor: rl.Color{R: 34, G: 197, B: 94, A: 255},
		CarnivoreColor: rl.Color{R: 239, G: 68, B: 68, A: 255},
		FoodColor:      rl.Color{R: 250, G: 204, B: 21, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
