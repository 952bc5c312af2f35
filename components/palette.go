package components

// Fixed per-kind colour palettes. A ColorTag is always one of these values.
var (
	HerbivorePalette = []uint32{0x22c55e, 0x4ade80, 0x84cc16, 0x14b8a6, 0x06b6d4, 0xa3e635}
	CarnivorePalette = []uint32{0xef4444, 0xf97316, 0xdc2626, 0xfb7185, 0xe11d48}
)

// Palette returns the colour palette for a kind.
func Palette(k Kind) []uint32 {
	if k == Carnivore {
		return CarnivorePalette
	}
	return HerbivorePalette
}

// RGB splits a colour tag into its channels.
func RGB(tag uint32) (r, g, b uint8) {
	return uint8(tag >> 16), uint8(tag >> 8), uint8(tag)
}
