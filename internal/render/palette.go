package render

var (
	softPalette  = []rune("  .·:;+=*oO@█")
	densePalette = []rune(" ░▒▓█▚▞▛▜▙▟")
	linesPalette = []rune(" `.-=+*/\\|╱╲╳█")
)

// Palette returns the glyph ramp used for trail brightness mapping.
func Palette(name string) []rune {
	switch name {
	case "dense":
		return densePalette
	case "lines":
		return linesPalette
	default:
		return softPalette
	}
}

// PaletteNames returns all palette identifiers.
func PaletteNames() []string {
	return []string{"soft", "dense", "lines"}
}
