// Package palette holds the curated wallpaper color palettes and the
// sequencer that hands them out without immediate repetition.
package palette

import (
	"image/color"
	"strings"
)

// Palette is a background/foreground pair chosen for readable contrast.
type Palette struct {
	Background RGB
	Foreground RGB
	Label      string
}

// catalog is never mutated; Catalog hands out copies.
var catalog = []Palette{
	// Dark themes
	{Background: RGB{30, 30, 35}, Foreground: RGB{200, 200, 210}, Label: "Neutral dark"},
	{Background: RGB{25, 35, 45}, Foreground: RGB{180, 200, 220}, Label: "Ocean dark"},
	{Background: RGB{40, 30, 45}, Foreground: RGB{220, 200, 230}, Label: "Purple haze"},
	{Background: RGB{35, 40, 35}, Foreground: RGB{200, 220, 200}, Label: "Forest dark"},
	// Light themes
	{Background: RGB{240, 240, 245}, Foreground: RGB{60, 60, 70}, Label: "Neutral light"},
	{Background: RGB{235, 240, 245}, Foreground: RGB{40, 50, 60}, Label: "Sky light"},
	{Background: RGB{245, 235, 240}, Foreground: RGB{50, 40, 55}, Label: "Rose light"},
	{Background: RGB{240, 245, 240}, Foreground: RGB{45, 55, 45}, Label: "Mint light"},
	// Color themes
	{Background: RGB{139, 58, 74}, Foreground: RGB{176, 196, 222}, Label: "Stiletto"},
	{Background: RGB{245, 247, 220}, Foreground: RGB{95, 158, 160}, Label: "Mint Julep"},
	{Background: RGB{187, 229, 211}, Foreground: RGB{180, 76, 67}, Label: "Surf"},
	{Background: RGB{46, 75, 143}, Foreground: RGB{181, 184, 227}, Label: "Sapphire"},
	{Background: RGB{75, 0, 130}, Foreground: RGB{255, 182, 193}, Label: "Blue Gem"},
	{Background: RGB{74, 103, 65}, Foreground: RGB{255, 69, 0}, Label: "Shadow Green"},
	{Background: RGB{227, 38, 54}, Foreground: RGB{255, 215, 0}, Label: "Alizarin Crimson"},
	{Background: RGB{102, 205, 170}, Foreground: RGB{139, 69, 19}, Label: "Monte Carlo"},
}

// Catalog returns the curated palettes in their fixed order.
func Catalog() []Palette {
	out := make([]Palette, len(catalog))
	copy(out, catalog)
	return out
}

// Size is the number of palettes in the catalog.
func Size() int { return len(catalog) }

// Lookup finds a catalog palette by label, ignoring case.
func Lookup(label string) (Palette, bool) {
	for _, p := range catalog {
		if strings.EqualFold(p.Label, strings.TrimSpace(label)) {
			return p, true
		}
	}
	return Palette{}, false
}

// BackgroundRGBA and ForegroundRGBA are the opaque draw colors.
func (p Palette) BackgroundRGBA() color.RGBA { return p.Background.RGBA() }

func (p Palette) ForegroundRGBA() color.RGBA { return p.Foreground.RGBA() }
