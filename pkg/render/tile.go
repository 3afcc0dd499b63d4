// tile.go - Glyph tile construction: measure the text, draw it once onto a
// doubled transparent surface, then rotate the surface 45° with Catmull-Rom
// resampling. The rotated alpha channel becomes the stamp used for every
// lattice placement.
package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// GlyphTile is one pre-rotated rendering of a text, stored as coverage
// only. Color is what the mask stamps onto a canvas.
type GlyphTile struct {
	Mask       *image.Alpha
	Color      color.RGBA
	TextWidth  int // unrotated ink width
	TextHeight int // unrotated ink height
}

// Measure returns the tight ink box of text in face. Empty or blank text
// measures 0×0.
func Measure(face font.Face, text string) (w, h int, bounds fixed.Rectangle26_6) {
	bounds, _ = font.BoundString(face, text)
	if bounds.Max.X <= bounds.Min.X || bounds.Max.Y <= bounds.Min.Y {
		return 0, 0, bounds
	}
	return (bounds.Max.X - bounds.Min.X).Ceil(), (bounds.Max.Y - bounds.Min.Y).Ceil(), bounds
}

// BuildTile renders text in fg onto a 2w×2h surface, centered, and rotates
// it 45° counter-clockwise with size expansion. A 0×0 measurement gives an
// empty mask.
func BuildTile(text string, face font.Face, fg color.RGBA) *GlyphTile {
	w, h, bounds := Measure(face, text)
	tile := &GlyphTile{Color: fg, TextWidth: w, TextHeight: h}
	if w == 0 || h == 0 {
		tile.Mask = image.NewAlpha(image.Rectangle{})
		return tile
	}

	surface := image.NewRGBA(image.Rect(0, 0, 2*w, 2*h))
	drawer := &font.Drawer{
		Dst:  surface,
		Src:  image.White,
		Face: face,
		// Puts the ink box's top-left corner at (w/2, h/2).
		Dot: fixed.Point26_6{
			X: fixed.I(w/2) - bounds.Min.X,
			Y: fixed.I(h/2) - bounds.Min.Y,
		},
	}
	drawer.DrawString(text)

	tile.Mask = alphaOf(rotate45(surface))
	return tile
}

// Size is the tile's footprint on the canvas.
func (t *GlyphTile) Size() image.Point {
	return t.Mask.Bounds().Size()
}

// rotate45 rotates src counter-clockwise by 45° into a square image large
// enough to hold every rotated corner. Pixels not covered by src stay
// transparent.
func rotate45(src *image.RGBA) *image.RGBA {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	c := math.Sqrt2 / 2
	n := int(math.Ceil(float64(sw+sh) * c))
	dst := image.NewRGBA(image.Rect(0, 0, n, n))

	sx, sy := float64(sw)/2, float64(sh)/2
	dx, dy := float64(n)/2, float64(n)/2

	// x' = x·cos + y·sin, y' = −x·sin + y·cos about the two centers.
	s2d := f64.Aff3{
		c, c, dx - sx*c - sy*c,
		-c, c, dy + sx*c - sy*c,
	}
	draw.CatmullRom.Transform(dst, s2d, src, src.Bounds(), draw.Src, nil)
	return dst
}

// alphaOf extracts the alpha channel of a freshly allocated RGBA image.
func alphaOf(img *image.RGBA) *image.Alpha {
	mask := image.NewAlpha(img.Bounds())
	for i := range mask.Pix {
		mask.Pix[i] = img.Pix[4*i+3]
	}
	return mask
}
