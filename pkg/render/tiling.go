// tiling.go - Diagonal lattice geometry and tile compositing.
//
// Lattice point (r, c) is centered at (c·s + r·o, r·s) where s is the
// average unrotated text dimension padded by 20% and o = s/2. Every row is
// shifted half a step from the previous one, which lines the pattern up
// along the 45° direction of the rotated tile.
package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

const (
	spacingPad = 1.2
	rowShift   = 0.5
	// Lattice steps added beyond the margin on every side.
	extraSteps = 3
)

// Lattice is the placement grid for one canvas and one tile.
type Lattice struct {
	Width, Height int
	Spacing       float64
	Offset        float64
	Margin        float64

	extra int
}

// NewLattice covers a width×height canvas for text measuring textW×textH,
// with a margin of max(textW, textH) plus three lattice steps on each side.
func NewLattice(width, height, textW, textH int) Lattice {
	return newLattice(width, height, textW, textH, float64(max(textW, textH)), extraSteps)
}

func newLattice(width, height, textW, textH int, margin float64, extra int) Lattice {
	s := float64(textW+textH) / 2 * spacingPad
	return Lattice{
		Width:   width,
		Height:  height,
		Spacing: s,
		Offset:  s * rowShift,
		Margin:  margin,
		extra:   extra,
	}
}

// Empty reports whether the lattice has no points (zero-size text).
func (l Lattice) Empty() bool { return l.Spacing <= 0 }

// Rows returns the inclusive row range. It is empty (first > last) for an
// empty lattice.
func (l Lattice) Rows() (first, last int) {
	if l.Empty() {
		return 0, -1
	}
	first = int(math.Ceil(-l.Margin/l.Spacing)) - l.extra
	last = int(math.Floor((float64(l.Height)+l.Margin)/l.Spacing)) + l.extra
	return first, last
}

// Cols returns the inclusive column range for row.
func (l Lattice) Cols(row int) (first, last int) {
	if l.Empty() {
		return 0, -1
	}
	shift := float64(row) * l.Offset
	first = int(math.Ceil((-l.Margin-shift)/l.Spacing)) - l.extra
	last = int(math.Floor((float64(l.Width)+l.Margin-shift)/l.Spacing)) + l.extra
	return first, last
}

// Center is the canvas position of lattice point (row, col).
func (l Lattice) Center(row, col int) (x, y float64) {
	return float64(col)*l.Spacing + float64(row)*l.Offset, float64(row) * l.Spacing
}

// Each visits every candidate point in row-major ascending order.
func (l Lattice) Each(fn func(row, col int, x, y float64)) {
	r0, r1 := l.Rows()
	for r := r0; r <= r1; r++ {
		c0, c1 := l.Cols(r)
		for c := c0; c <= c1; c++ {
			x, y := l.Center(r, c)
			fn(r, c, x, y)
		}
	}
}

// Placement returns the canvas rectangle a tile of size sz occupies when
// centered on (x, y).
func Placement(x, y float64, sz image.Point) image.Rectangle {
	tl := image.Pt(
		int(math.Round(x-float64(sz.X)/2)),
		int(math.Round(y-float64(sz.Y)/2)),
	)
	return image.Rectangle{Min: tl, Max: tl.Add(sz)}
}

// Stamp composites tile at every lattice point whose footprint touches the
// canvas and returns how many composites were made.
func Stamp(canvas *image.RGBA, tile *GlyphTile) int {
	b := canvas.Bounds()
	return stampLattice(canvas, tile, NewLattice(b.Dx(), b.Dy(), tile.TextWidth, tile.TextHeight))
}

func stampLattice(canvas *image.RGBA, tile *GlyphTile, l Lattice) int {
	mb := tile.Mask.Bounds()
	if l.Empty() || mb.Empty() {
		return 0
	}

	bounds := canvas.Bounds()
	src := image.NewUniform(tile.Color)
	sz := mb.Size()
	n := 0
	l.Each(func(_, _ int, x, y float64) {
		r := Placement(x, y, sz).Add(bounds.Min)
		if !r.Overlaps(bounds) {
			return
		}
		draw.DrawMask(canvas, r, src, image.Point{}, tile.Mask, mb.Min, draw.Over)
		n++
	})
	return n
}
