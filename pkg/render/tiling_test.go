package render

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"golang.org/x/image/font/basicfont"
)

var (
	testBG = color.RGBA{227, 38, 54, 255}
	testFG = color.RGBA{255, 215, 0, 255}
)

// cellCovered reports whether (px, py) falls in the s×s cell centered on
// some candidate point of l.
func cellCovered(l Lattice, px, py float64) bool {
	half := l.Spacing / 2
	r0, r1 := l.Rows()
	for r := r0; r <= r1; r++ {
		_, cy := l.Center(r, 0)
		if math.Abs(py-cy) > half {
			continue
		}
		c0, c1 := l.Cols(r)
		near := int(math.Round((px - float64(r)*l.Offset) / l.Spacing))
		for c := near - 1; c <= near+1; c++ {
			if c < c0 || c > c1 {
				continue
			}
			if cx, _ := l.Center(r, c); math.Abs(px-cx) <= half {
				return true
			}
		}
	}
	return false
}

func firstGap(l Lattice, step int) (image.Point, bool) {
	for y := 0; y < l.Height; y += step {
		for x := 0; x < l.Width; x += step {
			if !cellCovered(l, float64(x)+0.5, float64(y)+0.5) {
				return image.Pt(x, y), true
			}
		}
	}
	return image.Point{}, false
}

func TestLatticeGeometry(t *testing.T) {
	l := NewLattice(100, 100, 20, 30)
	if l.Spacing != 30 || l.Offset != 15 || l.Margin != 30 {
		t.Fatalf("spacing %v offset %v margin %v", l.Spacing, l.Offset, l.Margin)
	}
	if x, y := l.Center(2, -1); x != 0 || y != 60 {
		t.Errorf("Center(2,-1) = (%v,%v), want (0,60)", x, y)
	}
	if r0, r1 := l.Rows(); r0 != -4 || r1 != 7 {
		t.Errorf("rows = [%d,%d], want [-4,7]", r0, r1)
	}
	if c0, c1 := l.Cols(1); c0 != -4 || c1 != 6 {
		t.Errorf("cols(1) = [%d,%d], want [-4,6]", c0, c1)
	}
}

func TestLatticeCoverage(t *testing.T) {
	tests := []struct {
		w, h, tw, th, step int
	}{
		{100, 100, 20, 30, 1},
		{333, 77, 41, 13, 1},
		{64, 480, 7, 13, 1},
		{1920, 1080, 610, 160, 3},
		{3840, 2160, 1290, 320, 7},
	}
	for _, tt := range tests {
		l := NewLattice(tt.w, tt.h, tt.tw, tt.th)
		if p, gap := firstGap(l, tt.step); gap {
			t.Errorf("%dx%d text %dx%d: pixel %v not covered", tt.w, tt.h, tt.tw, tt.th, p)
		}
	}
}

func TestLatticeShrunkMarginLeavesGap(t *testing.T) {
	// Without margin or extra steps the shifted odd rows stop short of the
	// right edge.
	l := newLattice(100, 100, 20, 30, 0, 0)
	p, gap := firstGap(l, 1)
	if !gap {
		t.Fatal("expected an uncovered pixel with zero margin")
	}
	if p.X < 90 {
		t.Errorf("first gap at %v, expected it at the right edge", p)
	}

	// The max(textW, textH) margin alone closes it.
	if p, gap := firstGap(newLattice(100, 100, 20, 30, 30, 0), 1); gap {
		t.Errorf("margin 30 still leaves %v uncovered", p)
	}
}

func TestLatticeEmpty(t *testing.T) {
	l := NewLattice(100, 100, 0, 0)
	if !l.Empty() {
		t.Fatal("zero-size text should give an empty lattice")
	}
	visited := 0
	l.Each(func(int, int, float64, float64) { visited++ })
	if visited != 0 {
		t.Errorf("visited %d points", visited)
	}
}

func TestLatticeOrder(t *testing.T) {
	l := NewLattice(50, 50, 10, 10)
	prevR, prevC := math.MinInt, math.MinInt
	l.Each(func(r, c int, _, _ float64) {
		if r < prevR || (r == prevR && c <= prevC) {
			t.Fatalf("(%d,%d) visited after (%d,%d)", r, c, prevR, prevC)
		}
		prevR, prevC = r, c
	})
}

func TestStampCullsOffCanvas(t *testing.T) {
	face := boldFace(t, 30)
	tile := BuildTile("Work", face, testFG)
	canvas := NewCanvas(320, 200, testBG)

	l := NewLattice(320, 200, tile.TextWidth, tile.TextHeight)
	total, overlapping := 0, 0
	l.Each(func(_, _ int, x, y float64) {
		total++
		if Placement(x, y, tile.Size()).Overlaps(canvas.Bounds()) {
			overlapping++
		}
	})

	n := Stamp(canvas, tile)
	if n != overlapping {
		t.Errorf("Stamp composited %d tiles, want %d", n, overlapping)
	}
	if n == 0 || n >= total {
		t.Errorf("composited %d of %d candidates, expected some culling", n, total)
	}
}

func TestStampDeterministic(t *testing.T) {
	face := boldFace(t, 30)
	a := NewCanvas(300, 180, testBG)
	b := NewCanvas(300, 180, testBG)
	Stamp(a, BuildTile("Personal", face, testFG))
	Stamp(b, BuildTile("Personal", face, testFG))
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("identical inputs produced different canvases")
	}
}

// onSegment reports whether c is bg blended toward fg by some t in [0,1].
func onSegment(c, bg, fg color.RGBA) bool {
	ch := func(x color.RGBA) [3]float64 { return [3]float64{float64(x.R), float64(x.G), float64(x.B)} }
	cv, bv, fv := ch(c), ch(bg), ch(fg)

	k := 0
	for i := 1; i < 3; i++ {
		if math.Abs(fv[i]-bv[i]) > math.Abs(fv[k]-bv[k]) {
			k = i
		}
	}
	tt := (cv[k] - bv[k]) / (fv[k] - bv[k])
	if tt < -0.02 || tt > 1.02 {
		return false
	}
	for i := 0; i < 3; i++ {
		if math.Abs(bv[i]+tt*(fv[i]-bv[i])-cv[i]) > 3 {
			return false
		}
	}
	return c.A == 255
}

func TestStampOnlyBlendsPaletteColors(t *testing.T) {
	for _, tt := range []struct {
		name string
		tile *GlyphTile
	}{
		{"opentype", BuildTile("Work", boldFace(t, 36), testFG)},
		{"basicfont", BuildTile("Work", basicfont.Face7x13, testFG)},
	} {
		canvas := NewCanvas(257, 143, testBG)
		Stamp(canvas, tt.tile)

		sawFG := false
		b := canvas.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := canvas.RGBAAt(x, y)
				if !onSegment(c, testBG, testFG) {
					t.Fatalf("%s: pixel (%d,%d) = %v is not a blend of %v and %v", tt.name, x, y, c, testBG, testFG)
				}
				if c == testFG {
					sawFG = true
				}
			}
		}
		// One-pixel bitmap strokes never reach full coverage once rotated.
		if !sawFG && tt.name == "opentype" {
			t.Errorf("%s: no solid foreground pixel", tt.name)
		}
	}
}

func TestStampReachesCorners(t *testing.T) {
	tile := BuildTile("Work", boldFace(t, 30), testFG)
	canvas := NewCanvas(400, 300, testBG)
	Stamp(canvas, tile)

	box := int(2 * NewLattice(400, 300, tile.TextWidth, tile.TextHeight).Spacing)
	corners := []image.Rectangle{
		image.Rect(0, 0, box, box),
		image.Rect(400-box, 0, 400, box),
		image.Rect(0, 300-box, box, 300),
		image.Rect(400-box, 300-box, 400, 300),
	}
	for _, r := range corners {
		inked := false
		for y := r.Min.Y; y < r.Max.Y && !inked; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if canvas.RGBAAt(x, y) != testBG {
					inked = true
					break
				}
			}
		}
		if !inked {
			t.Errorf("corner %v has no text", r)
		}
	}
}

func TestStampEmptyTile(t *testing.T) {
	canvas := NewCanvas(50, 40, testBG)
	before := append([]byte(nil), canvas.Pix...)
	if n := Stamp(canvas, BuildTile("", boldFace(t, 30), testFG)); n != 0 {
		t.Errorf("composited %d tiles for empty text", n)
	}
	if !bytes.Equal(before, canvas.Pix) {
		t.Error("empty text changed the canvas")
	}
}

func TestWallpaperSize(t *testing.T) {
	f := &Font{Face: basicfont.Face7x13, Size: 10, Fallback: true}
	img := Wallpaper("hi", 123, 45, f, testBG, testFG)
	if b := img.Bounds(); b.Dx() != 123 || b.Dy() != 45 {
		t.Errorf("bounds = %v", b)
	}
	if !img.Opaque() {
		t.Error("wallpaper is not opaque")
	}
}
