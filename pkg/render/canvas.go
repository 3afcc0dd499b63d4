// canvas.go - Opaque canvas creation.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// NewCanvas creates a w×h image filled with bg.
func NewCanvas(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return img
}

// Wallpaper renders text over bg in fg and returns the canvas.
func Wallpaper(text string, w, h int, f *Font, bg, fg color.RGBA) *image.RGBA {
	canvas := NewCanvas(w, h, bg)
	Stamp(canvas, BuildTile(text, f.Face, fg))
	return canvas
}
