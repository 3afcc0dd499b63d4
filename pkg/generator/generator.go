// Package generator turns text strings into diagonal-pattern wallpapers.
//
// A batch resolves one font for all texts, pulls one palette per text from
// the configured Selector, renders the tile lattice onto a canvas and
// writes <text>.png into the output directory.
package generator

import (
	"fmt"
	"image"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/xob0t/genwallpaper/pkg/palette"
	"github.com/xob0t/genwallpaper/pkg/render"
)

// Config holds parameters for a batch.
type Config struct {
	Width  int                  // Pixel width
	Height int                  // Pixel height; also sets the font size
	Select palette.Selector     // Palette strategy (default: fresh Sequencer)
	Fonts  *render.FontResolver // Font lookup (default: system fonts)
	Logger *zap.Logger          // Default: zap.L()
}

// Output describes one written wallpaper.
type Output struct {
	Text    string
	Path    string
	Palette palette.Palette
}

// Report summarizes a batch.
type Report struct {
	Font    *render.Font
	Outputs []Output
}

// Generate writes one wallpaper per text into outputDir, which must exist.
// Existing files with the same name are overwritten. The first write error
// stops the batch; files written before it are kept.
func Generate(texts []string, outputDir string, cfg Config) (*Report, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}

	report := &Report{}
	if len(texts) == 0 {
		return report, nil
	}

	sel := cfg.Select
	if sel == nil {
		sel = palette.NewSequencer(nil).Draw
	}
	fonts := cfg.Fonts
	if fonts == nil {
		fonts = render.NewFontResolver()
		fonts.Logger = log
	}

	f := fonts.Resolve(cfg.Height)
	report.Font = f
	if f.Fallback {
		log.Warn("no system font found, using built-in fallback",
			zap.String("font", f.Name), zap.Float64("size", f.Size))
	} else {
		log.Debug("font resolved",
			zap.String("font", f.Name), zap.String("path", f.Path), zap.Float64("size", f.Size))
	}

	for _, text := range texts {
		p := sel()
		img := Render(text, cfg.Width, cfg.Height, p, f)

		path := filepath.Join(outputDir, text+".png")
		if err := writePNG(path, img); err != nil {
			return report, err
		}
		log.Info("wallpaper written",
			zap.String("text", text), zap.String("path", path), zap.String("palette", p.Label))
		report.Outputs = append(report.Outputs, Output{Text: text, Path: path, Palette: p})
	}

	return report, nil
}

// Render draws one wallpaper in memory.
func Render(text string, width, height int, p palette.Palette, f *render.Font) *image.RGBA {
	return render.Wallpaper(text, width, height, f, p.BackgroundRGBA(), p.ForegroundRGBA())
}

// Encode writes img as PNG. This is useful for in-memory generation
// (HTTP responses, WASM).
func Encode(w io.Writer, img image.Image) error {
	if err := encoder.Encode(w, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}
