// genwallpaper - Diagonal text wallpapers for multi-desktop setups.
//
// Usage:
//
//	genwallpaper [-o <dir>] [--resolution <res>] [options] TEXT...
//	genwallpaper serve [--port 8080]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"github.com/xob0t/genwallpaper/clients/server"
	"github.com/xob0t/genwallpaper/pkg/generator"
	"github.com/xob0t/genwallpaper/pkg/palette"
	"github.com/xob0t/genwallpaper/pkg/render"
)

type args struct {
	Texts      []string `arg:"positional,required" placeholder:"TEXT" help:"text strings to use in wallpapers"`
	Output     string   `arg:"-o,--output" default:"images" help:"output directory for wallpapers"`
	Resolution string   `arg:"-r,--resolution" default:"fhd" help:"WxH (e.g. 1920x1080) or alias (e.g. fhd, 4k)"`
	Font       string   `arg:"--font" help:"font file to try before the system fonts"`
	Seed       uint64   `arg:"--seed" help:"palette shuffle seed (0 = random)"`
	Verbose    bool     `arg:"-v,--verbose" help:"verbose logging"`
}

func (args) Description() string {
	return "Generate wallpapers for multi-desktop environments"
}

func (args) Epilogue() string {
	return `Resolution can be specified in the following formats:
  - Dimensions: 1920x1080
  - Aliases: hd (1280x720), fhd (1920x1080), 2k (2560x1440), 4k/uhd (3840x2160)

Run "genwallpaper serve [--port 8080]" to start the web UI.`
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := server.RunServe(os.Args[2:]); err != nil {
			fatal(err)
		}
		return
	}

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fatal(err)
	}
}

func run(argv []string, stdout, stderr io.Writer) error {
	var a args
	p, err := arg.NewParser(arg.Config{Program: "genwallpaper"}, &a)
	if err != nil {
		return err
	}
	switch err := p.Parse(argv); {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(stdout)
		return nil
	case err != nil:
		p.WriteUsage(stderr)
		return err
	}

	// Validate before touching the filesystem.
	width, height, err := generator.ParseResolution(a.Resolution)
	if err != nil {
		return err
	}

	l, err := newLogger(a.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	defer l.Sync() //nolint:errcheck

	if err := os.MkdirAll(a.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fonts := render.NewFontResolver()
	fonts.Prefer(a.Font)
	fonts.Logger = l

	seq := palette.NewSequencer(nil)
	if a.Seed != 0 {
		seq = palette.NewSeededSequencer(a.Seed)
	}

	l.Debug("generating",
		zap.Strings("texts", a.Texts),
		zap.String("path", a.Output),
		zap.Int("width", width),
		zap.Int("height", height))

	report, err := generator.Generate(a.Texts, a.Output, generator.Config{
		Width:  width,
		Height: height,
		Select: seq.Draw,
		Fonts:  fonts,
		Logger: l,
	})
	if err != nil {
		return err
	}

	if report.Font != nil && report.Font.Fallback {
		fmt.Fprintf(stderr, "Warning: no bold system font found (tried %s); using the built-in font\n",
			strings.Join(render.DefaultFontNames, ", "))
	}
	for _, o := range report.Outputs {
		fmt.Fprintf(stdout, "%s (%s)\n", o.Path, o.Palette.Label)
	}
	fmt.Fprintf(stdout, "Done: %d wallpaper(s) at %dx%d\n", len(report.Outputs), width, height)
	return nil
}

var newLogger = func(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
