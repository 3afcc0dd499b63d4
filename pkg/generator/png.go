// png.go - PNG file writer.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"go.uber.org/multierr"
)

var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// writePNG encodes img to a PNG file at the given path. Opaque canvases
// are stored as 8-bit RGB without an alpha channel.
func writePNG(output string, img image.Image) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", output, cerr))
		}
	}()

	if err := encoder.Encode(f, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}
