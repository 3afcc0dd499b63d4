//go:build js && wasm

// genwallpaper WASM - Client-side wallpaper renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o genwallpaper.wasm ./clients/wasm/
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"syscall/js"

	"golang.org/x/image/font/gofont/gobold"

	"github.com/xob0t/genwallpaper/pkg/generator"
	"github.com/xob0t/genwallpaper/pkg/palette"
	"github.com/xob0t/genwallpaper/pkg/render"
)

// The browser has no font directories; a font registered from JS takes
// precedence over the bundled Go Bold face.
var (
	fontMu   sync.RWMutex
	fontData = gobold.TTF

	seq = palette.NewSequencer(nil)
)

func main() {
	fmt.Println("genwallpaper WASM loaded")

	js.Global().Set("goGenerateWallpaper", js.FuncOf(generateWallpaper))
	js.Global().Set("goPalettes", js.FuncOf(palettes))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// goRegisterFont(base64Data) - replace the font used for rendering.
func registerFont(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	if _, err := render.FaceFromBytes(data, 100); err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	fontMu.Lock()
	fontData = data
	fontMu.Unlock()
	return js.ValueOf("ok")
}

// goPalettes() - JSON array of {label, background, foreground}.
func palettes(this js.Value, args []js.Value) interface{} {
	type entry struct {
		Label      string `json:"label"`
		Background string `json:"background"`
		Foreground string `json:"foreground"`
	}
	var out []entry
	for _, p := range palette.Catalog() {
		out = append(out, entry{p.Label, p.Background.Hex(), p.Foreground.Hex()})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf(string(b))
}

// goGenerateWallpaper(text, width, height[, paletteLabel]) - base64 PNG.
func generateWallpaper(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("error: need text, width, height")
	}
	text := args[0].String()
	width, height := args[1].Int(), args[2].Int()
	if width <= 0 || height <= 0 {
		return js.ValueOf(fmt.Sprintf("error: invalid size %dx%d", width, height))
	}

	var p palette.Palette
	if len(args) > 3 && args[3].Type() == js.TypeString && args[3].String() != "" {
		var ok bool
		if p, ok = palette.Lookup(args[3].String()); !ok {
			return js.ValueOf("error: unknown palette " + args[3].String())
		}
	} else {
		p = seq.Draw()
	}

	fontMu.RLock()
	data := fontData
	fontMu.RUnlock()

	f, err := render.FaceFromBytes(data, height)
	if err != nil {
		f = render.FallbackFont(height)
	}

	img := generator.Render(text, width, height, p, f)

	var buf bytes.Buffer
	if err := generator.Encode(&buf, img); err != nil {
		return js.ValueOf("error: encode: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}
