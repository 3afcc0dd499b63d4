// fonts.go - Bold font lookup with a preference-ordered candidate list and a
// built-in bitmap fallback. Uses golang.org/x/image/font/opentype for
// TrueType/OpenType faces and basicfont when nothing on disk can be loaded.
package render

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// DefaultFontNames lists the bold faces tried, in order of preference.
var DefaultFontNames = []string{
	"DejaVuSans-Bold.ttf",
	"Arial Bold.ttf",
	"Helvetica Bold.ttf",
	"OpenSans-Bold.ttf",
}

// FallbackName identifies the built-in face in Font.Name.
const FallbackName = "basicfont 7x13"

// Font is the outcome of a resolution: a face at a concrete size, and
// whether it is the requested font or the built-in fallback.
type Font struct {
	Face     font.Face
	Size     float64
	Name     string
	Path     string
	Fallback bool
}

// FontResolver finds the first loadable font among Names.
// Bare file names are searched for under Dirs; anything containing a path
// separator is read as a path. Resolve may be called concurrently; each
// call returns its own face.
type FontResolver struct {
	Names  []string
	Dirs   []string
	Logger *zap.Logger

	mu    sync.Mutex
	index map[string]string // base name → first path found under Dirs
}

// NewFontResolver returns a resolver over DefaultFontNames and the
// platform's usual font directories.
func NewFontResolver() *FontResolver {
	return &FontResolver{
		Names: append([]string(nil), DefaultFontNames...),
		Dirs:  SystemFontDirs(),
	}
}

// Prefer puts a user-supplied font ahead of the default candidates.
func (r *FontResolver) Prefer(path string) {
	if path == "" {
		return
	}
	r.Names = append([]string{path}, r.Names...)
}

// Resolve loads the first candidate at targetHeight/5 pixels. If none can
// be loaded it returns the built-in face with Size targetHeight/10; it
// never fails.
func (r *FontResolver) Resolve(targetHeight int) *Font {
	log := r.logger()
	size := float64(targetHeight / 5)

	for _, name := range r.Names {
		path, ok := r.locate(name)
		if !ok {
			log.Debug("font not found", zap.String("font", name))
			continue
		}
		face, err := loadFace(path, size)
		if err != nil {
			log.Debug("font load failed", zap.String("font", name), zap.String("path", path), zap.Error(err))
			continue
		}
		return &Font{Face: face, Size: size, Name: name, Path: path}
	}

	return FallbackFont(targetHeight)
}

// FallbackFont returns the built-in face, recorded at targetHeight/10.
func FallbackFont(targetHeight int) *Font {
	return &Font{
		Face:     basicfont.Face7x13,
		Size:     float64(targetHeight / 10),
		Name:     FallbackName,
		Fallback: true,
	}
}

func (r *FontResolver) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.L()
}

// locate maps a candidate name to a file on disk.
func (r *FontResolver) locate(name string) (string, bool) {
	if strings.ContainsAny(name, `/\`) {
		if _, err := os.Stat(name); err != nil {
			return "", false
		}
		return name, true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index == nil {
		r.index = indexFontDirs(r.Dirs)
	}
	path, ok := r.index[name]
	return path, ok
}

// indexFontDirs walks dirs and records the first path seen for every
// file name. Unreadable directories are skipped.
func indexFontDirs(dirs []string) map[string]string {
	index := make(map[string]string)
	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, seen := index[d.Name()]; !seen {
				index[d.Name()] = path
			}
			return nil
		})
	}
	return index
}

// loadFace parses a font file and creates a face at size pixels (72 DPI).
func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFace(data, size)
}

func parseFace(data []byte, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// FaceFromBytes builds a face from in-memory font data, for callers that
// have no filesystem (the browser build).
func FaceFromBytes(data []byte, targetHeight int) (*Font, error) {
	size := float64(targetHeight / 5)
	face, err := parseFace(data, size)
	if err != nil {
		return nil, err
	}
	return &Font{Face: face, Size: size, Name: "embedded"}, nil
}

// SystemFontDirs lists where fonts are usually installed on this platform.
func SystemFontDirs() []string {
	home, _ := os.UserHomeDir()
	var dirs []string
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs = append(dirs, filepath.Join(windir, "Fonts"))
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
	case "darwin":
		dirs = append(dirs, "/System/Library/Fonts", "/Library/Fonts")
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	default:
		dirs = append(dirs, "/usr/share/fonts", "/usr/local/share/fonts")
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
		}
	}
	return dirs
}
