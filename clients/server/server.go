// Package server provides the wallpaper web UI and HTTP API.
package server

import (
	"archive/zip"
	"bytes"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/xob0t/genwallpaper/pkg/generator"
	"github.com/xob0t/genwallpaper/pkg/palette"
	"github.com/xob0t/genwallpaper/pkg/render"
)

//go:embed web/*
var webContent embed.FS

// Accepted request sizes and preview dimensions.
const (
	minWidth, maxWidth   = 800, 3840
	minHeight, maxHeight = 600, 2160
	maxTexts             = 32
	maxTextRunes         = 64
	maxBatches           = 16
	maxBodyBytes         = 1 << 20

	previewWidth, previewHeight = 480, 270
)

// ── Batch store ──

type batchImage struct {
	Text    string
	File    string
	Palette palette.Palette
}

type batch struct {
	ID     string
	Dir    string
	Width  int
	Height int
	Images []batchImage
}

func (b *batch) image(file string) (batchImage, bool) {
	for _, img := range b.Images {
		if img.File == file {
			return img, true
		}
	}
	return batchImage{}, false
}

// batchStore keeps at most limit batches; adding beyond that evicts the
// oldest.
type batchStore struct {
	mu      sync.RWMutex
	batches map[string]*batch
	order   []string // insertion order, oldest first
	limit   int
}

func newBatchStore(limit int) *batchStore {
	return &batchStore{batches: make(map[string]*batch), limit: limit}
}

// add stores b and returns the batches evicted to make room for it.
func (bs *batchStore) add(b *batch) []*batch {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.batches[b.ID] = b
	bs.order = append(bs.order, b.ID)

	var evicted []*batch
	for len(bs.order) > bs.limit {
		id := bs.order[0]
		bs.order = bs.order[1:]
		if old, ok := bs.batches[id]; ok {
			delete(bs.batches, id)
			evicted = append(evicted, old)
		}
	}
	return evicted
}

func (bs *batchStore) get(id string) (*batch, bool) {
	bs.mu.RLock()
	b, ok := bs.batches[id]
	bs.mu.RUnlock()
	return b, ok
}

func (bs *batchStore) remove(id string) (*batch, bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	b, ok := bs.batches[id]
	if !ok {
		return nil, false
	}
	delete(bs.batches, id)
	for i, oid := range bs.order {
		if oid == id {
			bs.order = append(bs.order[:i], bs.order[i+1:]...)
			break
		}
	}
	return b, true
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ── Server ──

type srv struct {
	batches *batchStore
	seq     *palette.Sequencer
	fonts   *render.FontResolver
	tmpDir  string
	log     *zap.Logger
}

func newServer(tmpDir string, fonts *render.FontResolver, log *zap.Logger) *srv {
	if fonts.Logger == nil {
		fonts.Logger = log
	}
	return &srv{
		batches: newBatchStore(maxBatches),
		seq:     palette.NewSequencer(nil),
		fonts:   fonts,
		tmpDir:  tmpDir,
		log:     log,
	}
}

// RunServe starts the web UI server on the given port.
func RunServe(args []string) error {
	port := "8080"
	for i, a := range args {
		if (a == "--port" || a == "-p") && i+1 < len(args) {
			port = args[i+1]
		}
	}

	log := zap.L()
	tmpDir, err := os.MkdirTemp("", "genwallpaper-serve-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	s := newServer(tmpDir, render.NewFontResolver(), log)
	handler, err := s.routes()
	if err != nil {
		return err
	}

	addr := ":" + port
	log.Info("wallpaper UI listening", zap.String("addr", "http://localhost"+addr))

	go openBrowser("http://localhost" + addr)

	return http.ListenAndServe(addr, handler)
}

func (s *srv) routes() (http.Handler, error) {
	webFS, err := fs.Sub(webContent, "web")
	if err != nil {
		return nil, fmt.Errorf("embed web: %w", err)
	}

	mux := http.NewServeMux()

	// API routes.
	mux.HandleFunc("GET /api/palettes", s.handlePalettes)
	mux.HandleFunc("GET /api/palettes/{index}/swatch", s.handleSwatch)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/batches/{id}/images/{file}", s.handleImage)
	mux.HandleFunc("GET /api/batches/{id}/previews/{file}", s.handlePreview)
	mux.HandleFunc("GET /api/batches/{id}/archive", s.handleArchive)
	mux.HandleFunc("DELETE /api/batches/{id}", s.handleDeleteBatch)

	// Static files.
	mux.Handle("/", http.FileServer(http.FS(webFS)))

	return mux, nil
}

// ── Palettes ──

type paletteInfo struct {
	Index      int    `json:"index"`
	Label      string `json:"label"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Swatch     string `json:"swatch"`
}

func (s *srv) handlePalettes(w http.ResponseWriter, r *http.Request) {
	cat := palette.Catalog()
	out := make([]paletteInfo, len(cat))
	for i, p := range cat {
		out[i] = paletteInfo{
			Index:      i,
			Label:      p.Label,
			Background: p.Background.Hex(),
			Foreground: p.Foreground.Hex(),
			Swatch:     fmt.Sprintf("/api/palettes/%d/swatch", i),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSwatch draws a 100×50 background with a foreground block.
func (s *srv) handleSwatch(w http.ResponseWriter, r *http.Request) {
	cat := palette.Catalog()
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || i < 0 || i >= len(cat) {
		http.NotFound(w, r)
		return
	}

	p := cat[i]
	swatch := imaging.New(100, 50, p.BackgroundRGBA())
	swatch = imaging.Paste(swatch, imaging.New(21, 31, p.ForegroundRGBA()), image.Pt(40, 10))

	w.Header().Set("Content-Type", "image/png")
	if err := imaging.Encode(w, swatch, imaging.PNG); err != nil {
		s.log.Error("encode swatch", zap.Error(err))
	}
}

// ── Generate ──

type generateRequest struct {
	Text       string   `json:"text"` // comma-separated, merged with Texts
	Texts      []string `json:"texts"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Resolution string   `json:"resolution"`
	Palette    string   `json:"palette"` // label; empty = next from the shared sequencer

	// Custom colors ("#rrggbb"); both must be set and override Palette.
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

type imageInfo struct {
	Text    string `json:"text"`
	File    string `json:"file"`
	Palette string `json:"palette"`
	URL     string `json:"url"`
	Preview string `json:"preview"`
}

type generateResponse struct {
	ID       string      `json:"id"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Font     string      `json:"font"`
	Fallback bool        `json:"fallback"`
	Images   []imageInfo `json:"images"`
	Archive  string      `json:"archive"`
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, a...))
}

// normalize validates req and returns the texts, dimensions and selector.
func (s *srv) normalize(req generateRequest) ([]string, int, int, palette.Selector, error) {
	var texts []string
	// Keyed by lower case: "Work" and "work" share a file on
	// case-insensitive filesystems.
	seen := make(map[string]bool)
	for _, t := range append(strings.Split(req.Text, ","), req.Texts...) {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		if strings.ContainsAny(t, `/\`) || t == "." || t == ".." {
			return nil, 0, 0, nil, badRequest("text %q cannot be used as a file name", t)
		}
		if n := utf8.RuneCountInString(t); n > maxTextRunes {
			return nil, 0, 0, nil, badRequest("text %q is %d characters long, limit is %d", t, n, maxTextRunes)
		}
		seen[key] = true
		texts = append(texts, t)
	}
	if len(texts) == 0 {
		return nil, 0, 0, nil, badRequest("please enter at least one text string")
	}
	if len(texts) > maxTexts {
		return nil, 0, 0, nil, badRequest("at most %d texts per batch", maxTexts)
	}

	width, height := req.Width, req.Height
	if req.Resolution != "" {
		var err error
		if width, height, err = generator.ParseResolution(req.Resolution); err != nil {
			return nil, 0, 0, nil, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}
	if width == 0 && height == 0 {
		width, height = 1920, 1080
	}
	if width < minWidth || width > maxWidth || height < minHeight || height > maxHeight {
		return nil, 0, 0, nil, badRequest("size %dx%d outside %d-%d x %d-%d",
			width, height, minWidth, maxWidth, minHeight, maxHeight)
	}

	sel := palette.Selector(s.seq.Draw)
	switch {
	case req.Background != "" || req.Foreground != "":
		p, err := customPalette(req.Background, req.Foreground)
		if err != nil {
			return nil, 0, 0, nil, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		sel = palette.Fixed(p)
	case req.Palette != "":
		p, ok := palette.Lookup(req.Palette)
		if !ok {
			return nil, 0, 0, nil, badRequest("unknown palette %q", req.Palette)
		}
		sel = palette.Fixed(p)
	}
	return texts, width, height, sel, nil
}

func customPalette(bg, fg string) (palette.Palette, error) {
	if bg == "" || fg == "" {
		return palette.Palette{}, errors.New("custom colors need both background and foreground")
	}
	b, err := palette.ParseRGB(bg)
	if err != nil {
		return palette.Palette{}, fmt.Errorf("background: %w", err)
	}
	f, err := palette.ParseRGB(fg)
	if err != nil {
		return palette.Palette{}, fmt.Errorf("foreground: %w", err)
	}
	return palette.Palette{Background: b, Foreground: f, Label: "Custom"}, nil
}

func (s *srv) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "decode request: "+err.Error(), http.StatusBadRequest)
		return
	}

	texts, width, height, sel, err := s.normalize(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b := &batch{ID: randomID(), Width: width, Height: height}
	b.Dir = filepath.Join(s.tmpDir, b.ID)
	if err := os.Mkdir(b.Dir, 0755); err != nil {
		http.Error(w, "create batch: "+err.Error(), http.StatusInternalServerError)
		return
	}

	log := s.log.With(zap.String("batch", b.ID))
	report, err := generator.Generate(texts, b.Dir, generator.Config{
		Width:  width,
		Height: height,
		Select: sel,
		Fonts:  s.fonts,
		Logger: log,
	})
	if err != nil {
		os.RemoveAll(b.Dir)
		log.Error("generate", zap.Error(err))
		http.Error(w, "generate: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := generateResponse{
		ID:       b.ID,
		Width:    width,
		Height:   height,
		Font:     report.Font.Name,
		Fallback: report.Font.Fallback,
		Archive:  "/api/batches/" + b.ID + "/archive",
	}
	for _, o := range report.Outputs {
		file := filepath.Base(o.Path)
		b.Images = append(b.Images, batchImage{Text: o.Text, File: file, Palette: o.Palette})
		esc := url.PathEscape(file)
		resp.Images = append(resp.Images, imageInfo{
			Text:    o.Text,
			File:    file,
			Palette: o.Palette.Label,
			URL:     "/api/batches/" + b.ID + "/images/" + esc,
			Preview: "/api/batches/" + b.ID + "/previews/" + esc,
		})
	}
	for _, old := range s.batches.add(b) {
		log.Debug("evicting batch", zap.String("evicted", old.ID))
		if err := os.RemoveAll(old.Dir); err != nil {
			s.log.Warn("remove batch dir", zap.String("path", old.Dir), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ── Downloads ──

// lookup resolves {id} and {file} path values to a stored image.
func (s *srv) lookup(w http.ResponseWriter, r *http.Request) (*batch, batchImage, bool) {
	b, ok := s.batches.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return nil, batchImage{}, false
	}
	img, ok := b.image(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return nil, batchImage{}, false
	}
	return b, img, true
}

func (s *srv) handleImage(w http.ResponseWriter, r *http.Request) {
	b, img, ok := s.lookup(w, r)
	if !ok {
		return
	}
	data, err := os.ReadFile(filepath.Join(b.Dir, img.File))
	if err != nil {
		http.Error(w, "read image: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", contentDisposition(img.File))
	w.Write(data)
}

func (s *srv) handlePreview(w http.ResponseWriter, r *http.Request) {
	b, img, ok := s.lookup(w, r)
	if !ok {
		return
	}
	src, err := imaging.Open(filepath.Join(b.Dir, img.File))
	if err != nil {
		http.Error(w, "open image: "+err.Error(), http.StatusInternalServerError)
		return
	}
	thumb := imaging.Fit(src, previewWidth, previewHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		http.Error(w, "encode preview: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *srv) handleArchive(w http.ResponseWriter, r *http.Request) {
	b, ok := s.batches.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, img := range b.Images {
		data, err := os.ReadFile(filepath.Join(b.Dir, img.File))
		if err != nil {
			http.Error(w, "read image: "+err.Error(), http.StatusInternalServerError)
			return
		}
		fw, err := zw.Create(img.File)
		if err == nil {
			_, err = fw.Write(data)
		}
		if err != nil {
			http.Error(w, "write archive: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if err := zw.Close(); err != nil {
		http.Error(w, "write archive: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="wallpapers.zip"`)
	w.Write(buf.Bytes())
}

func (s *srv) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b, ok := s.batches.remove(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := os.RemoveAll(b.Dir); err != nil {
		s.log.Warn("remove batch dir", zap.String("path", b.Dir), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// ── Helpers ──

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func contentDisposition(file string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		strings.ReplaceAll(file, `"`, "_"), url.PathEscape(file))
}

func openBrowser(target string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	cmd.Start()
}
