package fontcat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Handle is one font resolved at a concrete pixel size: the regular face for
// body text, a best-effort bold face for the highlight, and the vertical
// metrics of both. Immutable once loaded.
type Handle struct {
	Path string
	Size float64

	Regular font.Face
	Bold    font.Face

	Ascent  float64 // regular face, pixels
	Descent float64

	BoldAscent  float64
	BoldDescent float64
}

// MetricHeight is ascent+descent of the regular face, the base for line height.
func (h *Handle) MetricHeight() float64 { return h.Ascent + h.Descent }

// BoldMetricHeight is ascent+descent of the bold face.
func (h *Handle) BoldMetricHeight() float64 { return h.BoldAscent + h.BoldDescent }

// LoadForSize parses the font file at path and builds faces at the given size.
// FallbackID loads the embedded Go fonts instead of touching the filesystem.
// Any read or parse problem is reported as *LoadError.
func (c *Catalog) LoadForSize(path string, size float64) (*Handle, error) {
	if path == FallbackID {
		return loadEmbedded(size)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	regular, err := newFace(parsed, size)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	// Bold resolution is a filename heuristic, not a metadata lookup: probe
	// common bold suffixes next to the regular file and silently keep the
	// regular face when nothing parses.
	bold := regular
	if boldPath := findBoldVariant(path); boldPath != "" {
		if boldData, err := os.ReadFile(boldPath); err == nil {
			if boldParsed, err := opentype.Parse(boldData); err == nil {
				if face, err := newFace(boldParsed, size); err == nil {
					bold = face
				}
			}
		}
	}

	h := &Handle{Path: path, Size: size, Regular: regular, Bold: bold}
	h.fillMetrics()
	return h, nil
}

// loadEmbedded builds a handle from the Go fonts compiled into the binary.
// This is the generic sans-serif of last resort.
func loadEmbedded(size float64) (*Handle, error) {
	regularParsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, &LoadError{Path: FallbackID, Err: err}
	}
	boldParsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, &LoadError{Path: FallbackID, Err: err}
	}
	regular, err := newFace(regularParsed, size)
	if err != nil {
		return nil, &LoadError{Path: FallbackID, Err: err}
	}
	bold, err := newFace(boldParsed, size)
	if err != nil {
		return nil, &LoadError{Path: FallbackID, Err: err}
	}

	h := &Handle{Path: FallbackID, Size: size, Regular: regular, Bold: bold}
	h.fillMetrics()
	return h, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("unsupported font size %.1f", size)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (h *Handle) fillMetrics() {
	m := h.Regular.Metrics()
	h.Ascent = float64(m.Ascent) / 64
	h.Descent = float64(m.Descent) / 64

	bm := h.Bold.Metrics()
	h.BoldAscent = float64(bm.Ascent) / 64
	h.BoldDescent = float64(bm.Descent) / 64
}

var boldSuffixes = []string{"-Bold", "_Bold", " Bold", "Bold", "bd", "b"}

// findBoldVariant guesses the bold companion file for a regular font path.
// Tries both with and without a stripped "Regular" token, e.g.
// DejaVuSans.ttf -> DejaVuSans-Bold.ttf, Lato-Regular.ttf -> Lato-Bold.ttf.
func findBoldVariant(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	stems := []string{base}
	for _, token := range []string{"-Regular", "_Regular", " Regular", "Regular", "-regular", "regular"} {
		if stripped := strings.TrimSuffix(base, token); stripped != base {
			stems = append(stems, stripped)
			break
		}
	}

	for _, stem := range stems {
		for _, suffix := range boldSuffixes {
			candidate := stem + suffix + ext
			if candidate == path {
				continue
			}
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
