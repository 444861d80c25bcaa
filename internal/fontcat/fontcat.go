// Package fontcat discovers candidate fonts, hands out a usable font face per
// request and tracks nothing itself: the set of fonts that failed during a run
// is owned by the caller, so independent runs never share state.
package fontcat

import (
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FallbackID is the pseudo-path returned by Select when every discovered font
// is excluded and the catalog still has its built-in generic sans fallback.
const FallbackID = "embedded:go-sans"

// LoadError means the font file could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("font load failed: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DrawError means a font loaded fine but measuring or drawing with it failed
// (missing glyphs, zero-size metrics). Raised by the compositor, recovered by
// the generation loop via a font swap.
type DrawError struct {
	Path string
	Err  error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("font draw failed: %s: %v", e.Path, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }

// Catalog is an immutable list of candidate font files plus an optional
// embedded fallback. Selection state (exclusions) lives with the caller.
type Catalog struct {
	paths       []string
	hasFallback bool
}

// systemFontDirs are probed when no usable font directory is supplied.
// Mirrors the usual install locations on Linux, macOS and Windows.
var systemFontDirs = []string{
	"/usr/share/fonts",
	"/usr/local/share/fonts",
	"/System/Library/Fonts",
	"/Library/Fonts",
	`C:\Windows\Fonts`,
}

// Discover scans fontDir for TrueType/OpenType files. When the directory is
// absent or holds no fonts, the host's system font directories are scanned
// instead. An empty catalog is not an error: the embedded fallback still
// serves as the last candidate.
func Discover(fontDir string) *Catalog {
	var paths []string
	if fontDir != "" {
		paths = scanDir(fontDir)
	}
	if len(paths) == 0 {
		dirs := systemFontDirs
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append([]string{
				filepath.Join(home, ".fonts"),
				filepath.Join(home, ".local", "share", "fonts"),
			}, dirs...)
		}
		for _, d := range dirs {
			paths = append(paths, scanDir(d)...)
		}
	}
	sort.Strings(paths)
	return &Catalog{paths: paths, hasFallback: true}
}

func scanDir(dir string) []string {
	var paths []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, not worth failing discovery
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

// DisableFallback removes the embedded generic sans fallback, making font
// exhaustion reachable. Used by strict setups and tests.
func (c *Catalog) DisableFallback() { c.hasFallback = false }

// Len reports the number of discovered font files (fallback not counted).
func (c *Catalog) Len() int { return len(c.paths) }

// Paths returns a copy of the discovered font paths.
func (c *Catalog) Paths() []string {
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

// Select returns a uniformly random font path not present in excluded. When
// every discovered font is excluded it falls back to FallbackID once; when
// that too is excluded (or disabled) it returns "" and no usable font exists.
func (c *Catalog) Select(rng *rand.Rand, excluded map[string]bool) string {
	available := make([]string, 0, len(c.paths))
	for _, p := range c.paths {
		if !excluded[p] {
			available = append(available, p)
		}
	}
	if len(available) > 0 {
		return available[rng.Intn(len(available))]
	}
	if c.hasFallback && !excluded[FallbackID] {
		return FallbackID
	}
	return ""
}
