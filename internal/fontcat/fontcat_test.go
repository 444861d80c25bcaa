package fontcat

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverFindsFontFiles(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "A.ttf", goregular.TTF)
	writeFont(t, dir, "B.otf", goregular.TTF)
	writeFont(t, dir, "readme.txt", []byte("not a font"))

	sub := filepath.Join(dir, "nested")
	os.MkdirAll(sub, 0755)
	writeFont(t, sub, "C.ttf", goregular.TTF)

	cat := Discover(dir)
	if cat.Len() != 3 {
		t.Errorf("Discovered %d fonts, want 3: %v", cat.Len(), cat.Paths())
	}
}

func TestSelectExcludes(t *testing.T) {
	dir := t.TempDir()
	a := writeFont(t, dir, "A.ttf", goregular.TTF)
	b := writeFont(t, dir, "B.ttf", goregular.TTF)

	cat := Discover(dir)
	rng := rand.New(rand.NewSource(1))

	excluded := map[string]bool{a: true}
	for i := 0; i < 20; i++ {
		if got := cat.Select(rng, excluded); got != b {
			t.Fatalf("Select returned excluded or unknown path %q, want %q", got, b)
		}
	}
}

func TestSelectFallsBackWhenExhausted(t *testing.T) {
	dir := t.TempDir()
	a := writeFont(t, dir, "A.ttf", goregular.TTF)

	cat := Discover(dir)
	rng := rand.New(rand.NewSource(1))

	excluded := map[string]bool{a: true}
	if got := cat.Select(rng, excluded); got != FallbackID {
		t.Errorf("Select = %q, want fallback %q", got, FallbackID)
	}

	// The fallback itself can be excluded too.
	excluded[FallbackID] = true
	if got := cat.Select(rng, excluded); got != "" {
		t.Errorf("Select = %q, want empty string when everything is excluded", got)
	}
}

func TestSelectWithFallbackDisabled(t *testing.T) {
	cat := Discover(t.TempDir())
	cat.DisableFallback()
	rng := rand.New(rand.NewSource(1))

	// Some build hosts have system fonts, so exclude everything discovered.
	excluded := make(map[string]bool)
	for _, p := range cat.Paths() {
		excluded[p] = true
	}
	if got := cat.Select(rng, excluded); got != "" {
		t.Errorf("Select = %q, want empty string with fallback disabled", got)
	}
}

func TestLoadForSizeGarbage(t *testing.T) {
	dir := t.TempDir()
	bad := writeFont(t, dir, "broken.ttf", []byte("definitely not a font"))

	cat := Discover(dir)
	_, err := cat.LoadForSize(bad, 24)
	if err == nil {
		t.Fatal("Expected error for unparseable font")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *LoadError, got %T: %v", err, err)
	}
	if loadErr.Path != bad {
		t.Errorf("LoadError.Path = %q, want %q", loadErr.Path, bad)
	}
}

func TestLoadForSizeMissingFile(t *testing.T) {
	cat := Discover(t.TempDir())
	var loadErr *LoadError
	if _, err := cat.LoadForSize("/no/such/font.ttf", 24); !errors.As(err, &loadErr) {
		t.Fatalf("Expected *LoadError for missing file, got %v", err)
	}
}

func TestLoadEmbeddedFallback(t *testing.T) {
	cat := Discover(t.TempDir())
	h, err := cat.LoadForSize(FallbackID, 32)
	if err != nil {
		t.Fatalf("Embedded fallback failed to load: %v", err)
	}
	if h.Regular == nil || h.Bold == nil {
		t.Fatal("Fallback handle missing faces")
	}
	if h.Ascent <= 0 || h.Descent < 0 {
		t.Errorf("Suspicious metrics: ascent %f, descent %f", h.Ascent, h.Descent)
	}
	if h.MetricHeight() <= 0 {
		t.Errorf("MetricHeight = %f, want > 0", h.MetricHeight())
	}
}

func TestBoldVariantResolution(t *testing.T) {
	dir := t.TempDir()
	regular := writeFont(t, dir, "Lato-Regular.ttf", goregular.TTF)
	bold := writeFont(t, dir, "Lato-Bold.ttf", gobold.TTF)

	if got := findBoldVariant(regular); got != bold {
		t.Errorf("findBoldVariant = %q, want %q", got, bold)
	}
}

func TestBoldVariantAbsent(t *testing.T) {
	dir := t.TempDir()
	regular := writeFont(t, dir, "Solo.ttf", goregular.TTF)
	if got := findBoldVariant(regular); got != "" {
		t.Errorf("findBoldVariant = %q, want empty for a font without bold companion", got)
	}
}

func TestBoldVariantNeverReturnsSelf(t *testing.T) {
	dir := t.TempDir()
	// A file that already ends in "Bold" must not resolve to itself.
	path := writeFont(t, dir, "FooBold.ttf", gobold.TTF)
	if got := findBoldVariant(path); got == path {
		t.Errorf("findBoldVariant resolved the file to itself: %q", got)
	}
}

func TestLoadForSizeUsesBoldVariant(t *testing.T) {
	dir := t.TempDir()
	regular := writeFont(t, dir, "Go-Regular.ttf", goregular.TTF)
	writeFont(t, dir, "Go-Bold.ttf", gobold.TTF)

	cat := Discover(dir)
	h, err := cat.LoadForSize(regular, 24)
	if err != nil {
		t.Fatalf("LoadForSize failed: %v", err)
	}
	if h.Bold == h.Regular {
		t.Error("Bold face should differ from regular when a bold companion exists")
	}
}
