package compositor

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/image/font"

	"github.com/ivlev/matchcut/internal/fontcat"
	"github.com/ivlev/matchcut/internal/text"
)

func loadTestHandle(t *testing.T, size float64) *fontcat.Handle {
	t.Helper()
	cat := fontcat.Discover(t.TempDir())
	h, err := cat.LoadForSize(fontcat.FallbackID, size)
	if err != nil {
		t.Fatalf("Embedded font failed to load: %v", err)
	}
	return h
}

func testSnippet(highlight string) text.Snippet {
	return text.Snippet{
		Lines: []string{
			"The first line of filler prose sits comfortably above everything else.",
			"A second line mentions " + highlight + " somewhere in the middle of it.",
			"The third and final line closes the little paragraph without drama.",
		},
		HighlightIndex: 1,
	}
}

func TestLayoutCentersHighlightBox(t *testing.T) {
	const width, height = 1024, 768
	fh := loadTestHandle(t, 40)
	highlight := "the centered phrase"
	sn := testSnippet(highlight)

	layout, err := computeLayout(sn, highlight, fh, width, height, 1.3)
	if err != nil {
		t.Fatalf("computeLayout failed: %v", err)
	}

	// The box center must hit the frame center within a pixel, regardless
	// of which line the phrase lives on.
	centerX := layout.HighlightX + layout.HighlightW/2
	centerY := layout.HighlightY + layout.HighlightH/2
	if math.Abs(centerX-width/2) > 1 {
		t.Errorf("Box center X = %f, want %f ±1", centerX, float64(width)/2)
	}
	if math.Abs(centerY-height/2) > 1 {
		t.Errorf("Box center Y = %f, want %f ±1", centerY, float64(height)/2)
	}
}

func TestLayoutCenteringIndependentOfHighlightLine(t *testing.T) {
	const width, height = 800, 800
	fh := loadTestHandle(t, 32)
	highlight := "anchor words"

	for idx := 0; idx < 5; idx++ {
		lines := make([]string, 5)
		for i := range lines {
			lines[i] = "Ordinary filler content occupies this entire line from end to end."
		}
		lines[idx] = "Here come the " + highlight + " tucked into this very line of text."
		sn := text.Snippet{Lines: lines, HighlightIndex: idx}

		layout, err := computeLayout(sn, highlight, fh, width, height, 1.3)
		if err != nil {
			t.Fatalf("Index %d: %v", idx, err)
		}

		centerY := layout.HighlightY + layout.HighlightH/2
		if math.Abs(centerY-height/2) > 1 {
			t.Errorf("Index %d: box center Y = %f, drifted from %f", idx, centerY, float64(height)/2)
		}

		// The background block must be anchored so the highlight line's
		// phrase lands exactly under the box.
		lineTop := layout.BlockStartY + float64(idx)*layout.LineHeight
		if math.Abs(lineTop-layout.HighlightY) > 0.001 {
			t.Errorf("Index %d: highlight line top %f != box top %f", idx, lineTop, layout.HighlightY)
		}
	}
}

func TestLayoutPrefixAlignment(t *testing.T) {
	fh := loadTestHandle(t, 36)
	highlight := "match point"
	line := "The long prefix walks right up to the " + highlight + " and stops."
	sn := text.Snippet{
		Lines: []string{
			"Filler above keeps the block honest and fills available space well.",
			line,
		},
		HighlightIndex: 1,
	}

	layout, err := computeLayout(sn, highlight, fh, 1024, 1024, 1.3)
	if err != nil {
		t.Fatal(err)
	}

	prefix := "The long prefix walks right up to the "
	prefixWidth := float64(font.MeasureString(fh.Regular, prefix)) / 64
	got := layout.LineX[1] + prefixWidth
	if math.Abs(got-layout.HighlightX) > 0.001 {
		t.Errorf("Phrase start in background = %f, overlay at %f", got, layout.HighlightX)
	}
}

func TestLayoutZeroWidthHighlight(t *testing.T) {
	fh := loadTestHandle(t, 36)
	sn := text.Snippet{
		Lines:          []string{"A single line holding nothing special whatsoever for this test."},
		HighlightIndex: 0,
	}

	_, err := computeLayout(sn, "", fh, 512, 512, 1.3)
	if err == nil {
		t.Fatal("Expected error for an empty highlight phrase")
	}
	var drawErr *fontcat.DrawError
	if !errors.As(err, &drawErr) {
		t.Errorf("Expected *fontcat.DrawError, got %T: %v", err, err)
	}
}

func TestLayoutLineHeightFloor(t *testing.T) {
	fh := loadTestHandle(t, 40)
	sn := testSnippet("phrase here")

	// A tiny spread must never collapse lines onto each other.
	layout, err := computeLayout(sn, "phrase here", fh, 1024, 1024, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if layout.LineHeight <= fh.Size*0.8*0.1 {
		t.Errorf("LineHeight %f did not apply the floor", layout.LineHeight)
	}
}
