package compositor

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"

	"github.com/ivlev/matchcut/internal/fontcat"
	"github.com/ivlev/matchcut/internal/text"
)

// Layout holds every coordinate a frame needs, computed once per frame and
// shared by the background pass and the final overlay. All values are in
// pixels; Y coordinates are the TOP of the text, not the baseline.
type Layout struct {
	LineHeight  float64
	BlockStartY float64

	// Final bold highlight box, centered in the frame. This is the anchor
	// the whole layout hangs from: the match-cut illusion depends on the
	// phrase sitting at the same pixels in every frame.
	HighlightX float64
	HighlightY float64
	HighlightW float64
	HighlightH float64

	// Per-line X. The highlight line is positioned so its phrase lands
	// exactly under the overlay; other lines are centered.
	LineX []float64
}

func computeLayout(sn text.Snippet, highlight string, fh *fontcat.Handle, width, height int, spread float64) (Layout, error) {
	var l Layout

	metricHeight := fh.MetricHeight()
	l.LineHeight = metricHeight * spread
	if l.LineHeight <= fh.Size*0.8 {
		l.LineHeight = fh.Size * 1.2 * spread
	}

	hlWidth := measure(fh.Bold, highlight)
	if hlWidth <= 0 {
		return Layout{}, &fontcat.DrawError{Path: fh.Path, Err: fmt.Errorf("zero-width measurement for %q", highlight)}
	}
	l.HighlightW = hlWidth
	l.HighlightH = fh.BoldMetricHeight()
	l.HighlightX = (float64(width) - l.HighlightW) / 2
	l.HighlightY = (float64(height) - l.HighlightH) / 2

	// The block is anchored to the centered highlight, not centered itself:
	// whichever line carries the phrase, that line's phrase must sit in the
	// exact middle of the frame.
	l.BlockStartY = l.HighlightY - float64(sn.HighlightIndex)*l.LineHeight

	l.LineX = make([]float64, len(sn.Lines))
	for i, line := range sn.Lines {
		if i == sn.HighlightIndex {
			prefix := line
			if idx := strings.Index(line, highlight); idx >= 0 {
				prefix = line[:idx]
			}
			l.LineX[i] = l.HighlightX - measure(fh.Regular, prefix)
			continue
		}
		lineWidth := measure(fh.Regular, line)
		x := (float64(width) - lineWidth) / 2
		if x < 20 {
			x = 20
		}
		// Keep short lines inside the central text column.
		if lineWidth < float64(width)*0.3 && x < float64(width)*0.15 {
			x = float64(width) * 0.15
		}
		l.LineX[i] = x
	}
	return l, nil
}

func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}
