// Package text produces the snippets shown behind the highlight: short
// paragraphs of plausible prose where exactly one line carries the phrase.
// Providers are interchangeable; the pool above them owns reuse and rotation.
package text

import (
	"fmt"
	"strings"
)

// Snippet is one generated paragraph. HighlightIndex points at the single
// line containing the highlight phrase.
type Snippet struct {
	Lines          []string
	HighlightIndex int
}

// Validate checks the structural invariants every provider must uphold:
// line count within [minLines, maxLines], a valid highlight index, the
// phrase present in that line and absent from every other.
func (s Snippet) Validate(highlight string, minLines, maxLines, minChars, maxChars int) error {
	if len(s.Lines) < minLines || len(s.Lines) > maxLines {
		return fmt.Errorf("snippet has %d lines, want [%d, %d]", len(s.Lines), minLines, maxLines)
	}
	if s.HighlightIndex < 0 || s.HighlightIndex >= len(s.Lines) {
		return fmt.Errorf("highlight index %d out of range [0, %d)", s.HighlightIndex, len(s.Lines))
	}
	for i, line := range s.Lines {
		if strings.TrimSpace(line) == "" {
			return fmt.Errorf("line %d is blank", i)
		}
		has := strings.Contains(line, highlight)
		if i == s.HighlightIndex && !has {
			return fmt.Errorf("line %d does not contain the highlight phrase", i)
		}
		if i != s.HighlightIndex && has {
			return fmt.Errorf("highlight phrase appears in line %d as well as line %d", i, s.HighlightIndex)
		}
		if minChars > 0 && len(line) < minChars {
			return fmt.Errorf("line %d is %d chars, want >= %d", i, len(line), minChars)
		}
		if maxChars > 0 && len(line) > maxChars && i != s.HighlightIndex {
			return fmt.Errorf("line %d is %d chars, want <= %d", i, len(line), maxChars)
		}
	}
	return nil
}
