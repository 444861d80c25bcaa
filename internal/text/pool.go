package text

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoContent means the pool is empty and the provider cannot fill it.
var ErrNoContent = errors.New("no valid text content available")

// Pool hands out snippets frame by frame. Each snippet serves framesPer
// consecutive frames; on expiry the pool grows toward its size cap by asking
// the provider, then rotates. Provider failures degrade gracefully: existing
// snippets keep rotating, and only an empty pool turns a failure into an
// error.
type Pool struct {
	provider  Provider
	highlight string
	minLines  int
	maxLines  int
	size      int
	framesPer int

	snippets []Snippet
	cursor   int
	used     int
}

// NewPool builds a pool. size is the cap on distinct snippets, framesPer is
// how many consecutive frames reuse one snippet.
func NewPool(provider Provider, highlight string, minLines, maxLines, size, framesPer int) *Pool {
	return &Pool{
		provider:  provider,
		highlight: highlight,
		minLines:  minLines,
		maxLines:  maxLines,
		size:      size,
		framesPer: framesPer,
		cursor:    -1,
	}
}

// Len reports the number of distinct snippets currently held.
func (p *Pool) Len() int { return len(p.snippets) }

// Tick returns the snippet for the next frame.
func (p *Pool) Tick(ctx context.Context) (Snippet, error) {
	if p.used >= p.framesPer || len(p.snippets) == 0 {
		if len(p.snippets) < p.size {
			sn, err := p.provider.Generate(ctx, p.highlight, p.minLines, p.maxLines)
			if err == nil {
				err = sn.Validate(p.highlight, p.minLines, p.maxLines, 0, 0)
			}
			switch {
			case err == nil:
				p.snippets = append(p.snippets, sn)
			case len(p.snippets) == 0:
				return Snippet{}, fmt.Errorf("%w: %v", ErrNoContent, err)
			}
		}
		p.cursor = (p.cursor + 1) % len(p.snippets)
		p.used = 0
	}
	p.used++
	return p.snippets[p.cursor], nil
}
