package text

import (
	"context"
	"fmt"
	"log"
)

// Provider generates one snippet around the highlight phrase. Implementations
// must return snippets that pass Snippet.Validate for the same bounds.
type Provider interface {
	Generate(ctx context.Context, highlight string, minLines, maxLines int) (Snippet, error)
}

// GenerationError wraps a provider failure with the provider's name, so the
// pool can report which source ran dry.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("text generation failed (%s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// fallbackProvider tries the primary and falls back to the backup on any
// error. A backup failure is returned as-is.
type fallbackProvider struct {
	primary Provider
	backup  Provider
}

// WithFallback chains two providers: primary first, backup when it fails.
func WithFallback(primary, backup Provider) Provider {
	return &fallbackProvider{primary: primary, backup: backup}
}

func (f *fallbackProvider) Generate(ctx context.Context, highlight string, minLines, maxLines int) (Snippet, error) {
	sn, err := f.primary.Generate(ctx, highlight, minLines, maxLines)
	if err == nil {
		return sn, nil
	}
	log.Printf("[!] Primary text provider failed, using fallback: %v", err)
	return f.backup.Generate(ctx, highlight, minLines, maxLines)
}
