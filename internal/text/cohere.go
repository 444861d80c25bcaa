package text

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// Quality gate for model output: a retained line must look like real prose.
const (
	aiMinLineChars = 40
	aiMaxLineChars = 100
	aiMinWords     = 5
	aiAttempts     = 3
)

const aiPreamble = "You are a text generation assistant that creates natural, coherent text. " +
	"Follow formatting rules exactly and create meaningful sentences that flow naturally."

// CohereProvider generates snippets through the Cohere chat API. Raw model
// output goes through markdown cleanup and a per-line quality gate before it
// becomes a snippet; a response that fails the gate costs one attempt.
type CohereProvider struct {
	client *cohereclient.Client
	model  string
}

// NewCohere builds a provider for the given API key and chat model.
// The HTTP client forces HTTP/1.1: the Cohere endpoint intermittently resets
// HTTP/2 streams mid-response.
func NewCohere(apiKey, model string) *CohereProvider {
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	return &CohereProvider{
		client: cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
		),
		model: model,
	}
}

func (c *CohereProvider) Generate(ctx context.Context, highlight string, minLines, maxLines int) (Snippet, error) {
	prompt := buildPrompt(highlight, maxLines)

	var lastErr error
	for attempt := 0; attempt < aiAttempts; attempt++ {
		temperature := 0.7
		maxTokens := 800
		preamble := aiPreamble
		resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
			Message:     prompt,
			Model:       &c.model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
			Preamble:    &preamble,
		})
		if err != nil {
			lastErr = err
			continue
		}

		sn, err := buildSnippet(resp.Text, highlight, minLines, maxLines)
		if err != nil {
			lastErr = err
			continue
		}
		return sn, nil
	}
	return Snippet{}, &GenerationError{Provider: "cohere/" + c.model, Err: lastErr}
}

func buildPrompt(highlight string, targetLines int) string {
	return fmt.Sprintf(
		"Task: Generate exactly %d lines of coherent, natural text in a single language (no more, no less).\n\n"+
			"Rules:\n"+
			"1. Each line MUST be a complete, meaningful sentence in natural language\n"+
			"2. One line MUST contain exactly this phrase: '%s'\n"+
			"3. IMPORTANT: Each line MUST be 50-80 characters long (no short lines)\n"+
			"4. Create a coherent paragraph where all lines relate to each other\n"+
			"5. The text should flow naturally with the highlighted phrase integrated seamlessly\n"+
			"6. Write in a descriptive, engaging style that makes sense to a human reader\n"+
			"7. Every line must be substantial and meaningful, not just filler text\n"+
			"8. Fill all available space with properly formatted lines of text\n\n"+
			"Format:\n"+
			"- Return ONLY the lines of text\n"+
			"- Separate lines with single newlines\n"+
			"- No numbering, no quotes, no extra formatting\n"+
			"- EVERY line must be a complete sentence with proper punctuation\n",
		targetLines, highlight)
}

// buildSnippet cleans one raw model response into a validated snippet.
func buildSnippet(raw, highlight string, minLines, maxLines int) (Snippet, error) {
	lines := cleanResponse(raw)

	valid := lines[:0]
	for _, line := range lines {
		if lineLooksLikeProse(line) {
			valid = append(valid, line)
		}
	}
	if len(valid) < minLines {
		return Snippet{}, fmt.Errorf("only %d usable lines, want >= %d", len(valid), minLines)
	}

	highlightIdx := -1
	for i, line := range valid {
		if strings.Contains(line, highlight) {
			if highlightIdx != -1 {
				return Snippet{}, fmt.Errorf("highlight phrase appears in more than one line")
			}
			highlightIdx = i
		}
	}
	if highlightIdx == -1 {
		return Snippet{}, fmt.Errorf("highlight phrase missing from response")
	}

	// Trim to maxLines keeping a window around the highlight line.
	if len(valid) > maxLines {
		start := highlightIdx - maxLines/2
		if start < 0 {
			start = 0
		}
		if start+maxLines > len(valid) {
			start = len(valid) - maxLines
		}
		valid = valid[start : start+maxLines]
		highlightIdx -= start
	}

	sn := Snippet{Lines: valid, HighlightIndex: highlightIdx}
	if err := sn.Validate(highlight, minLines, maxLines, 0, 0); err != nil {
		return Snippet{}, err
	}
	return sn, nil
}

// cleanResponse strips markdown wrapping and obvious non-content lines, and
// unwraps "N. " numbering the model sometimes adds despite instructions.
func cleanResponse(raw string) []string {
	cleaned := strings.ReplaceAll(raw, "```", "")
	cleaned = strings.ReplaceAll(cleaned, "**", "")

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") ||
			strings.HasPrefix(line, "*") || strings.HasPrefix(line, "Note:") ||
			strings.HasPrefix(line, "Format:") {
			continue
		}
		if len(line) > 3 && unicode.IsDigit(rune(line[0])) && line[1] == '.' && line[2] == ' ' {
			line = line[3:]
		}
		lines = append(lines, line)
	}
	return lines
}

func lineLooksLikeProse(line string) bool {
	last, _ := utf8.DecodeLastRuneInString(line)
	return len(line) >= aiMinLineChars &&
		len(line) <= aiMaxLineChars &&
		strings.Contains(line, " ") &&
		strings.ContainsRune(".?!", last) &&
		len(strings.Fields(line)) >= aiMinWords
}
