package html

import (
	"context"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML files.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts an HTML file to its readable text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrInvalidInput
	}

	return &driven.NormaliseResult{
		Text:   StripHTML(string(raw.Content)),
		Format: "html",
	}, nil
}

// rewrite is one markup substitution applied in order.
type rewrite struct {
	re   *regexp.Regexp
	with string
}

// Invisible elements go first so their text never reaches the output.
// Block boundaries become newlines and table cells become spaces.
var rewrites = []rewrite{
	{regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)[^>]*>.*?</(script|style|noscript|head|svg)>`), ""},
	{regexp.MustCompile(`(?s)<!--.*?-->`), ""},
	{regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)(\s[^>]*)?>`), "\n"},
	{regexp.MustCompile(`(?i)<(br|hr)\s*/?>`), "\n"},
	{regexp.MustCompile(`(?i)</(td|th)>`), " "},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

var runsOfBlanks = regexp.MustCompile(`[ \t]+`)

// StripHTML removes markup and returns one line per block of text.
// Non-breaking spaces become plain spaces, so match spans index the same
// characters a user sees and searches for.
func StripHTML(content string) string {
	for _, r := range rewrites {
		content = r.re.ReplaceAllString(content, r.with)
	}
	content = html.UnescapeString(content)
	content = strings.ReplaceAll(content, "\u00a0", " ")
	content = runsOfBlanks.ReplaceAllString(content, " ")

	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}
