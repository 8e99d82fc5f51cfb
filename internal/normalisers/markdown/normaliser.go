// Package markdown provides a Normaliser for Markdown files.
package markdown

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown files.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips Markdown syntax and keeps the prose.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrInvalidInput
	}

	return &driven.NormaliseResult{
		Text:   stripMarkdown(plaintext.Clean(string(raw.Content))),
		Format: "markdown",
	}, nil
}

var (
	fences        = regexp.MustCompile("(?m)^\\s*(```|~~~).*$\\n?")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(\*\*|\*)(\S(?:.*?\S)?)(\*\*|\*)`)
	underscores   = regexp.MustCompile(`\b(__|_)(\S(?:.*?\S)?)(__|_)\b`)
	blockquotes   = regexp.MustCompile(`(?m)^>\s?`)
	rules         = regexp.MustCompile(`(?m)^\s*([-*_])(\s*([-*_])){2,}\s*$`)
	bullets       = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	numbered      = regexp.MustCompile(`(?m)^(\s*)\d+[.)]\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes formatting. Code block contents are kept since
// they may hold values worth annotating.
func stripMarkdown(content string) string {
	content = fences.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "$1")
	content = numbered.ReplaceAllString(content, "$1")
	content = emphasis.ReplaceAllString(content, "$2")
	content = underscores.ReplaceAllString(content, "$2")
	content = blockquotes.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
