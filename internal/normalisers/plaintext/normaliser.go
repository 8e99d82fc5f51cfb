// Package plaintext provides the fallback Normaliser for text files.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const bom = "\ufeff"

// Normaliser handles plain text files.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
		"text/xml",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the file content with line endings unified.
// Invalid UTF-8 is rejected since match offsets would be meaningless.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrInvalidInput
	}

	return &driven.NormaliseResult{
		Text:   Clean(string(raw.Content)),
		Format: "plaintext",
	}, nil
}

// Clean strips a byte order mark and converts CRLF and CR line endings to LF.
func Clean(s string) string {
	s = strings.TrimPrefix(s, bom)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
