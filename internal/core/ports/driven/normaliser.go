package driven

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// Normaliser extracts annotatable plain text from one file format.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50-89, fallbacks return 1-9.
	Priority() int

	// Normalise extracts the text of a file.
	Normalise(ctx context.Context, raw *domain.RawFile) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Text is the extracted plain text. Match spans of data points index into it.
	Text string

	// Format names the normaliser that produced the text, e.g. "markdown".
	Format string
}

// NormaliserRegistry selects the normaliser for a file.
type NormaliserRegistry interface {
	// Normalise extracts text using the highest priority normaliser for the file's MIME type.
	Normalise(ctx context.Context, raw *domain.RawFile) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
