package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/normalisers/docx"
	"github.com/custodia-labs/annotate/internal/normalisers/eml"
	"github.com/custodia-labs/annotate/internal/normalisers/html"
	"github.com/custodia-labs/annotate/internal/normalisers/markdown"
	"github.com/custodia-labs/annotate/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// extensionTypes covers extensions the platform MIME table often lacks.
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".json":     "application/json",
	".xml":      "application/xml",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".htm":      "text/html",
	".html":     "text/html",
	".xhtml":    "application/xhtml+xml",
	".docx":     docx.MIMEType,
	".eml":      "message/rfc822",
}

// Registry dispatches files to the highest priority normaliser for their MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry holding every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(eml.New())
	return r
}

// Register adds a normaliser under each of its MIME types.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mt], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mt] = list
	}
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Normalise extracts the text of a file. The MIME type is detected from the
// filename and content when the file does not carry one.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mt := baseType(raw.MIMEType)
	if mt == "" {
		mt = DetectMIMEType(raw.Filename, raw.Content)
	}

	r.mu.RLock()
	candidates := r.byMIME[mt]
	if len(candidates) == 0 && strings.HasPrefix(mt, "text/") {
		candidates = r.byMIME["text/plain"]
	}
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: unsupported file type %q for %s", domain.ErrInvalidInput, mt, raw.Filename)
	}

	file := *raw
	file.MIMEType = mt
	return candidates[0].Normalise(ctx, &file)
}

// DetectMIMEType guesses a file's MIME type from its extension, then its content.
func DetectMIMEType(filename string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := extensionTypes[ext]; ok {
		return mt
	}
	if mt := baseType(mime.TypeByExtension(ext)); mt != "" {
		return mt
	}
	return baseType(http.DetectContentType(content))
}

// baseType strips parameters such as charset.
func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
