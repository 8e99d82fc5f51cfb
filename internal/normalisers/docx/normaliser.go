// Package docx provides a Normaliser for Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the content type of a DOCX file.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Normaliser handles DOCX files.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the body text of a DOCX file, one line per paragraph.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive", domain.ErrInvalidInput, raw.Filename)
	}

	content, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, raw.Filename, err)
	}

	text, err := parseDocumentXML(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, raw.Filename, err)
	}

	return &driven.NormaliseResult{Text: text, Format: "docx"}, nil
}

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

// run keeps text, tabs and breaks in document order.
type run struct {
	Items []runItem `xml:",any"`
}

type runItem struct {
	XMLName xml.Name
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", err
	}

	lines := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range para.Runs {
			for _, item := range r.Items {
				switch item.XMLName.Local {
				case "t":
					b.WriteString(item.Content)
				case "tab":
					b.WriteString("\t")
				case "br", "cr":
					b.WriteString("\n")
				}
			}
		}
		lines = append(lines, b.String())
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
