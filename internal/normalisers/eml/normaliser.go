// Package eml provides a Normaliser for saved email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/normalisers/html"
	"github.com/custodia-labs/annotate/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles EML files.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"message/rfc822"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns the subject line followed by the message body.
// Plain text parts are preferred over HTML ones.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, raw.Filename, err)
	}

	body, err := extractBody(textproto.MIMEHeader(msg.Header), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, raw.Filename, err)
	}

	var content strings.Builder
	if subject := decodeHeader(msg.Header.Get("Subject")); subject != "" {
		content.WriteString(subject)
		content.WriteString("\n\n")
	}
	content.WriteString(body)

	return &driven.NormaliseResult{
		Text:   strings.TrimSpace(plaintext.Clean(content.String())),
		Format: "eml",
	}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// decodeTransfer undoes the part's Content-Transfer-Encoding.
func decodeTransfer(header textproto.MIMEHeader, r io.Reader) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(header.Get("Content-Transfer-Encoding"))) {
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(r))
	case "base64":
		return io.ReadAll(base64.NewDecoder(base64.StdEncoding, r))
	default:
		return io.ReadAll(r)
	}
}

// extractBody returns the text of a message or part.
func extractBody(header textproto.MIMEHeader, r io.Reader) (string, error) {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(r, params["boundary"])
	}

	body, err := decodeTransfer(header, r)
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return html.StripHTML(string(body)), nil
	}
	return string(body), nil
}

// extractMultipartBody walks the parts, nested multiparts included.
func extractMultipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		mediaType, _, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "text/plain"
		}
		if disposition, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition")); disposition == "attachment" {
			part.Close()
			continue
		}

		text, err := extractBody(part.Header, part)
		part.Close()
		if err != nil {
			continue
		}

		switch {
		case mediaType == "text/html":
			htmlParts = append(htmlParts, text)
		case mediaType == "text/plain", strings.HasPrefix(mediaType, "multipart/"):
			if text != "" {
				textParts = append(textParts, text)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}
