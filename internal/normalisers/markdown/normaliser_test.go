package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawFile{
		Filename: "notes.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Findings\r\n\r\nThe patient is **54** years old."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Findings\n\nThe patient is 54 years old.", result.Text)
	assert.Equal(t, "markdown", result.Format)
}

func TestNormalise_NilFile(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawFile{Content: []byte{0xc3, 0x28}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading", "## Dosage", "Dosage"},
		{"link", "see [the trial](https://example.com)", "see the trial"},
		{"image keeps alt text", "![scan](scan.png)", "scan"},
		{"inline code", "value `42` mg", "value 42 mg"},
		{"code block contents kept", "```\nheight: 180\n```", "height: 180"},
		{"bold and italic", "**bold** and *italic* and __under__", "bold and italic and under"},
		{"snake case untouched", "profile_point_id", "profile_point_id"},
		{"blockquote", "> quoted", "quoted"},
		{"bullets", "- one\n- two", "one\ntwo"},
		{"numbered", "1. first\n2) second", "first\nsecond"},
		{"rule", "above\n\n---\n\nbelow", "above\n\nbelow"},
		{"collapses blank lines", "a\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.input))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
