package eml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

func normalise(t *testing.T, content string) string {
	t.Helper()
	result, err := New().Normalise(context.Background(), &domain.RawFile{
		Filename: "message.eml",
		MIMEType: "message/rfc822",
		Content:  []byte(content),
	})
	require.NoError(t, err)
	assert.Equal(t, "eml", result.Format)
	return result.Text
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"message/rfc822"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilFile(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_SimpleEmail(t *testing.T) {
	text := normalise(t, `From: clinic@example.com
To: registry@example.com
Subject: Follow-up visit
Content-Type: text/plain

The patient weighs 72 kg.
Next visit in 3 months.
`)

	assert.Equal(t, "Follow-up visit\n\nThe patient weighs 72 kg.\nNext visit in 3 months.", text)
	assert.NotContains(t, text, "clinic@example.com")
}

func TestNormalise_NoSubject(t *testing.T) {
	text := normalise(t, `From: a@example.com
Content-Type: text/plain

Body only.
`)

	assert.Equal(t, "Body only.", text)
}

func TestNormalise_HTMLBody(t *testing.T) {
	text := normalise(t, `Subject: Report
Content-Type: text/html

<html><body><p>Height: 180 cm</p><p>Weight: 72 kg</p></body></html>
`)

	assert.Equal(t, "Report\n\nHeight: 180 cm\nWeight: 72 kg", text)
}

func TestNormalise_MultipartPrefersPlainText(t *testing.T) {
	text := normalise(t, `Subject: Results
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain

Plain body
--b1
Content-Type: text/html

<p>HTML body</p>
--b1--
`)

	assert.Contains(t, text, "Plain body")
	assert.NotContains(t, text, "HTML body")
}

func TestNormalise_MultipartHTMLOnly(t *testing.T) {
	text := normalise(t, `Subject: Results
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/html

<p>HTML body</p>
--b1--
`)

	assert.Equal(t, "Results\n\nHTML body", text)
}

func TestNormalise_SkipsAttachments(t *testing.T) {
	text := normalise(t, `Subject: Scan
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: text/plain

See attached.
--outer
Content-Type: text/plain
Content-Disposition: attachment; filename="notes.txt"

attachment text
--outer--
`)

	assert.Contains(t, text, "See attached.")
	assert.NotContains(t, text, "attachment text")
}

func TestNormalise_QuotedPrintable(t *testing.T) {
	text := normalise(t, `Subject: Encoded
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

Temperatur: 38,5 =C2=B0C
`)

	assert.Equal(t, "Encoded\n\nTemperatur: 38,5 °C", text)
}

func TestNormalise_Base64Part(t *testing.T) {
	text := normalise(t, `Subject: B64
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="b"

--b
Content-Type: text/plain
Content-Transfer-Encoding: base64

SGVsbG8g
d29ybGQ=
--b--
`)

	assert.Equal(t, "B64\n\nHello world", text)
}

func TestNormalise_EncodedSubject(t *testing.T) {
	text := normalise(t, `Subject: =?UTF-8?B?QmVmdW5k?=
Content-Type: text/plain

x
`)

	assert.Equal(t, "Befund\n\nx", text)
}

func TestNormalise_InvalidEmail(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawFile{
		Filename: "broken.eml",
		Content:  []byte("no headers here"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Plain", "Plain"},
		{"=?UTF-8?Q?Caf=C3=A9?=", "Café"},
		{"=?bogus?Q?x?=", "=?bogus?Q?x?="},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeHeader(tt.input))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
