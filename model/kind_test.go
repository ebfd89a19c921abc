package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    DataKind
	}{
		{"empty", "", KindInputText},
		{"json object", `{"a": 1}`, KindJSON},
		{"json array", `[1, 2, 3]`, KindJSON},
		{"broken json", `{"a": }`, KindInputText},
		{"url", "https://example.com/page?q=1", KindURL},
		{"data image", "data:image/png;base64,iVBORw0KGgo=", KindInputImage},
		{"svg", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, KindXML},
		{"math", `Solve $$x^2 = 4$$ for x`, KindMath},
		{"code", "const x = 1;\nconsole.log(x)", KindCode},
		{"markdown heading", "# Title\n\nbody", KindMarkdown},
		{"markdown link", "see [docs](http://x.y)", KindMarkdown},
		{"plain", "Call Bob tomorrow at noon", KindInputText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.content))
		})
	}
}

func TestKindFromMIME(t *testing.T) {
	tests := map[string]DataKind{
		"":                       KindInputText,
		"image/png":              KindInputImage,
		"application/json":       KindJSON,
		"text/javascript":        KindCode,
		"application/typescript": KindCode,
		"text/markdown":          KindMarkdown,
		"text/uri-list":          KindInputText,
		"text/x-url":             KindInputURL,
		"text/html":              KindMarkdown,
		"text/plain":             KindInputText,
	}
	for mime, want := range tests {
		assert.Equal(t, want, KindFromMIME(mime), mime)
	}
}

func TestTransportType(t *testing.T) {
	for _, k := range []DataKind{KindURL, KindImageURL, KindImage, KindInputImage, KindInputURL} {
		assert.Equal(t, PartInputImage, TransportType(k), k)
	}
	for _, k := range []DataKind{KindInputText, KindJSON, KindMarkdown, KindCode, KindXML, KindUnknown, ""} {
		assert.Equal(t, PartInputText, TransportType(k), k)
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com"))
	assert.True(t, IsURL("mailto:bob@example.com"))
	assert.False(t, IsURL("example.com"))
	assert.False(t, IsURL("Meeting at 10:30"))
	assert.False(t, IsURL(""))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" JSON ")
	assert.True(t, ok)
	assert.Equal(t, KindJSON, k)

	_, ok = ParseKind("pdf")
	assert.False(t, ok)
}
