package model

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// DataKind classifies a piece of content handed to the recognizer.
type DataKind string

const (
	KindMath       DataKind = "math"
	KindURL        DataKind = "url"
	KindOutputText DataKind = "output_text"
	KindInputText  DataKind = "input_text"
	KindImage      DataKind = "image"
	KindImageURL   DataKind = "image_url"
	KindText       DataKind = "text"
	KindInputImage DataKind = "input_image"
	KindInputURL   DataKind = "input_url"
	KindJSON       DataKind = "json"
	KindMarkdown   DataKind = "markdown"
	KindCode       DataKind = "code"
	KindEntity     DataKind = "entity"
	KindStructured DataKind = "structured"
	KindUnknown    DataKind = "unknown"
	KindSVG        DataKind = "svg"
	KindXML        DataKind = "xml"
)

// Kinds lists every known DataKind.
var Kinds = []DataKind{
	KindMath, KindURL, KindOutputText, KindInputText, KindImage, KindImageURL,
	KindText, KindInputImage, KindInputURL, KindJSON, KindMarkdown, KindCode,
	KindEntity, KindStructured, KindUnknown, KindSVG, KindXML,
}

// ParseKind returns the DataKind named by s, or false if unknown.
func ParseKind(s string) (DataKind, bool) {
	k := DataKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// TransportType maps a kind onto the content part type used to send it.
// URL and image kinds travel as images, everything else as text.
func TransportType(k DataKind) PartType {
	switch k {
	case KindURL, KindImageURL, KindImage, KindInputImage, KindInputURL:
		return PartInputImage
	default:
		return PartInputText
	}
}

// KindFromMIME guesses a kind from a MIME type string.
func KindFromMIME(mime string) DataKind {
	lower := strings.ToLower(mime)
	switch {
	case lower == "":
		return KindInputText
	case strings.Contains(lower, "image"):
		return KindInputImage
	case strings.Contains(lower, "json"):
		return KindJSON
	case strings.Contains(lower, "javascript"), strings.Contains(lower, "typescript"):
		return KindCode
	case strings.Contains(lower, "markdown"), strings.Contains(lower, "md"):
		return KindMarkdown
	case strings.Contains(lower, "url"):
		return KindInputURL
	case strings.Contains(lower, "text/html"):
		return KindMarkdown
	default:
		return KindInputText
	}
}

var (
	mathPattern     = regexp.MustCompile(`\$\$[\s\S]+\$\$|\$[^$]+\$|\\begin\{equation\}`)
	codePattern     = regexp.MustCompile("(?m)```[\\s\\S]+```|^(function|const|let|var|class|import|export)\\s")
	markdownPattern = regexp.MustCompile(`(?m)^#{1,6}\s|^\*\*|^-\s|\[.+\]\(.+\)|^>\s`)
)

const maxInlineImageLen = 100000

// DetectKind sniffs the kind of a text payload.
func DetectKind(content string) DataKind {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return KindInputText
	}

	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		if json.Valid([]byte(trimmed)) {
			return KindJSON
		}
	}

	if IsDataImageURL(trimmed) && len(trimmed) < maxInlineImageLen {
		return KindInputImage
	}
	if IsURL(trimmed) {
		return KindURL
	}
	if strings.Contains(trimmed, "<svg") && strings.Contains(trimmed, "</svg>") {
		return KindXML
	}

	switch {
	case mathPattern.MatchString(trimmed):
		return KindMath
	case codePattern.MatchString(trimmed):
		return KindCode
	case markdownPattern.MatchString(trimmed):
		return KindMarkdown
	}
	return KindInputText
}

// IsDataImageURL reports whether s is a single-line base64 image data URL.
func IsDataImageURL(s string) bool {
	return strings.HasPrefix(s, "data:image/") &&
		strings.Contains(s, ";base64,") &&
		!strings.Contains(s, "\n")
}

// IsURL reports whether s parses as an absolute URL.
func IsURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
