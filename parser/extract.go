package parser

import (
	"encoding/json"
	"reflect"
	"regexp"
)

const fence = "```"

// blockPatterns are tried in order. Fenced blocks come first so that a
// tagged block wins over a bare span appearing elsewhere in the text.
var blockPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)" + fence + `json\s*\n?([\s\S]*?)\n?` + fence),
	regexp.MustCompile("(?i)" + fence + `toon\s*\n?([\s\S]*?)\n?` + fence),
	regexp.MustCompile(fence + `\s*\n?([\s\S]*?)\n?` + fence),
	regexp.MustCompile(`(\{[\s\S]*\})`),
	regexp.MustCompile(`(\[[\s\S]*\])`),
}

var (
	jsonSpanPattern      = regexp.MustCompile(`(\{[\s\S]+\}|\[[\s\S]+\])`)
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
	bareNewlinePattern   = regexp.MustCompile(`:\s*"([^"]*)\n([^"]*)"`)
	controlCharPattern   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// Extract pulls a structured value out of model text. Strategies run in a
// fixed order and the first to succeed wins: the whole cleaned text, then
// fenced or bare JSON blocks, then a repaired JSON span.
func Extract(text string) Result {
	cleaned := Clean(text)
	if cleaned == "" {
		return failure(ErrEmptyInput, text)
	}

	if v, ok := decode(cleaned); ok {
		return success(v, text, SourceDirect)
	}

	for _, p := range blockPatterns {
		m := p.FindStringSubmatch(cleaned)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		if v, ok := decode(Clean(m[1])); ok {
			return success(v, text, SourceMarkdownBlock)
		}
	}

	if span := jsonSpanPattern.FindString(cleaned); span != "" {
		if v, ok := decode(repair(span)); ok {
			return success(v, text, SourceRecovered)
		}
	}

	return failure(ErrNoJSON, text)
}

// ExtractValue is Extract for arbitrary input. Text-like values are parsed;
// nil fails with ErrNullInput; values that are already structured pass
// through unchanged.
func ExtractValue(v any) Result {
	switch t := v.(type) {
	case nil:
		return failure(ErrNullInput, "")
	case string:
		return Extract(t)
	case []byte:
		if t == nil {
			return failure(ErrNullInput, "")
		}
		return Extract(string(t))
	case json.RawMessage:
		if t == nil {
			return failure(ErrNullInput, "")
		}
		return Extract(string(t))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return failure(ErrNullInput, "")
		}
	}
	return success(v, "", SourceDirect)
}

// repair applies the last-resort fixes to a candidate JSON span. The
// newline escape is a heuristic and can alter string content.
func repair(s string) string {
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = bareNewlinePattern.ReplaceAllString(s, `: "${1}\n${2}"`)
	return controlCharPattern.ReplaceAllString(s, "")
}

var anyBlockPattern = regexp.MustCompile("(?i)" + fence + `(?:json|toon)?\s*\n?([\s\S]*?)\n?` + fence)

// ExtractAll returns a result for every fenced block in text that decodes.
// When no block decodes it falls back to a single Extract, returning nil if
// that fails too.
func ExtractAll(text string) []Result {
	cleaned := Clean(text)
	var out []Result
	for _, m := range anyBlockPattern.FindAllStringSubmatch(cleaned, -1) {
		if v, ok := decode(Clean(m[1])); ok {
			out = append(out, success(v, m[0], SourceMarkdownBlock))
		}
	}
	if len(out) > 0 {
		return out
	}
	if r := Extract(text); r.OK {
		return []Result{r}
	}
	return nil
}
