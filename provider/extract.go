package provider

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// textExtractor pulls display text out of one provider response shape.
type textExtractor struct {
	name    string
	extract func(r gjson.Result) (string, bool)
}

// textExtractors are tried in order; the first that yields text wins.
// Assigned in init because fromString recurses through extractText.
var textExtractors []textExtractor

func init() {
	textExtractors = []textExtractor{
		{name: "quoted_string", extract: fromString},
		{name: "item_array", extract: fromItemArray},
		{name: "numeric_keys", extract: fromNumericKeys},
		{name: "output_text", extract: fromOutputText},
		{name: "output_content", extract: fromOutputContent},
	}
}

const textSeparator = "\n\n"

// extractText runs the extractor list against a decoded response.
func extractText(r gjson.Result) (string, string, bool) {
	for _, ex := range textExtractors {
		if text, ok := ex.extract(r); ok {
			return text, ex.name, true
		}
	}
	return "", "", false
}

// fromString handles a bare string body. A string that is itself a quoted
// JSON document is decoded once more.
func fromString(r gjson.Result) (string, bool) {
	if r.Type != gjson.String {
		return "", false
	}
	s := r.String()
	if s == "" {
		return "", false
	}
	if len(s) > 1 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && strings.Contains(s, `\n`) {
		inner := gjson.Parse(s)
		if inner.Type == gjson.String {
			return inner.String(), true
		}
		if inner.IsObject() || inner.IsArray() {
			if text, _, ok := extractText(inner); ok {
				return text, true
			}
		}
	}
	return s, true
}

func fromItemArray(r gjson.Result) (string, bool) {
	if !r.IsArray() {
		return "", false
	}
	var texts []string
	for _, item := range r.Array() {
		if text, ok := itemText(item); ok {
			texts = append(texts, text)
		}
	}
	return joinTexts(texts)
}

func fromNumericKeys(r gjson.Result) (string, bool) {
	if !r.IsObject() {
		return "", false
	}
	type entry struct {
		key  float64
		item gjson.Result
	}
	var entries []entry
	numeric := true
	r.ForEach(func(k, v gjson.Result) bool {
		n, err := strconv.ParseFloat(k.String(), 64)
		if err != nil {
			numeric = false
			return false
		}
		entries = append(entries, entry{key: n, item: v})
		return true
	})
	if !numeric || len(entries) == 0 {
		return "", false
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	var texts []string
	for _, e := range entries {
		if text, ok := itemText(e.item); ok {
			texts = append(texts, text)
		}
	}
	return joinTexts(texts)
}

func fromOutputText(r gjson.Result) (string, bool) {
	ot := r.Get("output_text")
	if !ot.IsArray() {
		return "", false
	}
	var texts []string
	for _, t := range ot.Array() {
		texts = append(texts, t.String())
	}
	return joinTexts(texts)
}

// fromOutputContent walks output[] (or choices[] when output is absent) and
// collects message content given either as a string or as parts.
func fromOutputContent(r gjson.Result) (string, bool) {
	items := r.Get("output")
	if !items.IsArray() {
		items = r.Get("choices")
	}
	if !items.IsArray() {
		return "", false
	}

	var texts []string
	for _, msg := range items.Array() {
		content := msg.Get("content")
		if !content.Exists() || content.Type == gjson.Null {
			content = msg.Get("message.content")
		}
		switch {
		case content.Type == gjson.String:
			if s := content.String(); s != "" {
				texts = append(texts, s)
			}
		case content.IsArray():
			for _, part := range content.Array() {
				if t := part.Get("text"); t.Type == gjson.String {
					texts = append(texts, t.String())
				} else if v := part.Get("text.value"); v.Type == gjson.String {
					texts = append(texts, v.String())
				}
			}
		}
	}
	return joinTexts(texts)
}

func itemText(item gjson.Result) (string, bool) {
	if item.Type == gjson.String {
		return item.String(), true
	}
	for _, path := range []string{"text", "content", "message.content"} {
		if v := item.Get(path); v.Type == gjson.String && v.String() != "" {
			return v.String(), true
		}
	}
	return "", false
}

func joinTexts(texts []string) (string, bool) {
	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, textSeparator), true
}
