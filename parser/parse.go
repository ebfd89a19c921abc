package parser

import (
	"encoding/json"

	"github.com/titanous/json5"
)

// decode parses text leniently as JSON5 first (trailing commas, comments,
// single quotes, unquoted keys), then strictly as JSON.
func decode(text string) (any, bool) {
	if text == "" {
		return nil, false
	}

	var v any
	if err := json5.Unmarshal([]byte(text), &v); err == nil {
		return v, true
	}

	v = nil
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, true
	}
	return nil, false
}
