package parser

import (
	"encoding/json"
	"fmt"
)

// Decode converts a successful Result's data into T by round-tripping it
// through encoding/json.
func Decode[T any](r Result) (T, error) {
	var out T
	if !r.OK {
		if r.Err == nil {
			return out, ErrNoJSON
		}
		return out, r.Err
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return out, fmt.Errorf("failed to re-encode extracted data: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("failed to decode extracted data: %w", err)
	}
	return out, nil
}
