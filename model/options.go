package model

import (
	"fmt"
	"strings"
)

// Level is the shared low/medium/high scale used for reasoning effort and
// output verbosity.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel accepts a case-insensitive level name. Empty input yields "".
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case "", LevelLow, LevelMedium, LevelHigh:
		return l, nil
	default:
		return "", fmt.Errorf("invalid level %q (want low, medium or high)", s)
	}
}

// OrDefault returns l, or def when l is unset.
func (l Level) OrDefault(def Level) Level {
	if l == "" {
		return def
	}
	return l
}

// ResponseFormat selects the output contract requested from the model.
type ResponseFormat string

const (
	FormatText     ResponseFormat = "text"
	FormatJSON     ResponseFormat = "json"
	FormatMarkdown ResponseFormat = "markdown"
)

// RequestOptions tunes a single send. Zero values mean defaults.
type RequestOptions struct {
	Effort         Level
	Verbosity      Level
	ResponseFormat ResponseFormat
	Temperature    *float64
	MaxTokens      int
}

// Temperature returns a pointer for RequestOptions.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
