package provider

import (
	"time"

	"intake/model"
)

const (
	DefaultBaseURL         = "https://api.openai.com/v1"
	DefaultModel           = "gpt-5.2"
	DefaultMaxRetries      = 2
	DefaultRetryDelay      = 2 * time.Second
	DefaultMaxOutputTokens = 400000

	// MaxFileSize bounds attachments converted into content parts.
	MaxFileSize = 10 * 1024 * 1024
)

// DefaultRequestTimeouts is the per-attempt timeout for each effort level.
var DefaultRequestTimeouts = map[model.Level]time.Duration{
	model.LevelLow:    60 * time.Second,
	model.LevelMedium: 300 * time.Second,
	model.LevelHigh:   900 * time.Second,
}

// Settings configures a ResponsesClient. Zero fields fall back to the
// package defaults.
type Settings struct {
	APIKey         string
	BaseURL        string
	Model          string
	RequestTimeout map[model.Level]time.Duration
	MaxRetries     *int
}

// attemptPolicy is the timeout and retry budget applied to one Send.
type attemptPolicy struct {
	timeout    time.Duration
	maxRetries int
}

func (s Settings) baseURL() string {
	if s.BaseURL == "" {
		return DefaultBaseURL
	}
	return s.BaseURL
}

func (s Settings) model() string {
	if s.Model == "" {
		return DefaultModel
	}
	return s.Model
}

func (s Settings) policyFor(effort model.Level) attemptPolicy {
	p := attemptPolicy{
		timeout:    DefaultRequestTimeouts[model.LevelLow],
		maxRetries: DefaultMaxRetries,
	}
	if d, ok := DefaultRequestTimeouts[effort]; ok {
		p.timeout = d
	}
	if d, ok := s.RequestTimeout[effort]; ok && d > 0 {
		p.timeout = d
	}
	if s.MaxRetries != nil && *s.MaxRetries >= 0 {
		p.maxRetries = *s.MaxRetries
	}
	return p
}

// Retries returns a pointer for Settings.MaxRetries.
func Retries(n int) *int {
	return &n
}
