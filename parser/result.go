// Package parser recovers structured values from the unreliable text that
// language models return: bare JSON, JSON wrapped in markdown fences or prose,
// and JSON damaged by trailing commas, raw newlines or control characters.
//
// Nothing in this package performs I/O or panics. Failure is reported in the
// returned Result rather than as a Go error.
package parser

import "errors"

// Source records which strategy produced a Result.
type Source string

const (
	SourceDirect        Source = "direct"
	SourceMarkdownBlock Source = "markdown_block"
	SourceRecovered     Source = "recovered"
	SourceFallback      Source = "fallback"
)

var (
	ErrNullInput  = errors.New("empty/null input")
	ErrEmptyInput = errors.New("empty input after cleaning")
	ErrNoJSON     = errors.New("could not extract valid JSON")
)

// Result is the outcome of an extraction. When OK is true Data holds the
// decoded value and Err is nil; otherwise Err is set and Data is nil. Raw
// always holds the original input text.
type Result struct {
	OK     bool
	Data   any
	Raw    string
	Err    error
	Source Source
}

func success(data any, raw string, src Source) Result {
	return Result{OK: true, Data: data, Raw: raw, Source: src}
}

func failure(err error, raw string) Result {
	return Result{Err: err, Raw: raw}
}
