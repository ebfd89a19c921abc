package parser

const DefaultFallbackKey = "data"

// Fallback is the outcome of ParseWithFallback. It always carries data.
type Fallback struct {
	OK           bool
	Data         any
	Raw          string
	Source       Source
	WasRecovered bool
	Err          error
}

// ParseWithFallback extracts a value from text and, when nothing can be
// recovered, wraps the raw text as {fallbackKey: raw} so callers always get
// usable data. An empty fallbackKey means DefaultFallbackKey.
func ParseWithFallback(text, fallbackKey string) Fallback {
	if fallbackKey == "" {
		fallbackKey = DefaultFallbackKey
	}

	r := Extract(text)
	if r.OK {
		return Fallback{
			OK:           true,
			Data:         r.Data,
			Raw:          r.Raw,
			Source:       r.Source,
			WasRecovered: r.Source == SourceRecovered,
		}
	}
	return Fallback{
		Data:   map[string]any{fallbackKey: text},
		Raw:    text,
		Source: SourceFallback,
		Err:    r.Err,
	}
}
