package model

import (
	"strings"
	"time"
)

// RecognitionResult is the structured output of a recognition request.
type RecognitionResult struct {
	KeywordsAndTags []string `json:"keywords_and_tags" jsonschema:"description=Special tags and keywords found in the data"`
	RecognizedData  []any    `json:"recognized_data" jsonschema:"description=Normalized phone numbers, emails, URLs, dates, codes and other values"`
	VerboseData     string   `json:"verbose_data" jsonschema:"description=Free-form markdown analysis of the data"`
	UsingReady      bool     `json:"using_ready"`
	Confidence      float64  `json:"confidence" jsonschema:"minimum=0,maximum=1"`
	SuggestedType   string   `json:"suggested_type,omitempty" jsonschema:"description=Entity type such as task, event, person, place, service or item"`

	SourceKind DataKind `json:"source_kind,omitempty" jsonschema:"-"`
	ResponseID string   `json:"response_id,omitempty" jsonschema:"-"`
	FromCache  bool     `json:"-"`
}

// RecognitionFromData reads a RecognitionResult out of a decoded JSON value,
// tolerating the loose shapes models tend to produce. A bare string becomes
// the verbose data.
func RecognitionFromData(data any) RecognitionResult {
	var r RecognitionResult
	switch v := data.(type) {
	case string:
		r.VerboseData = v
		return r
	case []any:
		r.RecognizedData = v
		return r
	case map[string]any:
		r.KeywordsAndTags = stringList(v["keywords_and_tags"])
		switch rd := v["recognized_data"].(type) {
		case nil:
		case []any:
			r.RecognizedData = rd
		default:
			r.RecognizedData = []any{rd}
		}
		r.VerboseData, _ = v["verbose_data"].(string)
		r.UsingReady, _ = v["using_ready"].(bool)
		r.Confidence, _ = v["confidence"].(float64)
		r.SuggestedType, _ = v["suggested_type"].(string)
	}
	return r
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if list == "" {
			return nil
		}
		parts := strings.Split(list, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// Entity is a stored, typed record produced from recognized content.
type Entity struct {
	ID          string         `json:"id" yaml:"id"`
	Type        string         `json:"type" yaml:"type"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords    []string       `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Data        []any          `json:"data,omitempty" yaml:"data,omitempty"`
	Properties  map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Confidence  float64        `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	SourceKind  DataKind       `json:"source_kind,omitempty" yaml:"source_kind,omitempty"`
	ResponseID  string         `json:"response_id,omitempty" yaml:"response_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
}

const defaultEntityType = "item"

// EntityFromRecognition builds an unsaved entity from a recognition result.
// An empty name falls back to the first keyword, then the entity type.
func EntityFromRecognition(r RecognitionResult, name string) Entity {
	typ := strings.ToLower(strings.TrimSpace(r.SuggestedType))
	if typ == "" {
		typ = defaultEntityType
	}
	if name == "" && len(r.KeywordsAndTags) > 0 {
		name = r.KeywordsAndTags[0]
	}
	if name == "" {
		name = typ
	}
	return Entity{
		Type:        typ,
		Name:        name,
		Description: r.VerboseData,
		Keywords:    r.KeywordsAndTags,
		Data:        r.RecognizedData,
		Confidence:  r.Confidence,
		SourceKind:  r.SourceKind,
		ResponseID:  r.ResponseID,
	}
}
