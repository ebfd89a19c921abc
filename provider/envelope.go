package provider

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// NoTextContent is the envelope content used when a response carries no
// extractable text.
const NoTextContent = "No text content available"

const envelopeTemplate = `{"choices":[{"message":{"content":""}}],"usage":{},"id":null,"object":"chat.completion"}`

// Envelope is the uniform chat-completion-like shape returned by Send.
type Envelope struct {
	Choices []EnvelopeChoice `json:"choices"`
	Usage   json.RawMessage  `json:"usage"`
	ID      *string          `json:"id"`
	Object  string           `json:"object"`
}

type EnvelopeChoice struct {
	Message EnvelopeMessage `json:"message"`
}

type EnvelopeMessage struct {
	Content string `json:"content"`
}

// Content returns the first choice's message content.
func (e Envelope) Content() string {
	if len(e.Choices) == 0 {
		return ""
	}
	return e.Choices[0].Message.Content
}

// ParseEnvelope decodes an envelope string returned by Send.
func ParseEnvelope(s string) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse response envelope: %w", err)
	}
	return e, nil
}

// buildEnvelope renders content, usage and id into the uniform envelope.
// Missing or non-object usage becomes {} and an empty id becomes null.
func buildEnvelope(content string, usage gjson.Result, id string) string {
	out := envelopeTemplate
	out = setValue(out, "choices.0.message.content", content)
	if usage.IsObject() {
		if updated, err := sjson.SetRaw(out, "usage", usage.Raw); err == nil {
			out = updated
		}
	}
	if id != "" {
		out = setValue(out, "id", id)
	}
	return out
}

func setValue(doc, path string, v any) string {
	updated, err := sjson.Set(doc, path, v)
	if err != nil {
		return doc
	}
	return updated
}
