package model

// PartType identifies the payload carried by a ContentPart.
type PartType string

const (
	PartInputText  PartType = "input_text"
	PartInputImage PartType = "input_image"
	PartText       PartType = "text"
)

// ContentPart is one element of a turn's content list.
type ContentPart struct {
	Type     PartType `json:"type"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// Turn is a single user input message queued for the responses endpoint.
type Turn struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// UserTurn builds a user message turn from the given parts.
func UserTurn(parts ...ContentPart) Turn {
	content := make([]ContentPart, 0, len(parts))
	content = append(content, parts...)
	return Turn{Type: "message", Role: "user", Content: content}
}

func InputText(text string) ContentPart {
	return ContentPart{Type: PartInputText, Text: text}
}

func PlainText(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// InputImage references an image by URL or data URL with automatic detail.
func InputImage(url string) ContentPart {
	return ContentPart{Type: PartInputImage, ImageURL: url, Detail: "auto"}
}
