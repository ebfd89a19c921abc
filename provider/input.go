package provider

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"intake/model"
)

const (
	beginAttachment = "\n === BEGIN:ATTACHED_DATA === \n"
	endAttachment   = "\n === END:ATTACHED_DATA === \n"
)

// toPart converts one content unit into a transport-safe part. Files become
// base64 data URLs or text, strings may become image references when their
// kind travels as an image, and structured values are encoded as YAML.
func toPart(content any, kind model.DataKind) (model.ContentPart, error) {
	switch v := content.(type) {
	case model.File:
		return filePart(v, kind), nil
	case *model.File:
		if v == nil {
			return model.InputText(""), nil
		}
		return filePart(*v, kind), nil
	case string:
		return stringPart(v, kind), nil
	case []byte:
		return filePart(model.File{MIME: http.DetectContentType(v), Data: v}, kind), nil
	case model.ContentPart:
		return v, nil
	}

	text, err := encodeStructured(content)
	if err != nil {
		return model.ContentPart{}, err
	}
	return model.InputText(text), nil
}

func filePart(f model.File, kind model.DataKind) model.ContentPart {
	if f.Size() > MaxFileSize {
		return model.InputText(fmt.Sprintf("[File too large: %.1fMB. Maximum allowed: %.1fMB]",
			float64(f.Size())/1024/1024, float64(MaxFileSize)/1024/1024))
	}

	if model.TransportType(kind) == model.PartInputImage || f.IsImage() {
		mime := f.MIME
		if mime == "" {
			mime = http.DetectContentType(f.Data)
		}
		return model.InputImage("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data))
	}

	if !utf8.Valid(f.Data) {
		return model.InputText("[Failed to read text file: content is not valid UTF-8]")
	}
	return model.InputText(string(f.Data))
}

func stringPart(s string, kind model.DataKind) model.ContentPart {
	if kind == "" {
		kind = model.DetectKind(s)
	}
	if model.TransportType(kind) == model.PartInputImage {
		content := strings.TrimSpace(s)
		if model.IsDataImageURL(content) || model.IsURL(content) {
			return model.InputImage(content)
		}
	}
	return model.InputText(s)
}

// encodeStructured renders v as YAML. yaml.v3 panics on funcs and channels;
// that is reported as an error.
func encodeStructured(v any) (_ string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to encode attached data: %v", r)
		}
	}()

	b, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode attached data: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func kindOf(content any, kind model.DataKind) model.DataKind {
	if kind != "" {
		return kind
	}
	switch v := content.(type) {
	case model.File:
		return model.KindFromMIME(v.MIME)
	case *model.File:
		if v != nil {
			return model.KindFromMIME(v.MIME)
		}
	}
	return model.KindInputText
}

// Append queues a content unit as supplementary request data. Strings go in
// verbatim; anything else is converted and framed by attachment markers.
// Append never fails: content that cannot be converted is sent as its
// printed form.
func (c *ResponsesClient) Append(content any, kind model.DataKind) model.Turn {
	if s, ok := content.(string); ok {
		return c.push(model.UserTurn(model.InputText("Additional data for request:"), model.InputText(s)))
	}

	part, err := toPart(content, kindOf(content, kind))
	if err != nil {
		c.log.WithError(err).Warn("attachment conversion failed, sending as text")
		return c.push(model.UserTurn(model.InputText("Additional data for request:"), model.InputText(fmt.Sprint(content))))
	}
	return c.push(model.UserTurn(
		model.InputText("Additional data for request:"),
		model.InputText(beginAttachment),
		part,
		model.InputText(endAttachment),
	))
}

// Attach queues content together with the kind-specific instruction of
// what to do with it, optionally followed by a separate action turn.
func (c *ResponsesClient) Attach(content any, kind model.DataKind, firstAction string) model.Turn {
	last := c.push(c.attachmentTurn(content, kindOf(content, kind), ""))
	if firstAction != "" {
		last = c.AskToDoAction(firstAction)
	}
	return last
}

func (c *ResponsesClient) attachmentTurn(content any, kind model.DataKind, additional string) model.Turn {
	part, err := toPart(content, kind)
	if err != nil {
		c.log.WithError(err).Warn("attachment conversion failed, sending as text")
		part = model.InputText(fmt.Sprint(content))
	}

	parts := []model.ContentPart{model.InputText("What to do: " + actionPrompt(kind, c.context))}
	if additional != "" {
		parts = append(parts, model.PlainText("Additional request data: "+additional))
	}
	parts = append(parts, model.InputText(beginAttachment), part, model.InputText(endAttachment))
	return model.UserTurn(parts...)
}

// AskToDoAction queues a single instruction turn.
func (c *ResponsesClient) AskToDoAction(action string) model.Turn {
	return c.push(model.UserTurn(model.InputText(action)))
}

// AttachExistingData records data the request should build on and queues it
// as YAML.
func (c *ResponsesClient) AttachExistingData(existing any, entityType string) model.Turn {
	dc := model.DataContext{}
	if c.context != nil {
		dc = *c.context
	}
	dc.ExistingData = existing
	if entityType != "" {
		dc.EntityType = entityType
	}
	c.context = &dc

	return c.Append(fmt.Sprintf("existing_data: `%s`\n", encodeOrPrint(existing)), "")
}

// AppendTurns queues prebuilt turns unchanged.
func (c *ResponsesClient) AppendTurns(turns ...model.Turn) {
	c.pending = append(c.pending, turns...)
}

func (c *ResponsesClient) push(t model.Turn) model.Turn {
	c.pending = append(c.pending, t)
	return t
}

func encodeOrPrint(v any) string {
	s, err := encodeStructured(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
