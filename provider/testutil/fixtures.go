package testutil

import (
	"encoding/json"
	"net/http"
)

// ResponseWithText is a minimal responses payload carrying one message.
func ResponseWithText(id, text string) string {
	quoted, _ := json.Marshal(text)
	return `{"id":"` + id + `","object":"response","output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":` + string(quoted) + `}]}],"usage":{"input_tokens":5,"output_tokens":3}}`
}

// OK replies 200 with body.
func OK(body string) Reply {
	return Reply{Status: http.StatusOK, Body: body}
}

// ServiceUnavailable replies 503.
func ServiceUnavailable() Reply {
	return Reply{Status: http.StatusServiceUnavailable, Body: `{"error":{"message":"overloaded"}}`}
}

// NotFound replies 404.
func NotFound() Reply {
	return Reply{Status: http.StatusNotFound, Body: `{"error":{"message":"model not found"}}`}
}
