package provider

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-success HTTP status returned by the responses endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// IsClientError reports a 4xx status. Client errors are never retried.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// newAPIError reads the message from an {"error":{"message"}} or
// {"message"} body, falling back to the status line.
func newAPIError(status int, body []byte) *APIError {
	msg := ""
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "error"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.String() != "" {
				msg = r.String()
				break
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(http.StatusText(status))
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", status)
		} else {
			msg = fmt.Sprintf("HTTP %d %s", status, msg)
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}

// RetryError is returned once every attempt of a Send has failed.
type RetryError struct {
	Attempts int
	Last     error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryError) Unwrap() error {
	return e.Last
}
