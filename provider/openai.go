package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// responsesTransport posts raw request bodies to {baseURL}/responses through
// the OpenAI SDK client. The SDK's own retries are disabled; the caller owns
// the retry loop and per-attempt deadlines.
type responsesTransport struct {
	client openai.Client
	hasKey bool
}

// newResponsesTransport builds the SDK client for one ResponsesClient.
//
// Parameters:
//   - baseURL: API base URL, with or without a trailing slash
//   - apiKey: bearer token; when empty no Authorization header is sent
//   - hc: HTTP client override (nil uses the SDK default)
func newResponsesTransport(baseURL, apiKey string, hc *http.Client) *responsesTransport {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}

	return &responsesTransport{
		client: openai.NewClient(opts...),
		hasKey: apiKey != "",
	}
}

// post performs a single attempt. A non-200 status is returned as *APIError
// carrying the status and message; a transport failure is returned as-is.
func (t *responsesTransport) post(ctx context.Context, payload []byte) ([]byte, error) {
	return t.do(ctx, http.MethodPost, "responses", payload)
}

// get fetches path relative to the base URL with the same error handling as
// post.
func (t *responsesTransport) get(ctx context.Context, path string) ([]byte, error) {
	return t.do(ctx, http.MethodGet, path, nil)
}

func (t *responsesTransport) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var (
		status int
		body   []byte
	)

	// The middleware sees the raw response before the SDK decodes it, so
	// non-JSON bodies and error statuses are classified here.
	capture := option.WithMiddleware(func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		resp, err := next(req)
		if err != nil {
			return resp, err
		}
		status = resp.StatusCode
		body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	})

	opts := []option.RequestOption{capture}
	if !t.hasKey {
		opts = append(opts, option.WithHeaderDel("Authorization"))
	}

	var err error
	if method == http.MethodGet {
		err = t.client.Get(ctx, path, nil, nil, opts...)
	} else {
		opts = append(opts, option.WithHeader("Content-Type", "application/json"))
		err = t.client.Post(ctx, path, json.RawMessage(payload), nil, opts...)
	}
	if status != 0 && status != http.StatusOK {
		return nil, newAPIError(status, body)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}
