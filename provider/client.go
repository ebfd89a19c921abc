package provider

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"intake/model"
)

// RecognitionCache stores recognized output keyed by content hash.
type RecognitionCache interface {
	Get(key string) (string, bool)
	Put(key, value string) error
}

// Tool is a tool descriptor sent in the request's tools list.
type Tool struct {
	Type            string            `json:"type"`
	ServerLabel     string            `json:"server_label"`
	ServerURL       string            `json:"server_url"`
	Headers         map[string]string `json:"headers,omitempty"`
	RequireApproval string            `json:"require_approval"`
}

// ResponsesClient holds one conversational session against a responses
// endpoint. It is not safe for concurrent use; callers serialize access.
type ResponsesClient struct {
	settings   Settings
	transport  *responsesTransport
	log        logrus.FieldLogger
	httpClient *http.Client
	retryDelay time.Duration
	cache      RecognitionCache

	responseID string
	pending    []model.Turn
	history    []json.RawMessage
	tools      []Tool
	toolIndex  map[string]int
	context    *model.DataContext
	responses  map[string]json.RawMessage
}

// Option customizes a ResponsesClient.
type Option func(*ResponsesClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *ResponsesClient) { c.httpClient = hc }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *ResponsesClient) { c.log = l }
}

// WithRetryDelay sets the fixed pause between failed attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *ResponsesClient) { c.retryDelay = d }
}

// WithCache enables recognition caching.
func WithCache(cache RecognitionCache) Option {
	return func(c *ResponsesClient) { c.cache = cache }
}

// WithContext seeds the request context used for prompt construction.
func WithContext(dc model.DataContext) Option {
	return func(c *ResponsesClient) { c.context = &dc }
}

// NewResponsesClient creates a client with empty buffers and no
// continuation token.
func NewResponsesClient(settings Settings, opts ...Option) *ResponsesClient {
	c := &ResponsesClient{
		settings:   settings,
		retryDelay: DefaultRetryDelay,
		toolIndex:  make(map[string]int),
		responses:  make(map[string]json.RawMessage),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	c.log = c.log.WithField("component", "responses")
	c.transport = newResponsesTransport(settings.baseURL(), settings.APIKey, c.httpClient)
	return c
}

// Pending returns a copy of the turns queued for the next send.
func (c *ResponsesClient) Pending() []model.Turn {
	out := make([]model.Turn, len(c.pending))
	copy(out, c.pending)
	return out
}

// ClearPending drops all queued turns.
func (c *ResponsesClient) ClearPending() {
	c.pending = nil
}

// History returns the turns and output items of completed sends, in order.
func (c *ResponsesClient) History() []json.RawMessage {
	out := make([]json.RawMessage, len(c.history))
	copy(out, c.history)
	return out
}

func (c *ResponsesClient) ResponseID() string {
	return c.responseID
}

// BeginFromResponseID continues an earlier conversation.
func (c *ResponsesClient) BeginFromResponseID(id string) {
	c.responseID = strings.TrimSpace(id)
}

// Response returns the raw provider payload cached for a response id.
func (c *ResponsesClient) Response(id string) (json.RawMessage, bool) {
	r, ok := c.responses[id]
	return r, ok
}

func (c *ResponsesClient) SetContext(dc *model.DataContext) {
	c.context = dc
}

func (c *ResponsesClient) Context() *model.DataContext {
	return c.context
}

// Tools returns the registered tool descriptors in registration order.
func (c *ResponsesClient) Tools() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// UseMCP registers a remote MCP server as a tool. Registering the same URL
// again replaces the earlier descriptor in place.
func (c *ResponsesClient) UseMCP(label, serverURL, clientKey, secretKey string) {
	serverURL = strings.TrimSpace(serverURL)
	tool := Tool{
		Type:            "mcp",
		ServerLabel:     label,
		ServerURL:       serverURL,
		RequireApproval: "never",
	}
	if clientKey != "" || secretKey != "" {
		tool.Headers = map[string]string{
			"authorization": "Bearer " + clientKey + ":" + secretKey,
		}
	}

	if i, ok := c.toolIndex[serverURL]; ok {
		c.tools[i] = tool
		return
	}
	c.toolIndex[serverURL] = len(c.tools)
	c.tools = append(c.tools, tool)
}
