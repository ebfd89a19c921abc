package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"intake/model"
	"intake/parser"
)

type reasoningParam struct {
	Effort model.Level `json:"effort"`
}

type textParam struct {
	Verbosity model.Level `json:"verbosity"`
}

type responsesRequest struct {
	Model              string         `json:"model"`
	Tools              []Tool         `json:"tools"`
	Input              []model.Turn   `json:"input"`
	Reasoning          reasoningParam `json:"reasoning"`
	Text               textParam      `json:"text"`
	MaxOutputTokens    int            `json:"max_output_tokens"`
	PreviousResponseID string         `json:"previous_response_id,omitempty"`
	Instructions       string         `json:"instructions,omitempty"`
	Temperature        *float64       `json:"temperature,omitempty"`
}

// sendPhase is the state of the Send state machine.
type sendPhase int

const (
	phaseIdle sendPhase = iota
	phaseSending
	phaseFailed
)

// retryState is threaded by value through the attempt loop.
type retryState struct {
	attempt int
	lastErr error
}

func (s retryState) next(err error) retryState {
	return retryState{attempt: s.attempt + 1, lastErr: err}
}

// dedupTurns drops turns whose JSON form repeats an earlier turn, keeping
// the first occurrence and the original order.
func dedupTurns(turns []model.Turn) []model.Turn {
	seen := make(map[string]struct{}, len(turns))
	out := make([]model.Turn, 0, len(turns))
	for _, t := range turns {
		key, err := json.Marshal(t)
		if err != nil {
			out = append(out, t)
			continue
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (c *ResponsesClient) buildRequest(input []model.Turn, effort, verbosity model.Level, previous string, opts model.RequestOptions) responsesRequest {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}
	tools := make([]Tool, len(c.tools))
	copy(tools, c.tools)

	req := responsesRequest{
		Model:              c.settings.model(),
		Tools:              tools,
		Input:              input,
		Reasoning:          reasoningParam{Effort: effort},
		Text:               textParam{Verbosity: verbosity},
		MaxOutputTokens:    maxTokens,
		PreviousResponseID: previous,
		Temperature:        opts.Temperature,
	}
	if opts.ResponseFormat == model.FormatJSON {
		req.Instructions = parser.StrictJSONInstructions
	}
	return req
}

// Send posts the pending turns and returns the normalized envelope as a
// JSON string. Effort and verbosity default to low. A non-empty
// continuation replaces the stored response id for this and later sends.
//
// Each attempt runs under its own timeout. Client errors (4xx) fail
// immediately with *APIError; server errors, transport failures and
// timeouts are retried after a fixed delay and end in *RetryError. A
// failed send leaves pending turns, history and the response id untouched.
func (c *ResponsesClient) Send(ctx context.Context, effort, verbosity model.Level, continuation string, opts model.RequestOptions) (string, error) {
	effort = effort.OrDefault(opts.Effort.OrDefault(model.LevelLow))
	verbosity = verbosity.OrDefault(opts.Verbosity.OrDefault(model.LevelLow))

	previous := c.responseID
	if continuation != "" {
		previous = continuation
	}

	input := dedupTurns(c.pending)
	payload, err := json.Marshal(c.buildRequest(input, effort, verbosity, previous, opts))
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	policy := c.settings.policyFor(effort)
	log := c.log.WithFields(logrus.Fields{
		"effort":      effort,
		"timeout":     policy.timeout,
		"max_retries": policy.maxRetries,
		"turns":       len(input),
	})
	log.Debug("sending request")

	raw, err := c.execute(ctx, log, payload, policy)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return "", err
	}
	return c.complete(raw, previous), nil
}

// execute runs the Idle -> Sending -> Idle|Failed state machine.
func (c *ResponsesClient) execute(ctx context.Context, log logrus.FieldLogger, payload []byte, policy attemptPolicy) ([]byte, error) {
	state := retryState{}
	for {
		raw, err := c.attempt(ctx, payload, policy.timeout)
		switch transition(ctx, state, err, policy.maxRetries) {
		case phaseIdle:
			return raw, nil
		case phaseFailed:
			return nil, failure(ctx, state, err)
		}

		log.WithError(err).WithField("attempt", state.attempt+1).Debug("attempt failed, retrying")
		state = state.next(err)
		if err := sleep(ctx, c.retryDelay); err != nil {
			return nil, err
		}
	}
}

func (c *ResponsesClient) attempt(ctx context.Context, payload []byte, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := c.transport.post(attemptCtx, payload)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("request timed out after %s: %w", timeout, context.DeadlineExceeded)
	}
	return raw, err
}

// transition decides the next phase after an attempt.
func transition(ctx context.Context, state retryState, err error, maxRetries int) sendPhase {
	if err == nil {
		return phaseIdle
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		return phaseFailed
	}
	if ctx.Err() != nil || state.attempt >= maxRetries {
		return phaseFailed
	}
	return phaseSending
}

func failure(ctx context.Context, state retryState, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		return apiErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request canceled: %w", ctxErr)
	}
	return &RetryError{Attempts: state.attempt + 1, Last: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// complete applies a successful response: pending turns move to history,
// the response id advances, and the content is normalized.
func (c *ResponsesClient) complete(raw []byte, previous string) string {
	for _, t := range c.pending {
		if b, err := json.Marshal(t); err == nil {
			c.history = append(c.history, b)
		}
	}
	c.pending = nil
	c.responseID = previous

	if !gjson.ValidBytes(raw) {
		c.log.Warn("response body is not valid JSON")
		return buildEnvelope(NoTextContent, gjson.Result{}, previous)
	}

	resp := gjson.ParseBytes(raw)
	id := resp.Get("id").String()
	if id == "" {
		id = resp.Get("response_id").String()
	}
	if id == "" {
		id = previous
	}
	c.responseID = id
	if id != "" {
		c.responses[id] = json.RawMessage(raw)
	}

	if output := resp.Get("output"); output.IsArray() {
		for _, item := range output.Array() {
			c.history = append(c.history, json.RawMessage(item.Raw))
		}
	}

	text, extractor, ok := extractText(resp)
	if !ok {
		text, ok = outputFallback(resp)
		extractor = "normalized_output"
	}
	if !ok {
		c.log.WithField("id", id).Warn("no text content in response")
		text = NoTextContent
	} else {
		c.log.WithFields(logrus.Fields{"id": id, "extractor": extractor}).Debug("response text extracted")
	}
	return buildEnvelope(text, resp.Get("usage"), id)
}

// outputFallback runs a string output field through the normalizer.
func outputFallback(resp gjson.Result) (string, bool) {
	out := resp.Get("output")
	if out.Type != gjson.String {
		return "", false
	}
	r := parser.Extract(out.String())
	if !r.OK {
		return "", false
	}
	if s, ok := r.Data.(string); ok {
		return s, s != ""
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// SendJSON sends with a JSON response format and normalizes the envelope
// content.
func (c *ResponsesClient) SendJSON(ctx context.Context, effort, verbosity model.Level, opts model.RequestOptions) (parser.Result, string, error) {
	opts.ResponseFormat = model.FormatJSON
	raw, err := c.Send(ctx, effort, verbosity, "", opts)
	if err != nil {
		return parser.Result{}, "", err
	}
	env, err := ParseEnvelope(raw)
	if err != nil {
		return parser.Extract(raw), raw, nil
	}
	return parser.Extract(env.Content()), raw, nil
}
