package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"intake/model"
	"intake/parser"
)

// AIResponse is the result of a high-level operation. OK is false when the
// request failed or its output could not be parsed.
type AIResponse struct {
	OK         bool
	Data       any
	Err        error
	ResponseID string
}

func (c *ResponsesClient) respond(data any) AIResponse {
	return AIResponse{OK: true, Data: data, ResponseID: c.responseID}
}

func failed(err error) AIResponse {
	return AIResponse{Err: err}
}

// pick returns data[key] when data is an object with a non-empty value at
// key, otherwise data itself.
func pick(data any, key string) any {
	m, ok := data.(map[string]any)
	if !ok {
		return data
	}
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return data
}

func (c *ResponsesClient) sendForData(ctx context.Context, effort, verbosity model.Level) (any, error) {
	r, _, err := c.SendJSON(ctx, effort, verbosity, model.RequestOptions{})
	if err != nil {
		return nil, err
	}
	if !r.OK {
		c.log.WithError(r.Err).WithField("raw", truncate(r.Raw, 200)).Warn("response is not JSON")
		return nil, fmt.Errorf("failed to parse AI response: %w", r.Err)
	}
	return r.Data, nil
}

// ModifyExistingData asks the model to apply prompt and instructions to
// existing and returns the modified entity.
func (c *ResponsesClient) ModifyExistingData(ctx context.Context, existing any, prompt string, instructions []model.ModificationInstruction) AIResponse {
	c.context = &model.DataContext{Operation: model.OpModify, ExistingData: existing}

	c.Append(DataModificationPrompt, "")
	c.Append(fmt.Sprintf("existing_entity: `%s`\n", encodeOrPrint(existing)), "")
	if p := modificationPrompt(instructions); p != "" {
		c.Append(p, "")
	}
	c.AskToDoAction(prompt)

	data, err := c.sendForData(ctx, model.LevelHigh, model.LevelMedium)
	if err != nil {
		return failed(err)
	}
	return c.respond(pick(data, "modified_entity"))
}

// SelectAndFilter asks the model to select the items of dataSet matching
// filters and searchTerms.
func (c *ResponsesClient) SelectAndFilter(ctx context.Context, dataSet []any, filters []model.DataFilter, searchTerms []string) AIResponse {
	c.context = &model.DataContext{Operation: model.OpExtract, Filters: filters, SearchTerms: searchTerms}

	c.Append(DataSelectionPrompt, "")
	c.Append(fmt.Sprintf("data_set: `%s`\n", encodeOrPrint(dataSet)), "")

	var b strings.Builder
	b.WriteString("\nSelect items from the provided data set matching these criteria:\n")
	for _, f := range filters {
		fmt.Fprintf(&b, "Filter: %s %s %s\n", f.Field, f.Operator, jsonValue(f.Value))
	}
	if len(searchTerms) > 0 {
		fmt.Fprintf(&b, "\nSearch terms: %s\n", strings.Join(searchTerms, ", "))
	}
	b.WriteString("\nReturn matching items with relevance scores.\n")
	c.AskToDoAction(b.String())

	data, err := c.sendForData(ctx, model.LevelMedium, model.LevelLow)
	if err != nil {
		return failed(err)
	}
	return c.respond(pick(data, "selected_items"))
}

// MergeEntities merges secondary into primary under strategy.
func (c *ResponsesClient) MergeEntities(ctx context.Context, primary, secondary any, strategy model.MergeStrategy) AIResponse {
	if strategy == "" {
		strategy = model.MergePreferPrimary
	}
	c.context = &model.DataContext{Operation: model.OpMerge, ExistingData: primary}

	c.Append(EntityMergePrompt, "")
	c.Append(fmt.Sprintf("primary_entity: `%s`\n", encodeOrPrint(primary)), "")
	c.Append(fmt.Sprintf("secondary_data: `%s`\n", encodeOrPrint(secondary)), "")
	c.AskToDoAction(fmt.Sprintf(`
Merge the secondary data into the primary entity using the %q strategy:
- prefer_primary: keep primary values on conflict
- prefer_secondary: use secondary values on conflict
- prefer_newer: compare timestamps and use newer values
- merge_all: combine all unique values (arrays concatenated, objects deeply merged)

Return the merged entity with conflict resolution details.
`, strategy))

	data, err := c.sendForData(ctx, model.LevelHigh, model.LevelMedium)
	if err != nil {
		return failed(err)
	}
	return c.respond(pick(data, "merged_entity"))
}

// SearchSimilar asks for candidates similar to reference with a score of at
// least threshold. Data is always a list.
func (c *ResponsesClient) SearchSimilar(ctx context.Context, reference any, candidates []any, threshold float64) AIResponse {
	if threshold <= 0 {
		threshold = 0.7
	}
	c.context = &model.DataContext{Operation: model.OpAnalyze}

	c.Append(fmt.Sprintf("reference_entity: `%s`\n", encodeOrPrint(reference)), "")
	c.Append(fmt.Sprintf("candidate_set: `%s`\n", encodeOrPrint(candidates)), "")
	c.AskToDoAction(fmt.Sprintf(`
Find items in the candidate set that are similar to the reference entity.
Consider semantic similarity, not only exact matches. Compare names and
titles (fuzzy), types, overlapping properties and relationships.

Return items with similarity score >= %g

Expected output structure:
{
    "similar_items": [
        { "item": {}, "similarity": 0.85, "match_reasons": [] }
    ],
    "potential_duplicates": [],
    "related_but_different": []
}
`, threshold))

	data, err := c.sendForData(ctx, model.LevelMedium, model.LevelMedium)
	if err != nil {
		return failed(err)
	}
	if m, ok := data.(map[string]any); ok {
		if items, ok := m["similar_items"].([]any); ok {
			return c.respond(items)
		}
	}
	return c.respond([]any{})
}

// BatchProcess applies operation to items in batches of batchSize. Items
// the model reports as failed are collected into Err; OK is true only when
// no item failed.
func (c *ResponsesClient) BatchProcess(ctx context.Context, items []any, operation string, batchSize int) AIResponse {
	if batchSize <= 0 {
		batchSize = 10
	}

	results := []any{}
	var failures []string
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		batch := items[start:end]

		c.Append(fmt.Sprintf("batch_items: `%s`\n", encodeOrPrint(batch)), "")
		c.AskToDoAction(fmt.Sprintf(`
Process this batch of %d items:
%s

Return processed items in the same order.
Expected output: { "processed": [], "failed": [] }
`, len(batch), operation))

		r, _, err := c.SendJSON(ctx, model.LevelMedium, model.LevelLow, model.RequestOptions{})
		if err != nil {
			return AIResponse{Data: results, Err: err, ResponseID: c.responseID}
		}
		if !r.OK {
			c.log.WithError(r.Err).WithField("batch_start", start).Warn("batch output is not JSON")
			continue
		}
		m, ok := r.Data.(map[string]any)
		if !ok {
			continue
		}
		if processed, ok := m["processed"].([]any); ok {
			results = append(results, processed...)
		}
		if bad, ok := m["failed"].([]any); ok {
			for _, f := range bad {
				msg := "unknown error"
				if fm, ok := f.(map[string]any); ok {
					if s, ok := fm["error"].(string); ok && s != "" {
						msg = s
					}
				}
				failures = append(failures, msg)
			}
		}
	}

	resp := AIResponse{OK: len(failures) == 0, Data: results, ResponseID: c.responseID}
	if len(failures) > 0 {
		resp.Err = errors.New(strings.Join(failures, "; "))
	}
	return resp
}

// RecognizeOptions tunes Recognize.
type RecognizeOptions struct {
	// Kind overrides content kind detection.
	Kind model.DataKind
	// Instruction is extra guidance appended to the attachment.
	Instruction string
	// SkipCache bypasses the recognition cache for this call.
	SkipCache bool
}

// CacheKey derives the recognition cache key for content of a kind.
func CacheKey(kind model.DataKind, content any) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	switch v := content.(type) {
	case string:
		h.Write([]byte(v))
	case []byte:
		h.Write(v)
	case model.File:
		h.Write([]byte(v.MIME))
		h.Write(v.Data)
	case *model.File:
		if v != nil {
			h.Write([]byte(v.MIME))
			h.Write(v.Data)
		}
	default:
		b, _ := json.Marshal(v)
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Recognize extracts structured data from content. Results are served from
// and stored in the recognition cache when one is configured. Model output
// that is not JSON is kept as the verbose data.
func (c *ResponsesClient) Recognize(ctx context.Context, content any, opts RecognizeOptions) (model.RecognitionResult, error) {
	kind := opts.Kind
	if kind == "" {
		if s, ok := content.(string); ok {
			kind = model.DetectKind(s)
		} else {
			kind = kindOf(content, "")
		}
	}

	key := CacheKey(kind, content)
	if c.cache != nil && !opts.SkipCache {
		if cached, ok := c.cache.Get(key); ok {
			r := recognitionFromText(cached)
			r.SourceKind = kind
			r.FromCache = true
			c.log.WithField("kind", kind).Debug("recognition served from cache")
			return r, nil
		}
	}

	started := time.Now()
	c.push(c.attachmentTurn(content, kind, opts.Instruction))
	if c.context != nil && c.context.EntityType != "" {
		c.AskToDoAction("Expected entity type context: " + c.context.EntityType)
	}

	effort := model.LevelMedium
	if c.context != nil && c.context.Priority == model.LevelHigh {
		effort = model.LevelHigh
	}
	raw, err := c.Send(ctx, effort, model.LevelMedium, "", model.RequestOptions{ResponseFormat: model.FormatJSON})
	if err != nil {
		return model.RecognitionResult{}, fmt.Errorf("failed to recognize data: %w", err)
	}

	text := raw
	if env, err := ParseEnvelope(raw); err == nil {
		text = env.Content()
	}
	if text == NoTextContent {
		return model.RecognitionResult{}, fmt.Errorf("failed to recognize data: %s", NoTextContent)
	}

	r := recognitionFromText(text)
	r.SourceKind = kind
	r.ResponseID = c.responseID
	c.log.WithField("kind", kind).WithField("elapsed", time.Since(started)).Debug("recognition complete")

	if c.cache != nil {
		if err := c.cache.Put(key, text); err != nil {
			c.log.WithError(err).Warn("failed to cache recognition")
		}
	}
	return r, nil
}

func recognitionFromText(text string) model.RecognitionResult {
	if r := parser.Extract(text); r.OK {
		return model.RecognitionFromData(r.Data)
	}
	return model.RecognitionResult{VerboseData: text}
}

// QuickRecognize runs a one-shot recognition on a fresh client and returns
// the parsed data, or the content text when it is not JSON.
func QuickRecognize(ctx context.Context, settings Settings, content any, opts model.RequestOptions, clientOpts ...Option) AIResponse {
	c := NewResponsesClient(settings, clientOpts...)
	c.Attach(content, "", "")

	raw, err := c.Send(ctx, model.LevelMedium, model.LevelMedium, "", opts)
	if err != nil {
		return failed(err)
	}
	env, err := ParseEnvelope(raw)
	if err != nil {
		return failed(err)
	}

	if r := parser.Extract(env.Content()); r.OK {
		return c.respond(r.Data)
	}
	return c.respond(env.Content())
}

// truncate shortens s to n display cells without splitting a rune.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "...")
}
