package provider

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/model"
	"intake/provider/testutil"
)

type mapCache struct {
	mu sync.Mutex
	m  map[string]string
}

func (c *mapCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) Put(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

func inputTexts(req testutil.Request) string {
	var b strings.Builder
	for _, turn := range req.JSON()["input"].([]any) {
		for _, part := range turn.(map[string]any)["content"].([]any) {
			if s, ok := part.(map[string]any)["text"].(string); ok {
				b.WriteString(s)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func TestModifyExistingData(t *testing.T) {
	srv := testutil.NewMockServer(testutil.OK(testutil.ResponseWithText("m1",
		`{"modified_entity":{"title":"Buy oat milk"},"changes_made":["title"]}`)))
	c := newTestClient(t, srv, nil)

	resp := c.ModifyExistingData(context.Background(), map[string]any{"title": "Buy milk"}, "make it oat milk",
		[]model.ModificationInstruction{{Action: model.ActionUpdate, Target: "title", Value: "Buy oat milk"}})
	require.True(t, resp.OK, "error: %v", resp.Err)
	assert.Equal(t, map[string]any{"title": "Buy oat milk"}, resp.Data)
	assert.Equal(t, "m1", resp.ResponseID)

	req := srv.Requests()[0]
	assert.Equal(t, map[string]any{"effort": "high"}, req.JSON()["reasoning"])
	texts := inputTexts(req)
	assert.Contains(t, texts, "data modification assistant")
	assert.Contains(t, texts, "existing_entity: `title: Buy milk`")
	assert.Contains(t, texts, `1. UPDATE field "title" to "Buy oat milk"`)
	assert.Contains(t, texts, "make it oat milk")
	assert.Equal(t, model.OpModify, c.Context().Operation)
}

func TestModifyExistingDataUnparseable(t *testing.T) {
	srv := testutil.NewMockServer(testutil.OK(testutil.ResponseWithText("m1", "I cannot do that")))
	c := newTestClient(t, srv, nil)

	resp := c.ModifyExistingData(context.Background(), map[string]any{}, "x", nil)
	assert.False(t, resp.OK)
	assert.ErrorContains(t, resp.Err, "failed to parse AI response")
}

func TestModifyExistingDataTransportError(t *testing.T) {
	srv := testutil.NewMockServer(testutil.NotFound())
	c := newTestClient(t, srv, nil)

	resp := c.ModifyExistingData(context.Background(), map[string]any{}, "x", nil)
	assert.False(t, resp.OK)
	var apiErr *APIError
	assert.ErrorAs(t, resp.Err, &apiErr)
}

func TestSelectAndFilter(t *testing.T) {
	srv := testutil.NewMockServer(testutil.OK(testutil.ResponseWithText("s1",
		`{"selected_items":[{"name":"a"}],"total_matches":1}`)))
	c := newTestClient(t, srv, nil)

	resp := c.SelectAndFilter(context.Background(), []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}},
		[]model.DataFilter{{Field: "name", Operator: "==", Value: "a"}}, []string{"alpha"})
	require.True(t, resp.OK)
	assert.Equal(t, []any{map[string]any{"name": "a"}}, resp.Data)

	req := srv.Requests()[0]
	assert.Equal(t, map[string]any{"effort": "medium"}, req.JSON()["reasoning"])
	assert.Equal(t, map[string]any{"verbosity": "low"}, req.JSON()["text"])
	assert.Contains(t, inputTexts(req), `Filter: name == "a"`)
	assert.Contains(t, inputTexts(req), "Search terms: alpha")
}

func TestMergeEntities(t *testing.T) {
	srv := testutil.NewMockServer(testutil.OK(testutil.ResponseWithText("g1", `{"merged_entity":{"a":1,"b":2}}`)))
	c := newTestClient(t, srv, nil)

	resp := c.MergeEntities(context.Background(), map[string]any{"a": 1}, map[string]any{"b": 2}, "")
	require.True(t, resp.OK)
	assert.Equal(t, map[string]any{"a": 1.0, "b": 2.0}, resp.Data)
	assert.Contains(t, inputTexts(srv.Requests()[0]), `"prefer_primary" strategy`)
}

func TestSearchSimilar(t *testing.T) {
	srv := testutil.NewMockServer(
		testutil.OK(testutil.ResponseWithText("q1", `{"similar_items":[{"item":{"n":"x"},"similarity":0.9}]}`)),
		testutil.OK(testutil.ResponseWithText("q2", `{"nothing":true}`)),
	)
	c := newTestClient(t, srv, nil)

	resp := c.SearchSimilar(context.Background(), map[string]any{"n": "x"}, []any{map[string]any{"n": "x"}}, 0)
	require.True(t, resp.OK)
	assert.Len(t, resp.Data, 1)
	assert.Contains(t, inputTexts(srv.Requests()[0]), "similarity score >= 0.7")

	resp = c.SearchSimilar(context.Background(), "ref", nil, 0.5)
	require.True(t, resp.OK)
	assert.Equal(t, []any{}, resp.Data)
}

func TestBatchProcess(t *testing.T) {
	srv := testutil.NewMockServer(
		testutil.OK(testutil.ResponseWithText("b1", `{"processed":["A","B"],"failed":[]}`)),
		testutil.OK(testutil.ResponseWithText("b2", `{"processed":["C"],"failed":[{"item":"d","error":"bad item"},{}]}`)),
	)
	c := newTestClient(t, srv, nil)

	resp := c.BatchProcess(context.Background(), []any{"a", "b", "c", "d"}, "uppercase", 2)
	assert.False(t, resp.OK)
	assert.Equal(t, []any{"A", "B", "C"}, resp.Data)
	assert.EqualError(t, resp.Err, "bad item; unknown error")
	assert.Equal(t, 2, srv.Hits())
	assert.Equal(t, "b2", resp.ResponseID)
	assert.Contains(t, inputTexts(srv.Requests()[1]), "Process this batch of 2 items")
}

func TestRecognizeUsesCache(t *testing.T) {
	srv := testutil.NewMockServer(testutil.OK(testutil.ResponseWithText("r1",
		"```json\n{\"keywords_and_tags\":[\"call\"],\"recognized_data\":[\"+15550100\"],\"verbose_data\":\"Call Bob\",\"confidence\":0.8,\"suggested_type\":\"task\"}\n```")))
	cache := &mapCache{m: map[string]string{}}
	c := newTestClient(t, srv, nil, WithCache(cache))

	r, err := c.Recognize(context.Background(), "Call Bob at +1 555 0100", RecognizeOptions{})
	require.NoError(t, err)
	assert.False(t, r.FromCache)
	assert.Equal(t, []string{"call"}, r.KeywordsAndTags)
	assert.Equal(t, "task", r.SuggestedType)
	assert.Equal(t, model.KindInputText, r.SourceKind)
	assert.Equal(t, "r1", r.ResponseID)
	assert.Len(t, cache.m, 1)

	req := srv.Requests()[0]
	assert.Equal(t, map[string]any{"effort": "medium"}, req.JSON()["reasoning"])
	assert.NotEmpty(t, req.JSON()["instructions"])

	again, err := c.Recognize(context.Background(), "Call Bob at +1 555 0100", RecognizeOptions{})
	require.NoError(t, err)
	assert.True(t, again.FromCache)
	assert.Equal(t, r.KeywordsAndTags, again.KeywordsAndTags)
	assert.Equal(t, 1, srv.Hits())

	_, err = c.Recognize(context.Background(), "Call Bob at +1 555 0100", RecognizeOptions{SkipCache: true})
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Hits())
}

func TestRecognizeNonJSONOutput(t *testing.T) {
	srv := testutil.NewMockServer(testutil.OK(testutil.ResponseWithText("r1", "Looks like a grocery list.")))
	c := newTestClient(t, srv, nil, WithContext(model.DataContext{EntityType: "list", Priority: model.LevelHigh}))

	r, err := c.Recognize(context.Background(), "milk, eggs", RecognizeOptions{Instruction: "group items"})
	require.NoError(t, err)
	assert.Equal(t, "Looks like a grocery list.", r.VerboseData)

	req := srv.Requests()[0]
	assert.Equal(t, map[string]any{"effort": "high"}, req.JSON()["reasoning"])
	texts := inputTexts(req)
	assert.Contains(t, texts, "Additional request data: group items")
	assert.Contains(t, texts, "Expected entity type context: list")
}

func TestRecognizeEmptyResponse(t *testing.T) {
	srv := testutil.NewMockServer(testutil.OK(`{"id":"r1","output":[]}`))
	c := newTestClient(t, srv, nil)

	_, err := c.Recognize(context.Background(), "text", RecognizeOptions{})
	assert.ErrorContains(t, err, NoTextContent)
}

func TestQuickRecognize(t *testing.T) {
	srv := testutil.NewMockServer(
		testutil.OK(testutil.ResponseWithText("r1", `{"recognized_data":["x"]}`)),
		testutil.OK(testutil.ResponseWithText("r2", `plain answer`)),
	)
	t.Cleanup(srv.Close)
	settings := Settings{BaseURL: srv.URL, APIKey: "k"}

	resp := QuickRecognize(context.Background(), settings, "data", model.RequestOptions{}, WithHTTPClient(srv.Client()))
	require.True(t, resp.OK)
	assert.Equal(t, map[string]any{"recognized_data": []any{"x"}}, resp.Data)
	assert.Equal(t, "r1", resp.ResponseID)

	resp = QuickRecognize(context.Background(), settings, "data", model.RequestOptions{}, WithHTTPClient(srv.Client()))
	require.True(t, resp.OK)
	assert.Equal(t, "plain answer", resp.Data)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(model.KindInputText, "x")
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey(model.KindInputText, "x"))
	assert.NotEqual(t, a, CacheKey(model.KindJSON, "x"))
	assert.NotEqual(t, a, CacheKey(model.KindInputText, "y"))
	assert.Equal(t, CacheKey(model.KindInputImage, model.File{MIME: "image/png", Data: []byte("1")}),
		CacheKey(model.KindInputImage, &model.File{MIME: "image/png", Data: []byte("1")}))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 200))

	s := strings.Repeat("é", 300)
	out := truncate(s, 200)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.LessOrEqual(t, runewidth.StringWidth(out), 200)
}
