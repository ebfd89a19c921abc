package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/model"
	"intake/provider/testutil"
	"intake/storage"
)

type env struct {
	dataDir string
	srv     *testutil.MockServer
}

func setup(t *testing.T, replies ...testutil.Reply) env {
	t.Helper()
	home := t.TempDir()
	dataDir := filepath.Join(home, "data")
	t.Setenv("HOME", home)
	t.Setenv("INTAKE_CONFIG_DIR", filepath.Join(home, "cfg"))
	t.Setenv("INTAKE_DATA_DIR", dataDir)
	t.Setenv("INTAKE_API_KEY", "sk-test")
	t.Setenv("INTAKE_MODEL", "test-model")
	t.Setenv("INTAKE_MAX_RETRIES", "0")
	t.Setenv("INTAKE_DEBUG", "")

	e := env{dataDir: dataDir}
	if len(replies) > 0 {
		e.srv = testutil.NewMockServer(replies...)
		t.Cleanup(e.srv.Close)
		t.Setenv("INTAKE_BASE_URL", e.srv.URL)
	}
	return e
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errb bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errb)
	err := root.Execute()
	return out.String(), errb.String(), err
}

func TestRootCommand(t *testing.T) {
	setup(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"help flag", []string{"--help"}, false},
		{"version flag", []string{"--version"}, false},
		{"unknown command", []string{"nonexistent-command"}, true},
		{"bad arg count", []string{"entities", "show"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "", tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

const contactJSON = `{"keywords_and_tags":["contact"],"recognized_data":["+1 555 0100"],"verbose_data":"A contact card","using_ready":true,"confidence":0.9,"suggested_type":"person"}`

func TestRecognize_SaveAndCache(t *testing.T) {
	e := setup(t, testutil.OK(testutil.ResponseWithText("resp_1", "```json\n"+contactJSON+"\n```")))

	out, _, err := run(t, "Call Ada at +1 555 0100", "recognize", "-", "--json", "--save", "--name", "Ada")
	require.NoError(t, err)

	var saved model.Entity
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Equal(t, "Ada", saved.Name)
	assert.Equal(t, "person", saved.Type)
	assert.Equal(t, "resp_1", saved.ResponseID)
	assert.Equal(t, []string{"contact"}, saved.Keywords)

	body := e.srv.Requests()[0].JSON()
	assert.Equal(t, "test-model", body["model"])

	out, _, err = run(t, "Call Ada at +1 555 0100", "recognize", "--json")
	require.NoError(t, err)
	assert.Equal(t, 1, e.srv.Hits())
	assert.Contains(t, out, `"suggested_type": "person"`)

	out, _, err = run(t, "", "entities", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
}

func TestRecognize_RenderedOutput(t *testing.T) {
	setup(t, testutil.OK(testutil.ResponseWithText("resp_1", contactJSON)))

	out, _, err := run(t, "Call Ada", "recognize", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Recognition: person")
	assert.Contains(t, out, "+1 555 0100")
}

func TestRecognize_APIError(t *testing.T) {
	setup(t, testutil.NotFound())

	_, _, err := run(t, "hello", "recognize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestRecognize_InvalidFlags(t *testing.T) {
	setup(t)

	_, _, err := run(t, "x", "recognize", "--kind", "hologram")
	assert.ErrorContains(t, err, "unknown kind")

	_, _, err = run(t, "x", "recognize", "--priority", "urgent")
	assert.ErrorContains(t, err, "invalid level")

	_, _, err = run(t, "   ", "recognize")
	assert.ErrorContains(t, err, "no input provided")
}

func TestParseCommand(t *testing.T) {
	setup(t)

	out, errOut, err := run(t, "Sure!\n```json\n{\"a\": 1,}\n```", "parse")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, out)
	assert.Contains(t, errOut, "source: markdown_block")

	out, _, err = run(t, "just words", "parse", "--key", "note")
	require.NoError(t, err)
	assert.JSONEq(t, `{"note": "just words"}`, out)

	out, _, err = run(t, "```json\n[1]\n``` and ```json\n{\"b\":2}\n```", "parse", "--all")
	require.NoError(t, err)
	assert.JSONEq(t, `[[1], {"b": 2}]`, out)
}

func saveEntity(t *testing.T, dataDir string, e *model.Entity) {
	t.Helper()
	store, err := storage.NewEntityStore(dataDir)
	require.NoError(t, err)
	require.NoError(t, store.Save(e))
}

func TestModifyCommand(t *testing.T) {
	e := setup(t, testutil.OK(testutil.ResponseWithText("resp_2",
		`{"modified_entity":{"name":"Ada Lovelace","type":"person","keywords":["math"]},"changes_made":["name"]}`)))

	ent := &model.Entity{Type: "person", Name: "Ada"}
	saveEntity(t, e.dataDir, ent)

	out, _, err := run(t, "", "modify", ent.ID, "--prompt", "use full name", "--set", "properties.era=1840s", "--json")
	require.NoError(t, err)

	var updated model.Entity
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, ent.ID, updated.ID)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, []string{"math"}, updated.Keywords)

	req := string(e.srv.Requests()[0].Body)
	assert.Contains(t, req, "use full name")
	assert.Contains(t, req, "properties.era")

	out, _, err = run(t, "", "entities", "show", ent.ID, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
}

func TestModifyCommand_RequiresChange(t *testing.T) {
	setup(t)

	_, _, err := run(t, "", "modify", "some-id")
	assert.ErrorContains(t, err, "nothing to do")
}

func TestMergeCommand(t *testing.T) {
	e := setup(t, testutil.OK(testutil.ResponseWithText("resp_3",
		`{"merged_entity":{"name":"Ada","keywords":["math","poetry"]}}`)))

	primary := &model.Entity{Type: "person", Name: "Ada", Keywords: []string{"math"}}
	secondary := &model.Entity{Type: "person", Name: "A. Lovelace", Keywords: []string{"poetry"}}
	saveEntity(t, e.dataDir, primary)
	saveEntity(t, e.dataDir, secondary)

	_, _, err := run(t, "", "merge", primary.ID, secondary.ID, "--strategy", "merge_all")
	require.NoError(t, err)

	out, _, err := run(t, "", "entities", "list", "--json")
	require.NoError(t, err)
	var all []model.Entity
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all, 1)
	assert.Equal(t, primary.ID, all[0].ID)
	assert.Equal(t, []string{"math", "poetry"}, all[0].Keywords)

	_, _, err = run(t, "", "merge", "a", "b", "--strategy", "coinflip")
	assert.ErrorContains(t, err, "unknown merge strategy")
}

func TestSelectCommand(t *testing.T) {
	e := setup(t, testutil.OK(testutil.ResponseWithText("resp_4",
		`{"selected_items":[{"name":"Standup"}],"total_matches":1}`)))
	saveEntity(t, e.dataDir, &model.Entity{Type: "event", Name: "Standup"})

	out, _, err := run(t, "", "select", "--type", "event", "--filter", "name~Stand", "--term", "daily")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Standup"}]`, out)
}

func TestEntitiesSearchDeleteExport(t *testing.T) {
	e := setup(t)
	ent := &model.Entity{Type: "place", Name: "Corner Cafe", Description: "coffee"}
	saveEntity(t, e.dataDir, ent)

	out, _, err := run(t, "", "entities", "search", "cafe")
	require.NoError(t, err)
	assert.Contains(t, out, "Corner Cafe")

	out, _, err = run(t, "", "entities", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Corner Cafe")

	dir := t.TempDir()
	out, _, err = run(t, "", "entities", "export", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 entities to "+dir)

	out, _, err = run(t, "", "entities", "delete", ent.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+ent.ID)

	_, _, err = run(t, "", "entities", "show", ent.ID)
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestCacheAndConfigCommands(t *testing.T) {
	e := setup(t)

	out, _, err := run(t, "", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	out, _, err = run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "data:     "+e.dataDir)
	assert.Contains(t, out, "test-model")
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want model.DataFilter
	}{
		{"date>=2026-01-01", model.DataFilter{Field: "date", Operator: ">=", Value: "2026-01-01"}},
		{"count>3", model.DataFilter{Field: "count", Operator: ">", Value: float64(3)}},
		{"status!=done", model.DataFilter{Field: "status", Operator: "!=", Value: "done"}},
		{"name~Ada", model.DataFilter{Field: "name", Operator: "~", Value: "Ada"}},
	}
	for _, tt := range tests {
		got, err := parseFilter(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseFilter("novalue")
	assert.Error(t, err)
}

func TestApplyData(t *testing.T) {
	orig := model.Entity{ID: "1", Type: "task", Name: "old"}

	got, err := applyData(orig, map[string]any{"id": "evil", "name": "new", "type": ""})
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, "task", got.Type)

	_, err = applyData(orig, []any{1})
	assert.Error(t, err)
}

func TestConfigCheck(t *testing.T) {
	e := setup(t, testutil.OK(`{"data":[{"id":"gpt-x"}]}`))

	out, _, err := run(t, "", "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, e.srv.URL+" reachable, 1 models available")
	assert.Contains(t, out, "model test-model is not listed")
}
