package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"intake/config"
	"intake/model"
	"intake/provider"
	"intake/storage"
)

const defaultWidth = 100

type app struct {
	cfg   *config.Config
	cache storage.Cache
	store *storage.EntityStore
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.InitDebugLog(cfg.DataDir())

	store, err := storage.NewEntityStore(cfg.DataDir())
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: store}, nil
}

// client builds a Responses client carrying dc. The recognition cache is
// opened on first use when enabled.
func (a *app) client(dc *model.DataContext) (*provider.ResponsesClient, error) {
	opts := []provider.Option{
		provider.WithLogger(config.Log.WithField("component", "responses")),
	}
	if dc != nil {
		opts = append(opts, provider.WithContext(*dc))
	}
	if a.cfg.CacheEnabled {
		if a.cache == nil {
			cache, err := storage.NewCache(a.cfg.CacheBackend, a.cfg.DataDir())
			if err != nil {
				return nil, fmt.Errorf("failed to open recognition cache: %w", err)
			}
			a.cache = cache
		}
		opts = append(opts, provider.WithCache(a.cache))
	}
	return provider.NewResponsesClient(a.cfg.AISettings(), opts...), nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			config.Log.WithError(err).Warn("failed to close cache")
		}
	}
}

// entitiesAsData converts entities to generic values for prompts.
func entitiesAsData(entities []model.Entity) ([]any, error) {
	data, err := json.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entities: %w", err)
	}
	var out []any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	return out, nil
}

// applyData overlays a model-returned object onto e, keeping identity and
// creation time.
func applyData(e model.Entity, data any) (model.Entity, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return e, fmt.Errorf("expected an object, got %T", data)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return e, fmt.Errorf("failed to encode result: %w", err)
	}

	updated := e
	if err := json.Unmarshal(raw, &updated); err != nil {
		return e, fmt.Errorf("failed to apply result: %w", err)
	}
	updated.ID = e.ID
	updated.CreatedAt = e.CreatedAt
	if updated.Type == "" {
		updated.Type = e.Type
	}
	return updated, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// interactive reports whether stderr is a terminal, which gates spinners.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseAssignment splits "key=value". Values that are valid JSON are decoded.
func parseAssignment(s string) (string, any, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", nil, fmt.Errorf("expected key=value, got %q", s)
	}
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil {
		return strings.TrimSpace(key), decoded, nil
	}
	return strings.TrimSpace(key), value, nil
}
