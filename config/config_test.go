package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"intake/model"
	"intake/provider"
)

func isolate(t *testing.T) (home, configDir string) {
	t.Helper()
	home = t.TempDir()
	configDir = filepath.Join(home, "cfg")
	t.Setenv("HOME", home)
	t.Setenv("INTAKE_CONFIG_DIR", configDir)
	for _, k := range []string{"INTAKE_DATA_DIR", "INTAKE_API_KEY", "INTAKE_BASE_URL", "INTAKE_MODEL", "INTAKE_MAX_RETRIES", "INTAKE_DEBUG"} {
		t.Setenv(k, "")
	}
	return home, configDir
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func TestLoad_FirstRunWritesTemplates(t *testing.T) {
	home, configDir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dataDir := filepath.Join(home, ".local", "share", "intake")
	if cfg.DataDir() != dataDir {
		t.Errorf("expected data dir %q, got %q", dataDir, cfg.DataDir())
	}
	mustExist(t, filepath.Join(configDir, "settings.toml"))
	mustExist(t, filepath.Join(dataDir, "config.toml"))

	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatalf("stat data dir: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("expected data dir mode 0700, got %o", info.Mode().Perm())
	}

	if cfg.Model != provider.DefaultModel {
		t.Errorf("expected model %q, got %q", provider.DefaultModel, cfg.Model)
	}
	if cfg.BaseURL != provider.DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", provider.DefaultBaseURL, cfg.BaseURL)
	}
	if !cfg.CacheEnabled {
		t.Error("expected cache to be enabled by default")
	}
	if cfg.CacheBackend != "sqlite" {
		t.Errorf("expected sqlite cache backend, got %q", cfg.CacheBackend)
	}
}

func TestLoad_TemplateParses(t *testing.T) {
	isolate(t)

	if _, err := Load(); err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}

	if got := cfg.RequestTimeout[model.LevelHigh]; got != 900*time.Second {
		t.Errorf("expected high timeout 900s, got %v", got)
	}
	if got := cfg.RequestTimeout[model.LevelLow]; got != 60*time.Second {
		t.Errorf("expected low timeout 60s, got %v", got)
	}
	if cfg.MaxRetries != nil {
		t.Errorf("expected unset max retries, got %d", *cfg.MaxRetries)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected empty API key, got %q", cfg.APIKey)
	}
}

func TestLoad_UserConfigAndEnvOverrides(t *testing.T) {
	isolate(t)
	dataDir := t.TempDir()
	t.Setenv("INTAKE_DATA_DIR", dataDir)

	err := SaveUserConfig(&UserConfig{
		AI: AIConfig{
			APIKey:         "file-key",
			Model:          "file-model",
			MaxRetries:     provider.Retries(5),
			RequestTimeout: RequestTimeoutConfig{Medium: 12},
		},
		Cache: CacheConfig{Enabled: false, Backend: "memory"},
	}, dataDir)
	if err != nil {
		t.Fatalf("SaveUserConfig failed: %v", err)
	}

	t.Setenv("INTAKE_MODEL", "env-model")
	t.Setenv("INTAKE_MAX_RETRIES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"data dir", cfg.DataDir(), dataDir},
		{"api key from file", cfg.APIKey, "file-key"},
		{"model from env", cfg.Model, "env-model"},
		{"default base url", cfg.BaseURL, provider.DefaultBaseURL},
		{"cache backend", cfg.CacheBackend, "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.got)
			}
		})
	}

	if cfg.MaxRetries == nil || *cfg.MaxRetries != 0 {
		t.Errorf("expected max retries 0 from env, got %v", cfg.MaxRetries)
	}
	if cfg.CacheEnabled {
		t.Error("expected cache to be disabled by user config")
	}

	s := cfg.AISettings()
	if s.APIKey != "file-key" || s.Model != "env-model" {
		t.Errorf("unexpected AI settings: key=%q model=%q", s.APIKey, s.Model)
	}
	if got := s.RequestTimeout[model.LevelMedium]; got != 12*time.Second {
		t.Errorf("expected medium timeout 12s, got %v", got)
	}
	if _, ok := s.RequestTimeout[model.LevelHigh]; ok {
		t.Error("expected no high timeout override")
	}
}

func TestLoad_InvalidUserConfig(t *testing.T) {
	isolate(t)
	dataDir := t.TempDir()
	t.Setenv("INTAKE_DATA_DIR", dataDir)
	if err := os.WriteFile(UserConfigPath(dataDir), []byte("[ai\nmodel="), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "failed to parse user config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := isolate(t)
	t.Setenv("INTAKE_TEST_SUB", "sub")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde prefix", "~/x", filepath.Join(home, "x")},
		{"bare tilde", "~", home},
		{"env var with trailing slash", "/tmp/$INTAKE_TEST_SUB/", "/tmp/sub"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInitDebugLog(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	InitDebugLog(dir)
	if _, err := os.Stat(filepath.Join(dir, "debug.log")); err == nil {
		t.Error("expected no debug.log without INTAKE_DEBUG")
	}

	t.Setenv("INTAKE_DEBUG", "1")
	t.Cleanup(func() {
		Debug = false
		Log = newLogger()
	})
	InitDebugLog(dir)
	if !Debug {
		t.Error("expected Debug to be set")
	}
	Log.Debug("hello")

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("read debug.log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected debug.log to contain message, got %q", string(data))
	}
}
