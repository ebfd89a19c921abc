package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"intake/model"
	"intake/provider"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type RequestTimeoutConfig struct {
	Low    int `toml:"low"`
	Medium int `toml:"medium"`
	High   int `toml:"high"`
}

type AIConfig struct {
	APIKey         string               `toml:"api_key"`
	BaseURL        string               `toml:"base_url"`
	Model          string               `toml:"model"`
	MaxRetries     *int                 `toml:"max_retries,omitempty"`
	RequestTimeout RequestTimeoutConfig `toml:"request_timeout"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Backend string `toml:"backend"`
}

type UserConfig struct {
	AI    AIConfig    `toml:"ai"`
	Cache CacheConfig `toml:"cache"`
}

type Config struct {
	DataDirectory  string
	APIKey         string
	BaseURL        string
	Model          string
	MaxRetries     *int
	RequestTimeout map[model.Level]time.Duration
	CacheEnabled   bool
	CacheBackend   string
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// AISettings converts the loaded configuration into client settings.
func (c *Config) AISettings() provider.Settings {
	s := provider.Settings{
		APIKey:         c.APIKey,
		BaseURL:        c.BaseURL,
		Model:          c.Model,
		MaxRetries:     c.MaxRetries,
		RequestTimeout: map[model.Level]time.Duration{},
	}
	for level, d := range c.RequestTimeout {
		s.RequestTimeout[level] = d
	}
	return s
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.APIKey = u.AI.APIKey
	if u.AI.BaseURL != "" {
		c.BaseURL = u.AI.BaseURL
	}
	if u.AI.Model != "" {
		c.Model = u.AI.Model
	}
	c.MaxRetries = u.AI.MaxRetries

	timeouts := map[model.Level]int{
		model.LevelLow:    u.AI.RequestTimeout.Low,
		model.LevelMedium: u.AI.RequestTimeout.Medium,
		model.LevelHigh:   u.AI.RequestTimeout.High,
	}
	for level, secs := range timeouts {
		if secs > 0 {
			c.RequestTimeout[level] = time.Duration(secs) * time.Second
		}
	}

	c.CacheEnabled = u.Cache.Enabled
	if u.Cache.Backend != "" {
		c.CacheBackend = u.Cache.Backend
	}
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("INTAKE_API_KEY"); key != "" {
		c.APIKey = key
	}
	if url := os.Getenv("INTAKE_BASE_URL"); url != "" {
		c.BaseURL = url
	}
	if m := os.Getenv("INTAKE_MODEL"); m != "" {
		c.Model = m
	}
	if n, err := strconv.Atoi(os.Getenv("INTAKE_MAX_RETRIES")); err == nil && n >= 0 {
		c.MaxRetries = provider.Retries(n)
	}
}

func defaults() *Config {
	return &Config{
		DataDirectory:  GetDefaultDataDir(),
		BaseURL:        provider.DefaultBaseURL,
		Model:          provider.DefaultModel,
		RequestTimeout: map[model.Level]time.Duration{},
		CacheEnabled:   true,
		CacheBackend:   "sqlite",
	}
}

// Load reads settings.toml and the user config.toml in the data directory,
// creating templates for missing files, then applies environment overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if dataDir := os.Getenv("INTAKE_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		if systemCfg.DataDirectory != "" {
			cfg.DataDirectory = systemCfg.DataDirectory
		}
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	return cfg, nil
}
