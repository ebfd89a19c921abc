package config

import "intake/provider"

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/intake",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		AI: AIConfig{
			BaseURL: provider.DefaultBaseURL,
			Model:   provider.DefaultModel,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "sqlite",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# intake system configuration
# Location: ~/.config/intake/settings.toml
# This file uses TOML format: https://toml.io

# Directory where entities, the recognition cache and user config are stored
data_directory = "~/.local/share/intake"
`
}

func GenerateUserConfigTemplate() string {
	return `# intake user configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[ai]
# API key for the Responses endpoint (INTAKE_API_KEY overrides)
api_key = ""

# Base URL of an OpenAI-compatible API
base_url = "` + provider.DefaultBaseURL + `"

# Model used for every request
model = "` + provider.DefaultModel + `"

# Additional attempts after a failed request (4xx errors are never retried)
# max_retries = 2

# Per-attempt timeout in seconds, by reasoning effort
[ai.request_timeout]
low = 60
medium = 300
high = 900

[cache]
# Reuse recognitions of identical content
enabled = true

# "sqlite" persists across runs, "memory" lasts one process
backend = "sqlite"
`
}
