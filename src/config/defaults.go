package config

// DefaultConfig returns the baseline configuration. Loaded files override
// it field by field.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			BaseURL:      "https://api.openai.com/v1",
			APIKeyEnvVar: "TURNPIKE_API_KEY",
			Model:        "gpt-4o-mini",
			RetryCount:   3,
		},
		Limits: LimitsConfig{
			MaxTokenLimit:   4096,
			MaxRequestLimit: 25,
		},
		Tools: ToolsConfig{
			MaxConcurrent:  3,
			StaggerDelayMs: 100,
			BatchDelayMs:   0,
			TimeoutSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
