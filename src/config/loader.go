package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Loader reads, merges, and validates configuration files.
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// Load returns the defaults merged with the file at path, if it exists,
// then applies environment overrides and validates the result. An empty
// path skips file loading entirely.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		file, err := l.loadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		if file != nil {
			config = mergeConfigs(config, file)
		}
	}

	applyEnvironmentOverrides(config)

	if err := l.Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// loadFile parses one configuration file. Unknown keys are an error: the
// option set is closed, and a typo should fail loudly rather than be
// ignored.
func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var config Config
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &config, nil
}

// SaveFile writes a validated configuration to path.
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.Validate(config); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Validate runs struct validation over a configuration.
func (l *Loader) Validate(config *Config) error {
	if err := l.validate.Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			e := validationErrors[0]
			return ValidationError{
				Field:   e.Field(),
				Message: fmt.Sprintf("validation failed on tag %q with value '%v'", e.Tag(), e.Value()),
			}
		}
		return err
	}
	return nil
}

// mergeConfigs merges two configurations with override taking precedence.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	if override.Backend.BaseURL != "" {
		result.Backend.BaseURL = override.Backend.BaseURL
	}
	if override.Backend.APIKey != "" {
		result.Backend.APIKey = override.Backend.APIKey
	}
	if override.Backend.APIKeyEnvVar != "" {
		result.Backend.APIKeyEnvVar = override.Backend.APIKeyEnvVar
	}
	if override.Backend.Model != "" {
		result.Backend.Model = override.Backend.Model
	}
	if override.Backend.RetryCount != 0 {
		result.Backend.RetryCount = override.Backend.RetryCount
	}

	if override.Limits.MaxTokenLimit != 0 {
		result.Limits.MaxTokenLimit = override.Limits.MaxTokenLimit
	}
	if override.Limits.MaxRequestLimit != 0 {
		result.Limits.MaxRequestLimit = override.Limits.MaxRequestLimit
	}

	if override.Call.Temperature != nil {
		result.Call.Temperature = override.Call.Temperature
	}
	if override.Call.MaxTokens != nil {
		result.Call.MaxTokens = override.Call.MaxTokens
	}
	if override.Call.SystemPrompt != "" {
		result.Call.SystemPrompt = override.Call.SystemPrompt
	}
	if len(override.Call.SystemMessages) > 0 {
		result.Call.SystemMessages = override.Call.SystemMessages
	}

	if override.Tools.DisableParallel {
		result.Tools.DisableParallel = true
	}
	if override.Tools.MaxConcurrent != 0 {
		result.Tools.MaxConcurrent = override.Tools.MaxConcurrent
	}
	if override.Tools.StaggerDelayMs != 0 {
		result.Tools.StaggerDelayMs = override.Tools.StaggerDelayMs
	}
	if override.Tools.BatchDelayMs != 0 {
		result.Tools.BatchDelayMs = override.Tools.BatchDelayMs
	}
	if override.Tools.TimeoutSeconds != 0 {
		result.Tools.TimeoutSeconds = override.Tools.TimeoutSeconds
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	if override.Data.Directory != "" {
		result.Data.Directory = override.Data.Directory
	}

	return &result
}

// applyEnvironmentOverrides applies TURNPIKE_* environment overrides.
func applyEnvironmentOverrides(config *Config) {
	if config.Backend.APIKeyEnvVar != "" {
		if key := os.Getenv(config.Backend.APIKeyEnvVar); key != "" {
			config.Backend.APIKey = key
		}
	}
	if model := os.Getenv("TURNPIKE_MODEL"); model != "" {
		config.Backend.Model = model
	}
	if baseURL := os.Getenv("TURNPIKE_BASE_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if tokens := os.Getenv("TURNPIKE_MAX_TOKEN_LIMIT"); tokens != "" {
		if n, err := strconv.Atoi(tokens); err == nil && n >= 0 {
			config.Limits.MaxTokenLimit = n
		}
	}
	if requests := os.Getenv("TURNPIKE_MAX_REQUEST_LIMIT"); requests != "" {
		if n, err := strconv.Atoi(requests); err == nil && n >= 0 {
			config.Limits.MaxRequestLimit = n
		}
	}
}
