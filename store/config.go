package store

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the tool configuration, read from a TOML file with
// environment overrides.
type Config struct {
	BookFile string          `toml:"book_file"`
	Currency string          `toml:"currency"`
	Logging  LoggingConfig   `toml:"logging"`
	Assist   AssistantConfig `toml:"assistant"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// AssistantConfig holds the generative assistant configuration.
type AssistantConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		BookFile: DefaultFile,
		Currency: "EUR",
		Logging:  LoggingConfig{Level: "warn"},
		Assist:   AssistantConfig{Model: "gemini-2.5-flash"},
	}
}

// DefaultConfigPath returns the conventional config file location,
// $XDG_CONFIG_HOME/finbook/config.toml or its home-relative equivalent.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "finbook", "config.toml")
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FINBOOK_FILE"); v != "" {
		config.BookFile = v
	}
	if v := os.Getenv("FINBOOK_CURRENCY"); v != "" {
		config.Currency = v
	}
	if v := os.Getenv("FINBOOK_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Assist.APIKey = v
	}
	if v := os.Getenv("FINBOOK_ASSIST_MODEL"); v != "" {
		config.Assist.Model = v
	}
}
