package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
)

// Supported completion backends.
const (
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
)

// GeminiModels is the default Gemini preference list, most preferred first.
var GeminiModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}

// BedrockModels is the default Bedrock preference list, most preferred first.
var BedrockModels = []string{
	"us.anthropic.claude-3-5-sonnet-20241022-v2:0",
	"us.anthropic.claude-3-5-haiku-20241022-v1:0",
	"us.amazon.nova-lite-v1:0",
}

// Environment variables consulted when api_key is not set.
var apiKeyEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Config holds all Whispr configuration values.
type Config struct {
	Provider string   `toml:"provider"`
	APIKey   string   `toml:"api_key"`
	Models   []string `toml:"models"`

	AWSRegion  string `toml:"aws_region"`
	AWSProfile string `toml:"aws_profile"`

	AssistantName string `toml:"assistant_name"`
	Creator       string `toml:"creator"`
	MaxTokens     int    `toml:"max_tokens"`

	// Conversation and recovery tuning.
	ContextWindow int `toml:"context_window"`
	RetryBudget   int `toml:"retry_budget"`
	BaseBackoffMS int `toml:"base_backoff_ms"`
	MaxBackoffMS  int `toml:"max_backoff_ms"`

	// Display thresholds, in plain-text characters.
	LongMessageThreshold int `toml:"long_message_threshold"`
	PreviewLength        int `toml:"preview_length"`

	WhisprDir       string `toml:"whispr_dir"`
	AuditDir        string `toml:"audit_dir"`
	AuditEnabled    bool   `toml:"audit_enabled"`
	AuditMaxAgeDays int    `toml:"audit_max_age_days"`
	LogFile         string `toml:"log_file"`
	LogLevel        string `toml:"log_level"`
}

// DefaultConfig returns a Config with all defaults populated.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	whisprDir := filepath.Join(home, ".whispr")

	return Config{
		Provider:             ProviderGemini,
		Models:               slices.Clone(GeminiModels),
		AWSRegion:            "us-east-1",
		AssistantName:        "Whispr",
		MaxTokens:            2048,
		ContextWindow:        8,
		RetryBudget:          3,
		BaseBackoffMS:        1500,
		MaxBackoffMS:         6000,
		LongMessageThreshold: 200,
		PreviewLength:        160,
		WhisprDir:            whisprDir,
		AuditDir:             filepath.Join(whisprDir, "audit"),
		AuditEnabled:         true,
		AuditMaxAgeDays:      30,
		LogFile:              filepath.Join(whisprDir, "whispr.log"),
		LogLevel:             "info",
	}
}

// ConfigFilePath returns the path to the config file inside WhisprDir.
func (c Config) ConfigFilePath() string {
	return filepath.Join(c.WhisprDir, "config.toml")
}

// Load loads configuration from the default location (~/.whispr/config.toml),
// falling back to defaults if the file does not exist.
// Warnings are returned for unrecognized TOML keys (likely typos).
func Load() (Config, []string, error) {
	defaults := DefaultConfig()
	return LoadFrom(defaults.ConfigFilePath(), defaults)
}

// LoadFrom loads configuration from the given path, overlaying TOML values
// onto the provided defaults. If the file does not exist, defaults are returned
// without error (first-run case). If the file exists but is malformed, an error
// is returned. Warnings are returned for unrecognized TOML keys.
func LoadFrom(path string, defaults Config) (Config, []string, error) {
	cfg := defaults
	cfg.Models = slices.Clone(defaults.Models)

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil, nil
		}
		return Config{}, nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	// A provider switch without an explicit model list takes that provider's defaults.
	if meta.IsDefined("provider") && !meta.IsDefined("models") {
		cfg.UseProvider(cfg.Provider)
	}

	// If whispr_dir was overridden but derived paths were not, re-derive them.
	if meta.IsDefined("whispr_dir") {
		if !meta.IsDefined("audit_dir") {
			cfg.AuditDir = filepath.Join(cfg.WhisprDir, "audit")
		}
		if !meta.IsDefined("log_file") {
			cfg.LogFile = filepath.Join(cfg.WhisprDir, "whispr.log")
		}
	}

	// Unrecognized keys are likely typos.
	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown config key: %s", key))
	}

	return cfg, warnings, nil
}

// UseProvider switches the backend and resets the model list to its defaults.
func (c *Config) UseProvider(name string) {
	c.Provider = name
	switch name {
	case ProviderBedrock:
		c.Models = slices.Clone(BedrockModels)
	case ProviderGemini:
		c.Models = slices.Clone(GeminiModels)
	}
}

// PreferModel moves model to the front of the preference list, adding it
// if absent.
func (c *Config) PreferModel(model string) {
	if model == "" {
		return
	}
	rest := slices.DeleteFunc(slices.Clone(c.Models), func(m string) bool { return m == model })
	c.Models = append([]string{model}, rest...)
}

// ResolveAPIKey returns api_key, or the first non-empty key environment variable.
func (c Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	for _, name := range apiKeyEnv {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// BaseBackoff returns base_backoff_ms as a duration.
func (c Config) BaseBackoff() time.Duration {
	return time.Duration(c.BaseBackoffMS) * time.Millisecond
}

// MaxBackoff returns max_backoff_ms as a duration.
func (c Config) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMS) * time.Millisecond
}

// AuditMaxAge returns audit_max_age_days as a duration.
func (c Config) AuditMaxAge() time.Duration {
	return time.Duration(c.AuditMaxAgeDays) * 24 * time.Hour
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Provider != ProviderGemini && c.Provider != ProviderBedrock {
		errs = append(errs, fmt.Errorf("provider %q: must be %q or %q", c.Provider, ProviderGemini, ProviderBedrock))
	}
	if len(c.Models) == 0 {
		errs = append(errs, errors.New("models: at least one model is required"))
	}
	for _, m := range c.Models {
		if m == "" {
			errs = append(errs, errors.New("models: empty model identifier"))
			break
		}
	}
	positive := []struct {
		key string
		val int
	}{
		{"context_window", c.ContextWindow},
		{"base_backoff_ms", c.BaseBackoffMS},
		{"max_backoff_ms", c.MaxBackoffMS},
		{"long_message_threshold", c.LongMessageThreshold},
		{"preview_length", c.PreviewLength},
	}
	for _, p := range positive {
		if p.val <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", p.key, p.val))
		}
	}
	if c.RetryBudget < 0 {
		errs = append(errs, fmt.Errorf("retry_budget: must not be negative, got %d", c.RetryBudget))
	}
	if c.MaxBackoffMS > 0 && c.BaseBackoffMS > c.MaxBackoffMS {
		errs = append(errs, fmt.Errorf("base_backoff_ms (%d) exceeds max_backoff_ms (%d)", c.BaseBackoffMS, c.MaxBackoffMS))
	}
	return errors.Join(errs...)
}

// EnsureDirs creates WhisprDir and AuditDir if they do not exist.
func (c Config) EnsureDirs() error {
	dirs := []string{c.WhisprDir}
	if c.AuditEnabled {
		dirs = append(dirs, c.AuditDir)
	}
	if c.LogFile != "" {
		dirs = append(dirs, filepath.Dir(c.LogFile))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
