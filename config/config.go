// Package config resolves sheetlate settings from, in increasing priority:
//
//  1. built-in defaults
//  2. .sheetlate.yaml in the working directory
//  3. a .env file next to it (never overriding variables already set)
//  4. SHEETLATE_* environment variables
//
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/minios-linux/sheetlate/filecheck"
	"github.com/minios-linux/sheetlate/langmeta"
)

// EnvPrefix prefixes every environment variable, e.g. SHEETLATE_BASE_URL.
const EnvPrefix = "SHEETLATE"

// Config holds the resolved settings.
type Config struct {
	// BaseURL is the translation backend root.
	BaseURL string `yaml:"base_url,omitempty" envconfig:"BASE_URL"`
	// Timeout bounds a single backend request.
	Timeout time.Duration `yaml:"timeout,omitempty" envconfig:"TIMEOUT"`
	// Proxy is an optional HTTP(S) proxy for backend requests.
	Proxy string `yaml:"proxy,omitempty" envconfig:"PROXY"`

	MaxFileSize       int64    `yaml:"max_file_size,omitempty" envconfig:"MAX_FILE_SIZE"`
	AllowedExtensions []string `yaml:"allowed_extensions,omitempty" envconfig:"ALLOWED_EXTENSIONS"`

	SourceLang string `yaml:"source_lang,omitempty" envconfig:"SOURCE_LANG"`
	TargetLang string `yaml:"target_lang,omitempty" envconfig:"TARGET_LANG"`

	LogLevel  string `yaml:"log_level,omitempty" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format,omitempty" envconfig:"LOG_FORMAT"`

	// Session enables the saved session in the data directory.
	Session bool `yaml:"session" envconfig:"SESSION"`

	Mock MockConfig `yaml:"mock,omitempty" envconfig:"MOCK"`
}

// MockConfig configures the development backend.
type MockConfig struct {
	Host    string        `yaml:"host,omitempty" envconfig:"HOST"`
	Port    int           `yaml:"port,omitempty" envconfig:"PORT"`
	Latency time.Duration `yaml:"latency,omitempty" envconfig:"LATENCY"`
	// Envelope is the translate response shape: direct, nested or list.
	Envelope string `yaml:"envelope,omitempty" envconfig:"ENVELOPE"`
}

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:           "http://localhost:8000",
		Timeout:           120 * time.Second,
		MaxFileSize:       filecheck.DefaultMaxSize,
		AllowedExtensions: append([]string(nil), filecheck.DefaultAllowedExtensions...),
		SourceLang:        langmeta.DefaultSource,
		TargetLang:        langmeta.DefaultTarget,
		LogLevel:          "warn",
		LogFormat:         LogFormatConsole,
		Session:           true,
		Mock: MockConfig{
			Host:     "127.0.0.1",
			Port:     8000,
			Envelope: "direct",
		},
	}
}

// Load resolves the configuration for the project in dir.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := cfg.mergeFile(dir); err != nil {
		return nil, err
	}
	if _, err := LoadDotEnv(dir); err != nil {
		return nil, err
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Limits returns the file validator limits.
func (c *Config) Limits() filecheck.Limits {
	return filecheck.Limits{
		MaxSize:           c.MaxFileSize,
		AllowedExtensions: append([]string(nil), c.AllowedExtensions...),
	}
}

// Validate rejects settings the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an http(s) URL", c.BaseURL)
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("proxy %q: %w", c.Proxy, err)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive")
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed_extensions must not be empty")
	}
	if !langmeta.IsSupported(c.SourceLang) {
		return fmt.Errorf("source_lang %q is not supported (supported: %s)", c.SourceLang, strings.Join(langmeta.Codes(), ", "))
	}
	if !langmeta.IsSupported(c.TargetLang) {
		return fmt.Errorf("target_lang %q is not supported (supported: %s)", c.TargetLang, strings.Join(langmeta.Codes(), ", "))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel))); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log_format %q must be %s or %s", c.LogFormat, LogFormatConsole, LogFormatJSON)
	}
	if c.Mock.Port < 0 || c.Mock.Port > 65535 {
		return fmt.Errorf("mock.port %d out of range", c.Mock.Port)
	}
	switch c.Mock.Envelope {
	case "direct", "nested", "list":
	default:
		return fmt.Errorf("mock.envelope %q must be direct, nested or list", c.Mock.Envelope)
	}
	return nil
}
