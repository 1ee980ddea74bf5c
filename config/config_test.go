package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load(empty dir) = %+v, want defaults", cfg)
	}
	limits := cfg.Limits()
	if limits.MaxSize != 10*1024*1024 || !reflect.DeepEqual(limits.AllowedExtensions, []string{".xlsx", ".xls"}) {
		t.Fatalf("Limits() = %+v", limits)
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
base_url: http://translate.internal:9000
timeout: 30s
source_lang: ja
target_lang: ko
allowed_extensions: [".xlsx", ".xls", ".csv"]
mock:
  port: 9100
`)
	writeFile(t, filepath.Join(dir, ".env"), "SHEETLATE_TARGET_LANG=fr\nSHEETLATE_TIMEOUT=45s\n")
	t.Cleanup(func() { os.Unsetenv("SHEETLATE_TARGET_LANG") })
	t.Setenv("SHEETLATE_TIMEOUT", "5s")
	t.Setenv("SHEETLATE_MOCK_ENVELOPE", "list")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BaseURL != "http://translate.internal:9000" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.SourceLang != "ja" {
		t.Fatalf("SourceLang = %q, want file value", cfg.SourceLang)
	}
	if cfg.TargetLang != "fr" {
		t.Fatalf("TargetLang = %q, want .env value", cfg.TargetLang)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v, want process env to win over .env", cfg.Timeout)
	}
	if len(cfg.AllowedExtensions) != 3 {
		t.Fatalf("AllowedExtensions = %v", cfg.AllowedExtensions)
	}
	if cfg.Mock.Port != 9100 || cfg.Mock.Envelope != "list" || cfg.Mock.Host != "127.0.0.1" {
		t.Fatalf("Mock = %+v", cfg.Mock)
	}
}

func TestExplicitEnvFileMustExist(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "missing.env"))
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load() with missing explicit env file succeeded")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "base_url: [unterminated\n")
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Fatalf("Load() = %v, want parse error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://host" }, "base_url"},
		{"missing host", func(c *Config) { c.BaseURL = "http://" }, "base_url"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"zero size", func(c *Config) { c.MaxFileSize = 0 }, "max_file_size"},
		{"no extensions", func(c *Config) { c.AllowedExtensions = nil }, "allowed_extensions"},
		{"unknown source", func(c *Config) { c.SourceLang = "ru" }, "source_lang"},
		{"unknown target", func(c *Config) { c.TargetLang = "" }, "target_lang"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad port", func(c *Config) { c.Mock.Port = 70000 }, "mock.port"},
		{"bad envelope", func(c *Config) { c.Mock.Envelope = "soap" }, "mock.envelope"},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	for _, tc := range tests {
		cfg := Default()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: Validate() = %v, want error mentioning %q", tc.name, err, tc.want)
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.TargetLang = "de"
	cfg.Session = false

	if _, err := cfg.WriteFile(dir); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TargetLang != "de" || got.Session {
		t.Fatalf("round trip lost values: %+v", got)
	}
}
