package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvFileVar names an explicit .env file to load instead of dir/.env.
const EnvFileVar = "SHEETLATE_ENV_FILE"

// LoadDotEnv loads the .env file for dir into the process environment.
// Variables that are already set win. It returns the loaded path, or ""
// when there was nothing to load.
func LoadDotEnv(dir string) (string, error) {
	path := strings.TrimSpace(os.Getenv(EnvFileVar))
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, ".env")
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return "", nil
		}
		return "", fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("loading %s: %w", path, err)
	}
	return path, nil
}

// mergeEnv overlays SHEETLATE_* variables. Unset variables leave the
// current value alone.
func (c *Config) mergeEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}
	return nil
}

// EnvUsage describes the recognised environment variables.
func EnvUsage() []string {
	return []string{
		EnvPrefix + "_BASE_URL",
		EnvPrefix + "_TIMEOUT",
		EnvPrefix + "_PROXY",
		EnvPrefix + "_MAX_FILE_SIZE",
		EnvPrefix + "_ALLOWED_EXTENSIONS",
		EnvPrefix + "_SOURCE_LANG",
		EnvPrefix + "_TARGET_LANG",
		EnvPrefix + "_LOG_LEVEL",
		EnvPrefix + "_LOG_FORMAT",
		EnvPrefix + "_SESSION",
		EnvPrefix + "_MOCK_HOST",
		EnvPrefix + "_MOCK_PORT",
		EnvPrefix + "_MOCK_LATENCY",
		EnvPrefix + "_MOCK_ENVELOPE",
		EnvFileVar,
	}
}
