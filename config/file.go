package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project config file.
const FileName = ".sheetlate.yaml"

// mergeFile overlays the values set in dir/.sheetlate.yaml. A missing file
// is not an error.
func (c *Config) mergeFile(dir string) error {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// WriteFile saves c as dir/.sheetlate.yaml.
func (c *Config) WriteFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	header := []byte("# sheetlate configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
