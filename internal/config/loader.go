package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file name looked up in the working and
// home directories.
const DefaultConfigFile = ".wisdl"

// XDGConfigFile is the config file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .wisdl configuration file.
// It never holds a password; use WIS_PASSWORD or the prompt.
type File struct {
	BaseURL    string        `yaml:"base_url,omitempty"`
	Output     string        `yaml:"output,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	ChunkSize  int           `yaml:"chunk_size,omitempty"`
	MaxStudies int           `yaml:"max_studies,omitempty"`
	UserAgent  string        `yaml:"user_agent,omitempty"`
	EnvFile    string        `yaml:"env_file,omitempty"`

	// History is a pointer so "history: false" can be told apart from unset.
	History *bool `yaml:"history,omitempty"`
}

// LoadConfigFile reads a YAML config file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, if specified
// 2. .wisdl in the current directory
// 3. config.yaml in the XDG config directory
// 4. .wisdl in the user's home directory
//
// Returns the path found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
