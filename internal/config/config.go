// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format              string `yaml:"format"`
		Verbose             bool   `yaml:"verbose"`
		Debug               bool   `yaml:"debug"`
		NoColor             bool   `yaml:"no_color"`
		EnablePreprocessors bool   `yaml:"enable_preprocessors"`
	} `yaml:"defaults"`

	// Optional external detector capabilities. Disabled detectors are never
	// constructed; the engine runs regex-only.
	Detectors struct {
		Cloud struct {
			Enabled bool   `yaml:"enabled"`
			Region  string `yaml:"region"`
		} `yaml:"cloud"`
		NERModel struct {
			Enabled   bool   `yaml:"enabled"`
			BundleDir string `yaml:"bundle_dir"`
			SeqLen    int    `yaml:"seq_len"`
		} `yaml:"ner_model"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"detectors"`

	// Redaction configurations
	Redaction struct {
		Token         string         `yaml:"token"`
		PreserveLastN map[string]int `yaml:"preserve_last_n"`
	} `yaml:"redaction"`

	// Embedding configurations
	Embeddings struct {
		Dimension int `yaml:"dimension"`
	} `yaml:"embeddings"`

	// Vector index configurations
	Index struct {
		Dir        string `yaml:"dir"`
		ChunkChars int    `yaml:"chunk_chars"`
	} `yaml:"index"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false
	config.Defaults.EnablePreprocessors = true

	config.Detectors.TimeoutSeconds = 10
	config.Detectors.NERModel.SeqLen = 256

	config.Redaction.Token = "[REDACTED]"
	config.Redaction.PreserveLastN = map[string]int{}

	config.Embeddings.Dimension = 512

	config.Index.Dir = filepath.Join("data", "embeddings")
	config.Index.ChunkChars = 2000

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Store default values before unmarshaling
	defaultEnablePreprocessors := config.Defaults.EnablePreprocessors
	defaultToken := config.Redaction.Token

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Restore defaults if not explicitly set in config file.
	// This handles the case where YAML unmarshaling zeroes fields that are
	// not present in the config file.
	if !containsField(data, "defaults", "enable_preprocessors") {
		config.Defaults.EnablePreprocessors = defaultEnablePreprocessors
	}
	if !containsField(data, "redaction", "token") {
		config.Redaction.Token = defaultToken
	}
	if config.Redaction.PreserveLastN == nil {
		config.Redaction.PreserveLastN = map[string]int{}
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Check current directory first - prioritize config.yaml
	if fileExists("config.yaml") {
		return "config.yaml"
	}
	if fileExists("scrub.yaml") {
		return "scrub.yaml"
	}
	if fileExists("scrub.yml") {
		return "scrub.yml"
	}

	// Project-specific config
	if fileExists(".scrub-scan.yaml") {
		return ".scrub-scan.yaml"
	}
	if fileExists(".scrub-scan.yml") {
		return ".scrub-scan.yml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	// Legacy home-directory locations
	homeConfig := filepath.Join(home, ".scrub.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}
	homeConfig = filepath.Join(home, ".scrub.yml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	// XDG config directory
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "scrub-scan", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}
	xdgConfigFile = filepath.Join(xdgConfig, "scrub-scan", "config.yml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Detectors.TimeoutSeconds < 0 {
		return fmt.Errorf("detectors.timeout_seconds cannot be negative")
	}
	if config.Detectors.NERModel.Enabled && config.Detectors.NERModel.BundleDir == "" {
		return fmt.Errorf("detectors.ner_model.bundle_dir is required when the model detector is enabled")
	}
	if config.Embeddings.Dimension <= 0 {
		return fmt.Errorf("embeddings.dimension must be positive")
	}
	if config.Index.ChunkChars < 0 {
		return fmt.Errorf("index.chunk_chars cannot be negative")
	}
	for entityType, n := range config.Redaction.PreserveLastN {
		if n < 0 {
			return fmt.Errorf("redaction.preserve_last_n[%s] cannot be negative", entityType)
		}
	}

	return nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			// Last key - check if it exists
			_, exists := current[key]
			return exists
		}
		// Intermediate key - navigate deeper
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && !info.IsDir()
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults; callers should not crash on a missing or
		// bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}
