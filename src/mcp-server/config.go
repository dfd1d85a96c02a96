// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config represents the MCP server configuration structure.
//
// The configuration can be loaded from a JSON or YAML file specified by the
// MCP_PINNER_CONFIG_FILE environment variable, with defaults applied for any
// missing values. Supported file extensions: .json, .yaml, .yml
type Config struct {
	// Defaults: Default settings for pinning operations
	Defaults struct {
		// Timeout: Default timeout in seconds for remote operations
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// IgnoreExpiredPinnedCert: Default expiry tolerance for derived pins
		IgnoreExpiredPinnedCert bool `json:"ignoreExpiredPinnedCert" yaml:"ignoreExpiredPinnedCert"`
		// WarnDays: Number of days before expiry to show warnings
		WarnDays int `json:"warnDays" yaml:"warnDays"`
	} `json:"defaults" yaml:"defaults"`
}

// detectConfigFormat determines the configuration file format based on file extension.
// It uses case-insensitive extension matching for cross-platform compatibility.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// activeConfig holds the configuration the running server was started with.
// Handlers read it for defaults that are not per-request parameters.
var activeConfig = defaultConfig()

// defaultConfig returns the configuration used when no file is provided.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Defaults.Timeout = 10
	cfg.Defaults.WarnDays = 30
	return cfg
}

// loadConfig loads the server configuration from configPath, applying
// defaults for any missing values. An empty path returns the defaults.
func loadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch detectConfigFormat(configPath) {
	case configFormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Defaults.Timeout <= 0 {
		cfg.Defaults.Timeout = 10
	}
	if cfg.Defaults.WarnDays <= 0 {
		cfg.Defaults.WarnDays = 30
	}

	return cfg, nil
}
