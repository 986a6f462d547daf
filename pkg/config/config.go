/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the hexforge configuration
type Config struct {
	Listen   Listen   `yaml:"listen"`
	Security Security `yaml:"security"`
	Service  Service  `yaml:"service"`
	Defaults Defaults `yaml:"defaults"`
}

// Listen configures the HTTP listener
type Listen struct {
	Port int    `yaml:"port"`
	Bind string `yaml:"bind"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Service contains service-level limits and CORS settings
type Service struct {
	MaxImageBytes int      `yaml:"max_image_bytes"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

// Defaults contains the conversion defaults applied when a request or
// command does not specify them
type Defaults struct {
	GapFill      uint8 `yaml:"gap_fill"`
	RecordLength int   `yaml:"record_length"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Listen: Listen{
			Port: 8080,
			Bind: "127.0.0.1",
		},
		Security: Security{
			APIKey: "auto",
		},
		Service: Service{
			MaxImageBytes: 64 << 20,
			CORSOrigins:   []string{"*"},
		},
		Defaults: Defaults{
			GapFill:      0xFF,
			RecordLength: 16,
		},
	}
}

// Validate checks ranges that would otherwise surface as confusing
// failures deep inside the encoders
func (c *Config) Validate() error {
	if c.Listen.Port < 1 || c.Listen.Port > 65535 {
		return fmt.Errorf("invalid listen port: %d", c.Listen.Port)
	}
	if c.Service.MaxImageBytes < 1 {
		return fmt.Errorf("max_image_bytes must be positive, got %d", c.Service.MaxImageBytes)
	}
	if c.Defaults.RecordLength < 1 || c.Defaults.RecordLength > 255 {
		return fmt.Errorf("record_length must be in 1..255, got %d", c.Defaults.RecordLength)
	}
	return nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateAPIKey generates a cryptographically secure random API key
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32) // 256 bits
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key
// and writes it to configPath
func BootstrapConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	apiKey, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	config.Security.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./hexforge.yaml"
	}

	// For Linux/macOS, use ~/.config/hexforge/config.yaml
	configDir := filepath.Join(homeDir, ".config", "hexforge")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
