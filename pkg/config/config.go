// Package config provides the realityctl settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the realityctl settings file. It configures the tool
// itself, not the managed proxy: the proxy configuration lives in the JSON
// document pair managed by the store.
type Config struct {
	// Server holds defaults for the managed server config.
	Server ServerConfig `yaml:"server"`

	// Docker configures the container runtime integration.
	Docker DockerConfig `yaml:"docker"`
}

// ServerConfig holds defaults applied to server-config operations.
type ServerConfig struct {
	// ConfigPath is the default server config path.
	ConfigPath string `yaml:"configPath"`
	// Port is the default listener port.
	Port int `yaml:"port"`
}

// DockerConfig holds container runtime settings.
type DockerConfig struct {
	// ContainerName is the managed container's name.
	ContainerName string `yaml:"containerName"`
	// Image is the proxy container image.
	Image string `yaml:"image"`
	// HostPort is the host port published to the container.
	HostPort int `yaml:"hostPort"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ConfigPath: "config.json",
			Port:       443,
		},
		Docker: DockerConfig{
			ContainerName: "xray-reality",
			Image:         "ghcr.io/xtls/xray-core:latest",
			HostPort:      443,
		},
	}
}

// Load loads settings from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads settings from a file, or returns defaults if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Save saves settings to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default settings file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "realityctl.yaml"
	}
	return filepath.Join(home, ".realityctl", "config.yaml")
}

// ExampleConfig returns the default settings as a YAML string.
func ExampleConfig() string {
	data, _ := yaml.Marshal(DefaultConfig())
	return string(data)
}
