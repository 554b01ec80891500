// Package config reads the project configuration file listing the Controle
// environments a team works against.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project configuration file looked up in the current
// directory.
const ConfigFileName = "controle.yaml"

// Environment represents one Controle deployment.
type Environment struct {
	Alias string `yaml:"alias"`
	URL   string `yaml:"url"`
}

// Config represents the project configuration.
type Config struct {
	Environments []Environment `yaml:"environments"`
}

// LoadFromCurrentDir reads controle.yaml from the working directory.
func LoadFromCurrentDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFromFile(filepath.Join(wd, ConfigFileName))
}

// LoadFromFile reads and validates a configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.Environments) == 0 {
		return nil, fmt.Errorf("no environments configured in %s", ConfigFileName)
	}
	for i, env := range cfg.Environments {
		if env.Alias == "" || env.URL == "" {
			return nil, fmt.Errorf("environment %d is missing an alias or url", i)
		}
	}

	return &cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetEnvironmentByAlias finds an environment by its alias.
func (c *Config) GetEnvironmentByAlias(alias string) (*Environment, error) {
	for i := range c.Environments {
		if c.Environments[i].Alias == alias {
			return &c.Environments[i], nil
		}
	}
	return nil, fmt.Errorf("environment '%s' not found in %s", alias, ConfigFileName)
}
