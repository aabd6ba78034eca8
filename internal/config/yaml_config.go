package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Lists and templates that are awkward to express as env vars live here.
type YAMLConfig struct {
	Templates  TemplatesConfig  `yaml:"templates"`
	Strategies StrategiesConfig `yaml:"strategies"`
	Batch      BatchConfig      `yaml:"batch"`
}

// TemplatesConfig adds URL templates to the built-in ones.
// Placeholders: {name} {lower} {slug} {weight} {weight_lower} {ext}.
type TemplatesConfig struct {
	Direct []string `yaml:"direct"`
	CDN    []string `yaml:"cdn"`
}

// StrategiesConfig switches strategies off by name.
type StrategiesConfig struct {
	Disabled []string `yaml:"disabled"`
}

// BatchConfig lists fonts hunted at startup.
type BatchConfig struct {
	Fonts   []string `yaml:"fonts"`
	OnStart bool     `yaml:"on_start"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLFile parses the YAML configuration at path.
func LoadYAMLFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BatchFonts returns the configured batch list.
func (c *YAMLConfig) BatchFonts() []string {
	if c == nil {
		return nil
	}
	return c.Batch.Fonts
}
