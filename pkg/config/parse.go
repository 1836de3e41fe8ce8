package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

// ParseConfigYAML parses a Config from YAML bytes and validates it.
// Missing optional sections are filled with defaults before validation.
func ParseConfigYAML(data []byte) (*Config, error) {
	// yaml.v3 leaves absent keys untouched, so only an omitted quantity keeps the default
	cfg := Config{}
	cfg.Pricing.Contract.Quantity = models.DefaultQuantity
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

// MarshalConfigYAML serialises cfg back to YAML
func MarshalConfigYAML(cfg *Config) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("config is nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config yaml: %w", err)
	}
	return string(data), nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.Server == nil {
		cfg.Server = &Server{}
	}
	if cfg.Server.GRPCAddr == "" {
		cfg.Server.GRPCAddr = DefaultGRPCAddr
	}
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = DefaultHTTPAddr
	}
}
