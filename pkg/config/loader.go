package config

import (
	"fmt"
	"math"
	"os"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultGRPCAddr  = ":50051"
	DefaultHTTPAddr  = ":8080"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	if err := ValidateRequest(cfg.Pricing.Request()); err != nil {
		return fmt.Errorf("pricing validation failed: %w", err)
	}
	return nil
}

// ValidateRequest checks the domain of every pricing field. Config loading, the
// pricer and the daemon all go through it so the messages name the same fields.
func ValidateRequest(req models.PricingRequest) error {
	if !req.OptionKind.Valid() {
		return fmt.Errorf("option_kind must be call or put")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"strike", req.Strike},
		{"spot", req.Spot},
		{"risk_free_rate", req.RiskFreeRate},
		{"volatility", req.Volatility},
		{"time_to_expiry", req.TimeToExpiry},
		{"quantity", req.Quantity},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be finite, got %v", f.name, f.value)
		}
	}
	if req.Strike < 0 {
		return fmt.Errorf("strike cannot be negative, got %f", req.Strike)
	}
	if req.Spot <= 0 {
		return fmt.Errorf("spot must be positive, got %f", req.Spot)
	}
	if req.Volatility < 0 {
		return fmt.Errorf("volatility cannot be negative, got %f", req.Volatility)
	}
	if req.TimeToExpiry <= 0 {
		return fmt.Errorf("time_to_expiry must be positive, got %f", req.TimeToExpiry)
	}
	if req.NumTimeSteps <= 0 {
		return fmt.Errorf("num_time_steps must be positive, got %d", req.NumTimeSteps)
	}
	if req.NumScenarios <= 0 {
		return fmt.Errorf("num_scenarios must be positive, got %d", req.NumScenarios)
	}
	if req.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", req.Workers)
	}
	if req.InitialSeed > math.MaxInt64-int64(req.NumScenarios-1) {
		return fmt.Errorf("initial_seed %d overflows with %d scenarios", req.InitialSeed, req.NumScenarios)
	}
	return nil
}
