package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RouteTarget specifies a backend and model chain position.
type RouteTarget struct {
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`
}

// FailoverConfig holds the ordered backend chain and sticky-assignment
// tuning for the resilient execution layer.
type FailoverConfig struct {
	Chain                []RouteTarget `yaml:"chain"`
	FailureThreshold     int           `yaml:"failure_threshold,omitempty"`
	FailureWindowSeconds int           `yaml:"failure_window_seconds,omitempty"`
	RequestsPerMinute    float64       `yaml:"requests_per_minute,omitempty"`
}

// LoadFailoverConfig reads failover configuration from a YAML file.
func LoadFailoverConfig(path string) (*FailoverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg FailoverConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyFailoverDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultFailoverConfig returns the default backend chain.
func DefaultFailoverConfig() *FailoverConfig {
	cfg := &FailoverConfig{
		Chain: []RouteTarget{
			{Backend: "anthropic", Model: "claude-sonnet-4-20250514"},
			{Backend: "openai", Model: "gpt-5.2-thinking"},
			{Backend: "google", Model: "gemini-2.0-pro"},
		},
	}
	applyFailoverDefaults(cfg)
	return cfg
}

// Validate checks that the chain is usable.
func (c *FailoverConfig) Validate() error {
	if len(c.Chain) == 0 {
		return fmt.Errorf("failover chain must have at least one position")
	}
	for i, target := range c.Chain {
		if target.Backend == "" {
			return fmt.Errorf("chain[%d]: backend required", i)
		}
		if target.Model == "" {
			return fmt.Errorf("chain[%d]: model required", i)
		}
	}
	return nil
}

func applyFailoverDefaults(cfg *FailoverConfig) {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.FailureWindowSeconds <= 0 {
		cfg.FailureWindowSeconds = 300
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
}
