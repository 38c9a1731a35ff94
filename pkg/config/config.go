// Package config handles loading and managing Twealth configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/twealth/twealth/pkg/rollup"
	"github.com/twealth/twealth/pkg/scoring"
)

// Config is the top-level configuration for Twealth.
type Config struct {
	Scoring        ScoringConfig         `yaml:"scoring"`
	Classification rollup.Classification `yaml:"classification"`
}

// ScoringConfig controls scoring behavior.
type ScoringConfig struct {
	// Weights overrides the composite blend per pillar key. Must still
	// sum to 1.0; NewEngine rejects anything else.
	Weights map[string]float64 `yaml:"weights"`
}

// DefaultConfig returns a Config with the built-in weights and
// classification table.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Weights: scoring.Defaults().CompositeWeights(),
		},
		Classification: rollup.DefaultClassification(),
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Classification.Tags) == 0 {
		cfg.Classification = rollup.DefaultClassification()
	}
	if len(cfg.Scoring.Weights) == 0 {
		cfg.Scoring.Weights = scoring.Defaults().CompositeWeights()
	}

	return cfg, nil
}

// FindConfigFile looks for .twealth/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".twealth", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
