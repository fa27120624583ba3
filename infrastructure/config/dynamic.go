package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DynamicConfig represents runtime-changeable configuration, loaded from
// a YAML file and re-read when the file changes.
type DynamicConfig struct {
	Limits   Limits   `yaml:"limits"`
	Analysis Analysis `yaml:"analysis"`
}

// Limits holds upload limits enforced at the API surface.
type Limits struct {
	MaxImageBytes     int64 `yaml:"maxImageBytes"`
	MaxImagesPerItem  int   `yaml:"maxImagesPerItem"`
	MaxBlueprintBytes int64 `yaml:"maxBlueprintBytes"`
	MaxFilesPerBatch  int   `yaml:"maxFilesPerBatch"`
}

// Analysis holds tunables for the AI collaborators.
type Analysis struct {
	Temperature     float64 `yaml:"temperature"`
	MaxReportTokens int     `yaml:"maxReportTokens"`
}

// DefaultDynamicConfig returns the values used when no file is provided.
func DefaultDynamicConfig() *DynamicConfig {
	return &DynamicConfig{
		Limits: Limits{
			MaxImageBytes:     8 << 20,
			MaxImagesPerItem:  10,
			MaxBlueprintBytes: 32 << 20,
			MaxFilesPerBatch:  5,
		},
		Analysis: Analysis{
			Temperature:     0.3,
			MaxReportTokens: 4096,
		},
	}
}

// LoadDynamicConfig reads and validates the YAML file at path.
func LoadDynamicConfig(path string) (*DynamicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dynamic config: %w", err)
	}

	cfg := DefaultDynamicConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse dynamic config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *DynamicConfig) validate() error {
	if c.Limits.MaxImageBytes <= 0 || c.Limits.MaxBlueprintBytes <= 0 {
		return fmt.Errorf("upload size limits must be positive")
	}
	if c.Limits.MaxImagesPerItem <= 0 || c.Limits.MaxFilesPerBatch <= 0 {
		return fmt.Errorf("upload count limits must be positive")
	}
	return nil
}
