// Package config provides configuration loading and management for fastgrowcut.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fastgrowcut/pkg/growcut"
	"fastgrowcut/pkg/logging"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// GeometryTolerance is the largest origin/spacing difference in mm
		// that still counts as the same image geometry
		GeometryTolerance float64 `yaml:"geometryTolerance"`

		// MaxVoxels caps the grid size a session will allocate for
		MaxVoxels int `yaml:"maxVoxels"`
	} `yaml:"segmentation"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// ExtractSlices writes PNG quick-looks of the label volume
		ExtractSlices bool `yaml:"extractSlices"`

		// SlicesDir is where extracted slices are written
		SlicesDir string `yaml:"slicesDir"`
	} `yaml:"output"`

	// Log selects the log destination
	Log logging.Config `yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	opts := growcut.DefaultOptions()
	cfg.Segmentation.GeometryTolerance = opts.GeometryTolerance
	cfg.Segmentation.MaxVoxels = opts.MaxVoxels

	cfg.Output.Verbose = false
	cfg.Output.ExtractSlices = false
	cfg.Output.SlicesDir = "label_slices"

	cfg.Log.MaxSize = 100
	cfg.Log.MaxAge = 28

	return cfg
}

// SessionOptions converts the segmentation section to session options.
func (c *Config) SessionOptions() growcut.Options {
	return growcut.Options{
		GeometryTolerance: c.Segmentation.GeometryTolerance,
		MaxVoxels:         c.Segmentation.MaxVoxels,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Check segmentation limits
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// validate rejects values a session would otherwise silently replace with
// its defaults.
func (c *Config) validate() error {
	if c.Segmentation.GeometryTolerance < 0 {
		return fmt.Errorf("geometryTolerance must not be negative, got %g", c.Segmentation.GeometryTolerance)
	}
	if c.Segmentation.MaxVoxels < 0 {
		return fmt.Errorf("maxVoxels must not be negative, got %d", c.Segmentation.MaxVoxels)
	}
	if c.Output.ExtractSlices && c.Output.SlicesDir == "" {
		return fmt.Errorf("extractSlices requires slicesDir")
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
