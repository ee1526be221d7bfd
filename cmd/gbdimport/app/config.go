package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilnlab/oven-telemetry/internal/oven"
)

// Config represents the importer configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Storage  StorageConfig  `yaml:"storage"`
	Imports  []ImportConfig `yaml:"imports"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel `yaml:"logLevel"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DatabasePath string `yaml:"databasePath"`
}

// ImportConfig represents a single measurement file to import
type ImportConfig struct {
	File  string     `yaml:"file"`
	Group oven.Group `yaml:"group"`
}

// LogLevel wraps slog.Level for YAML decoding
type LogLevel slog.Level

func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value.Value)); err != nil {
		return fmt.Errorf("app.LogLevel: failed to parse: %s", err)
	}

	*l = LogLevel(level)
	return nil
}

func (l LogLevel) Level() slog.Level {
	return slog.Level(l)
}

// LoadConfig reads and validates the importer configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Storage.DatabasePath == "" {
		return nil, errors.New("storage.databasePath is required")
	}
	if len(config.Imports) == 0 {
		return nil, errors.New("no measurement files specified in configuration")
	}

	for i, imp := range config.Imports {
		if imp.File == "" {
			return nil, fmt.Errorf("imports[%d]: file is required", i)
		}
		if imp.Group != oven.GroupA && imp.Group != oven.GroupB {
			return nil, fmt.Errorf("imports[%d]: group must be %q or %q, got %q", i, oven.GroupA, oven.GroupB, imp.Group)
		}
	}

	return &config, nil
}
