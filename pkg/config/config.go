// Package config loads application settings from config/aquascape.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/aquascape/pkg/camera"
	"github.com/chazu/aquascape/pkg/history"
	"github.com/chazu/aquascape/pkg/interact"
	"github.com/chazu/aquascape/pkg/tank"
	"gopkg.in/yaml.v3"
)

// Path is the config file location, relative to the working directory.
const Path = "config/aquascape.yaml"

// Config holds every tunable of the application.
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	HistoryCap  int               `yaml:"history_cap"`
	Tank        tank.Bounds       `yaml:"tank"`
	Camera      camera.Camera     `yaml:"camera"`
	Interaction interact.Settings `yaml:"interaction"`
	Mesh        Mesh              `yaml:"mesh"`
	Script      Script            `yaml:"script"`
	// Catalog is a product file path. Empty selects the built-in catalog.
	Catalog string `yaml:"catalog"`
}

// Mesh controls tessellation of the scene preview.
type Mesh struct {
	// Cells is the marching cubes resolution along the longest axis.
	Cells int `yaml:"cells"`
}

// Script controls layout script evaluation.
type Script struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:    "info",
		HistoryCap:  history.DefaultCap,
		Tank:        tank.Default(),
		Camera:      camera.Default(),
		Interaction: interact.DefaultSettings(),
		Mesh:        Mesh{Cells: 48},
		Script:      Script{Timeout: 5 * time.Second},
	}
}

// Load reads the config at path over the defaults, so a file only needs the
// keys it changes. A missing file yields Default(); a malformed one is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	if c.HistoryCap < 1 {
		return fmt.Errorf("history_cap must be at least 1, got %d", c.HistoryCap)
	}
	if c.Mesh.Cells < 4 {
		return fmt.Errorf("mesh.cells must be at least 4, got %d", c.Mesh.Cells)
	}
	if c.Script.Timeout <= 0 {
		return fmt.Errorf("script.timeout must be positive, got %s", c.Script.Timeout)
	}
	s := c.Interaction
	if s.MinScale <= 0 || s.MaxScale < s.MinScale {
		return fmt.Errorf("interaction scale range [%v, %v] is invalid", s.MinScale, s.MaxScale)
	}
	if !tank.ValidGlassTypes[c.Tank.Glass] {
		return fmt.Errorf("tank.glass_type %q is not one of standard, low-iron, tempered", c.Tank.Glass)
	}
	return nil
}
