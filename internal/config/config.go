// Package config loads run settings from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qteleport/internal/teleport"
)

// Config is the file form of a build and run.
type Config struct {
	Layout        []int  `yaml:"layout"`
	Qubits        int    `yaml:"qubits"`
	Direction     string `yaml:"direction"`
	Bell          int    `yaml:"bell"`
	Barriers      bool   `yaml:"barriers"`
	HadamardBasis bool   `yaml:"hadamard_basis"`
	Shots         int    `yaml:"shots"`
	Seed          int64  `yaml:"seed"`
	OutputDir     string `yaml:"output_dir"`
	Database      string `yaml:"database"`
	Name          string `yaml:"name"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Layout:    teleport.DefaultPositions(),
		Qubits:    teleport.MinQubits,
		Direction: teleport.Synthesize.String(),
		Bell:      0,
		Shots:     1024,
		Seed:      1,
		OutputDir: ".",
		Database:  "qteleport.db",
		Name:      "teleport",
	}
}

// Load reads path over the defaults. Unknown fields are rejected, so a
// misspelt key fails instead of silently keeping its default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config file")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Validate checks the fields the composer does not check itself.
func (c Config) Validate() error {
	if c.Shots < 1 {
		return errors.Errorf("shots must be positive, got %d", c.Shots)
	}
	if _, ok := teleport.ParseDirection(c.Direction); !ok {
		return errors.Errorf("direction must be synthesize or native, got %q", c.Direction)
	}
	if !teleport.BellState(c.Bell).Valid() {
		return errors.Errorf("bell must be in 0..3, got %d", c.Bell)
	}
	return nil
}

// Options converts the build fields for teleport.Compose.
func (c Config) Options() (teleport.Options, error) {
	dir, ok := teleport.ParseDirection(c.Direction)
	if !ok {
		return teleport.Options{}, errors.Wrapf(teleport.ErrInvalidArgument, "direction %q", c.Direction)
	}
	return teleport.Options{
		Positions:     append([]int(nil), c.Layout...),
		NumQubits:     c.Qubits,
		Direction:     dir,
		Bell:          teleport.BellState(c.Bell),
		Barriers:      c.Barriers,
		HadamardBasis: c.HadamardBasis,
	}, nil
}
