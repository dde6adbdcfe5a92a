// Package config loads the numeric tolerances and design parameters that
// drive pattern construction. Files are YAML; any field left out keeps its
// default.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tolerance groups every numeric threshold the kernel compares against.
// Lengths are in pattern units (centimetres by convention).
type Tolerance struct {
	// EdgeLength is the shortest edge that is not reported as degenerate.
	EdgeLength float64 `yaml:"edge_length"`
	// StitchLength is the largest allowed difference between the projected
	// lengths of two stitched interfaces.
	StitchLength float64 `yaml:"stitch_length"`
	// FitResidual is the largest objective value accepted from the corner
	// fitting optimizer.
	FitResidual float64 `yaml:"fit_residual"`
	// Arclen is the accuracy passed to curve arc length evaluation.
	Arclen float64 `yaml:"arclen"`
}

// DefaultTolerance returns the tolerances used when none are configured.
func DefaultTolerance() Tolerance {
	return Tolerance{
		EdgeLength:   1e-3,
		StitchLength: 1e-2,
		FitResidual:  1e-3,
		Arclen:       1e-6,
	}
}

// Validate rejects non-positive tolerances.
func (t Tolerance) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"edge_length", t.EdgeLength},
		{"stitch_length", t.StitchLength},
		{"fit_residual", t.FitResidual},
		{"arclen", t.Arclen},
	} {
		if !(f.v > 0) {
			errs = append(errs, fmt.Errorf("tolerance %s must be positive, got %g", f.name, f.v))
		}
	}
	return errors.Join(errs...)
}

// Config is the root of a configuration file.
type Config struct {
	Tolerance Tolerance `yaml:"tolerance"`
	Design    Design    `yaml:"design"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Tolerance: DefaultTolerance(),
		Design:    DefaultDesign(),
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return Parse(data)
}

// Validate checks tolerances and every design parameter against its range.
func (c Config) Validate() error {
	return errors.Join(c.Tolerance.Validate(), c.Design.Validate())
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
