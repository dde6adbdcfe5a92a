package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Float is a numeric design parameter with an inclusive range.
type Float struct {
	V     float64    `yaml:"v"`
	Range [2]float64 `yaml:"range"`
}

func (p Float) check(name string) error {
	if p.Range[0] > p.Range[1] {
		return fmt.Errorf("%s: empty range [%g, %g]", name, p.Range[0], p.Range[1])
	}
	if p.V < p.Range[0] || p.V > p.Range[1] {
		return fmt.Errorf("%s: value %g outside [%g, %g]", name, p.V, p.Range[0], p.Range[1])
	}
	return nil
}

// Bool is an on/off design parameter.
type Bool struct {
	V bool `yaml:"v"`
}

// Choice selects one of a fixed set of named options.
type Choice struct {
	V       string   `yaml:"v"`
	Options []string `yaml:"options"`
}

func (p Choice) check(name string) error {
	if !slices.Contains(p.Options, p.V) {
		return fmt.Errorf("%s: %q is not one of %q", name, p.V, p.Options)
	}
	return nil
}

// Design is the typed parameter tree consumed by garment builders. Fractions
// are relative to the matching body measurement.
type Design struct {
	Collar    Collar    `yaml:"collar"`
	Pants     Pants     `yaml:"pants"`
	Cuff      Cuff      `yaml:"cuff"`
	Waistband Waistband `yaml:"waistband"`
}

type Collar struct {
	// Depth of the collar band as a fraction of the neck width.
	Depth Float `yaml:"depth"`
	// LapelStanding keeps the lapel upright instead of folding it over.
	LapelStanding Bool `yaml:"lapel_standing"`
}

type Pants struct {
	// Length of the leg as a fraction of the leg length measurement.
	Length Float `yaml:"length"`
	// Width is extra ease across the hips.
	Width Float `yaml:"width"`
	// Rise shortens the crotch depth; 1 sits at the natural waist.
	Rise Float `yaml:"rise"`
	// FrontRuffle and BackRuffle gather the waist edge onto the band.
	FrontRuffle Bool `yaml:"front_ruffle"`
	BackRuffle  Bool `yaml:"back_ruffle"`
	// CrotchExtension scales the crotch point outwards.
	CrotchExtension Float `yaml:"crotch_extension"`
}

// Cuff selects the finishing piece at the leg or sleeve opening.
type Cuff struct {
	Type Choice `yaml:"type"`
	// Length of the cuff along the limb.
	Length Float `yaml:"length"`
}

type Waistband struct {
	// Width of the band in pattern units.
	Width Float `yaml:"width"`
	// Waist is the band length as a fraction of the waist measurement.
	Waist Float `yaml:"waist"`
}

// DefaultDesign returns the parameter tree with every value at its default.
func DefaultDesign() Design {
	return Design{
		Collar: Collar{
			Depth:         Float{V: 0.5, Range: [2]float64{0.2, 1}},
			LapelStanding: Bool{V: false},
		},
		Pants: Pants{
			Length:          Float{V: 0.9, Range: [2]float64{0.2, 1}},
			Width:           Float{V: 1.1, Range: [2]float64{1, 1.5}},
			Rise:            Float{V: 1, Range: [2]float64{0.5, 1}},
			FrontRuffle:     Bool{V: false},
			BackRuffle:      Bool{V: false},
			CrotchExtension: Float{V: 0.05, Range: [2]float64{0, 0.2}},
		},
		Cuff: Cuff{
			Type:   Choice{V: "", Options: []string{"", "band", "skirt", "flare"}},
			Length: Float{V: 5, Range: [2]float64{1, 20}},
		},
		Waistband: Waistband{
			Width: Float{V: 4, Range: [2]float64{1, 10}},
			Waist: Float{V: 1, Range: [2]float64{0.8, 1.2}},
		},
	}
}

// Validate reports every parameter outside its allowed values.
func (d Design) Validate() error {
	return errors.Join(
		d.Collar.Depth.check("collar.depth"),
		d.Pants.Length.check("pants.length"),
		d.Pants.Width.check("pants.width"),
		d.Pants.Rise.check("pants.rise"),
		d.Pants.CrotchExtension.check("pants.crotch_extension"),
		d.Cuff.Type.check("cuff.type"),
		d.Cuff.Length.check("cuff.length"),
		d.Waistband.Width.check("waistband.width"),
		d.Waistband.Waist.check("waistband.waist"),
	)
}

// Lookup returns the value of the parameter at a dotted yaml path such as
// "pants.length": a float64, bool or string.
func (d Design) Lookup(path string) (any, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", path, err)
	}
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", path, err)
	}
	for _, key := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("lookup %s: %q is not a group", path, key)
		}
		if node, ok = m[key]; !ok {
			return nil, fmt.Errorf("lookup %s: no parameter %q", path, key)
		}
	}
	leaf, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("lookup %s: not a parameter", path)
	}
	v, ok := leaf["v"]
	if !ok {
		return nil, fmt.Errorf("lookup %s: not a parameter", path)
	}
	if i, ok := v.(int); ok {
		return float64(i), nil
	}
	return v, nil
}
