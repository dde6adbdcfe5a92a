package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chazu/stitchwork/pkg/pattern"
)

// WriteJSON encodes s as indented JSON.
func WriteJSON(w io.Writer, s *pattern.Spec) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	return nil
}

// ReadJSON decodes a Spec and checks that every panel outline can be
// rebuilt from it.
func ReadJSON(r io.Reader) (*pattern.Spec, error) {
	var s pattern.Spec
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("import json: %w", err)
	}
	for _, ps := range s.Panels {
		if _, err := Outline(ps); err != nil {
			return nil, fmt.Errorf("import json: %w", err)
		}
	}
	return &s, nil
}

// SaveJSON writes s to path.
func SaveJSON(path string, s *pattern.Spec) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	if err := WriteJSON(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadJSON reads a Spec from path.
func LoadJSON(path string) (*pattern.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import json: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}
