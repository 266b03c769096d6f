package deck

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is one face a pair of cards can show. Key is the match key shared by
// both cards of the pair; Label and Asset are opaque to the engine and only
// travel to the renderer.
type Value struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
	Asset string `yaml:"asset,omitempty" json:"asset,omitempty"`
}

// ValueSource supplies candidate card faces in preference order.
type ValueSource interface {
	Values() []Value
}

type intValues int

// IntValues returns the plain 1..n source used when no richer faces are configured.
func IntValues(n int) ValueSource {
	return intValues(n)
}

func (n intValues) Values() []Value {
	if n <= 0 {
		return nil
	}
	values := make([]Value, 0, int(n))
	for i := 1; i <= int(n); i++ {
		key := strconv.Itoa(i)
		values = append(values, Value{Key: key, Label: key})
	}
	return values
}

// StaticValues is a fixed list of faces, typically loaded from a manifest.
type StaticValues []Value

func (s StaticValues) Values() []Value {
	return s
}

type valueManifest struct {
	Values []Value `yaml:"values"`
}

// LoadValues reads a YAML value manifest of the form
//
//	values:
//	  - key: titan
//	    label: Titan
//	    asset: cards/titan.png
func LoadValues(path string) (StaticValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read value manifest: %w", err)
	}

	var manifest valueManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse value manifest: %w", err)
	}
	if len(manifest.Values) == 0 {
		return nil, fmt.Errorf("%w: value manifest %s has no values", ErrInvalidConfig, path)
	}

	for i, v := range manifest.Values {
		if v.Key == "" {
			return nil, fmt.Errorf("%w: value %d in %s has no key", ErrInvalidConfig, i, path)
		}
		if v.Label == "" {
			manifest.Values[i].Label = v.Key
		}
	}
	return StaticValues(manifest.Values), nil
}
