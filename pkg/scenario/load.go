package scenario

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML scenario file. Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML scenario
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse scenario: %w", ErrInvalidConfig, err)
	}
	return &s, nil
}

// Marshal encodes a scenario as YAML
func Marshal(s *Scenario) ([]byte, error) {
	return yaml.Marshal(s)
}

// Resolve returns the built-in scenario with the given name, or loads ref as a file path
func Resolve(ref string) (*Scenario, error) {
	if build, ok := builtins[ref]; ok {
		return build(), nil
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("%w: %q is neither a built-in scenario %v nor a readable file", ErrInvalidConfig, ref, Builtins())
	}
	return Load(ref)
}

// Builtins returns the names of the built-in scenarios
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overrides adjusts a scenario from command-line or environment configuration.
// Zero values leave the scenario unchanged.
type Overrides struct {
	Counts         map[string]int // batch name -> count
	ReleaseRadius  float64
	EffectRadius   float64
	AffectedRadius float64
}

// Apply writes the overrides into the scenario. Overriding a disabled rule or an
// unknown batch is a configuration error.
func (s *Scenario) Apply(o Overrides) error {
	for name, count := range o.Counts {
		found := false
		for i := range s.Batches {
			if s.Batches[i].Name == name {
				s.Batches[i].Count = count
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: count override for unknown batch %q", ErrInvalidConfig, name)
		}
	}

	if o.ReleaseRadius != 0 {
		if s.Rules.Release == nil {
			return fmt.Errorf("%w: scenario %q has no release rule", ErrInvalidConfig, s.Name)
		}
		s.Rules.Release.Radius = o.ReleaseRadius
	}
	if o.EffectRadius != 0 {
		if s.Rules.Effect == nil {
			return fmt.Errorf("%w: scenario %q has no effect rule", ErrInvalidConfig, s.Name)
		}
		s.Rules.Effect.Radius = o.EffectRadius
	}
	if o.AffectedRadius != 0 {
		s.Rules.AffectedRadius = o.AffectedRadius
	}
	return nil
}

// IsBuiltin reports whether ref names a built-in scenario
func IsBuiltin(ref string) bool {
	_, ok := builtins[ref]
	return ok
}
