package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ritzau/neurograph/pkg/model"
)

// ErrInvalidConfig marks a configuration error: bad counts, bounds, thresholds,
// or references. It is reported before any generation work starts.
var ErrInvalidConfig = errors.New("invalid configuration")

// validate is a singleton validator instance
var validate = validator.New()

// Validate checks field constraints and cross references. All errors wrap ErrInvalidConfig.
func (s *Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, formatValidationError(err))
	}

	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	fixed := make(map[string]model.NodeType, len(s.Nodes))
	for _, n := range s.Nodes {
		if _, dup := fixed[n.ID]; dup {
			report("duplicate node id %q", n.ID)
		}
		fixed[n.ID] = n.Type
		if n.Neurotransmitter != "" && n.Type != model.NodeTypePopulation {
			report("node %q: neurotransmitter is only valid on %s nodes", n.ID, model.NodeTypePopulation)
		}
	}

	if t, ok := fixed[s.Epicenter]; !ok {
		report("epicenter %q is not a fixed node", s.Epicenter)
	} else if t != model.NodeTypeInjury {
		report("epicenter %q must be an %s node, got %s", s.Epicenter, model.NodeTypeInjury, t)
	}

	batches := make(map[string]bool, len(s.Batches))
	prefixes := make(map[string]bool, len(s.Batches))
	reserved := []string{"release_", "effect_", "injury_to_"}
	for _, b := range s.Batches {
		if batches[b.Name] {
			report("duplicate batch name %q", b.Name)
		}
		batches[b.Name] = true
		if prefixes[b.Link.Prefix] {
			report("duplicate link prefix %q", b.Link.Prefix)
		}
		prefixes[b.Link.Prefix] = true
		reserved = append(reserved, b.Link.Prefix+"_")
		for _, family := range []string{"release_", "effect_"} {
			if strings.HasPrefix(b.Link.Prefix+"_", family) {
				report("batch %q: link prefix %q uses reserved prefix %q", b.Name, b.Link.Prefix, family)
			}
		}
		for _, n := range s.Nodes {
			if isGeneratedID("injury_to_"+n.ID, b.Link.Prefix) {
				report("batch %q: link prefix %q collides with damage edge %q", b.Name, b.Link.Prefix, "injury_to_"+n.ID)
			}
		}

		if b.Region != nil {
			if err := b.Region.Validate(); err != nil {
				report("batch %q: %v", b.Name, err)
			}
		}
		for _, n := range s.Nodes {
			if isGeneratedID(n.ID, b.Name) {
				report("node id %q collides with batch %q", n.ID, b.Name)
			}
		}
	}

	synapses := make(map[string]bool, len(s.Synapses))
	for _, syn := range s.Synapses {
		if synapses[syn.ID] {
			report("duplicate synapse id %q", syn.ID)
		}
		synapses[syn.ID] = true
		if _, ok := fixed[syn.Source]; !ok {
			report("synapse %q: unknown source %q", syn.ID, syn.Source)
		}
		if _, ok := fixed[syn.Target]; !ok {
			report("synapse %q: unknown target %q", syn.ID, syn.Target)
		}
		for _, prefix := range reserved {
			if strings.HasPrefix(syn.ID, prefix) {
				report("synapse id %q uses reserved prefix %q", syn.ID, prefix)
			}
		}
	}

	if r := s.Rules.Release; r != nil {
		for _, name := range r.Batches {
			if !batches[name] {
				report("release rule: unknown batch %q", name)
			}
		}
	}
	if r := s.Rules.Effect; r != nil {
		for _, name := range r.Batches {
			if !batches[name] {
				report("effect rule: unknown batch %q", name)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// isGeneratedID reports whether id has the shape <batch>_<digits>
func isGeneratedID(id, batch string) bool {
	rest, ok := strings.CutPrefix(id, batch+"_")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Scenario.")
		param := e.Param()

		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s: field is required", field))
		case "required_without":
			messages = append(messages, fmt.Sprintf("%s: required when %s is not set", field, param))
		case "excluded_with":
			messages = append(messages, fmt.Sprintf("%s: cannot be combined with %s", field, param))
		case "min":
			messages = append(messages, fmt.Sprintf("%s: must have at least %s entries", field, param))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s: must be greater than %s", field, param))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s: must be at least %s", field, param))
		case "gtfield":
			messages = append(messages, fmt.Sprintf("%s: must be greater than %s", field, param))
		case "gtefield":
			messages = append(messages, fmt.Sprintf("%s: must not be less than %s", field, param))
		case "nefield":
			messages = append(messages, fmt.Sprintf("%s: must differ from %s", field, param))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s: must be one of [%s]", field, param))
		default:
			messages = append(messages, fmt.Sprintf("%s: failed %s validation", field, e.Tag()))
		}
	}

	return errors.New(strings.Join(messages, "; "))
}
