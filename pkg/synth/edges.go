package synth

import (
	"fmt"

	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/ritzau/neurograph/pkg/spatial"
)

// EdgeSynthesizer derives the five edge families from placed nodes
type EdgeSynthesizer struct {
	epicenter string
	rules     scenario.Rules
	batches   []scenario.Batch
}

// NewEdgeSynthesizer creates a synthesizer for the scenario's rules
func NewEdgeSynthesizer(s *scenario.Scenario) *EdgeSynthesizer {
	return &EdgeSynthesizer{
		epicenter: s.Epicenter,
		rules:     s.Rules,
		batches:   s.Batches,
	}
}

// Fixed returns the hard-coded categorical edges, independent of geometry
func (es *EdgeSynthesizer) Fixed(synapses []scenario.Synapse) []model.Edge {
	edges := make([]model.Edge, 0, len(synapses))
	for _, syn := range synapses {
		edges = append(edges, model.Edge{
			ID:               syn.ID,
			Source:           syn.Source,
			Target:           syn.Target,
			Label:            syn.Label,
			Type:             syn.Type,
			Neurotransmitter: syn.Neurotransmitter,
		})
	}
	return edges
}

// Link returns the epicenter -> secondary edge for one secondary node
func (es *EdgeSynthesizer) Link(sec secondary) model.Edge {
	link := es.batches[sec.batch].Link
	return model.Edge{
		ID:          fmt.Sprintf("%s_%d", link.Prefix, sec.index),
		Source:      es.epicenter,
		Target:      sec.node.ID,
		Label:       link.Label,
		Type:        link.Type,
		Strength:    model.Strength(sec.linkStrength),
		Description: link.Description,
	}
}

// Releases returns the release edges of one population: one per eligible
// secondary strictly within the release radius. Populations without the rule's
// neurotransmitter release nothing.
func (es *EdgeSynthesizer) Releases(pop model.Node, secondaries []secondary, index spatial.Index, affected Membership) []model.Edge {
	rule := es.rules.Release
	if rule == nil || pop.Neurotransmitter() != rule.Neurotransmitter {
		return nil
	}

	strength := rule.Strength
	if affected.Contains(pop.ID) {
		strength = rule.AffectedStrength
	}

	var edges []model.Edge
	for _, i := range index.Within(pop.Position, rule.Radius) {
		sec := secondaries[i]
		if !rule.AppliesTo(es.batches[sec.batch].Name) {
			continue
		}
		edges = append(edges, model.Edge{
			ID:       fmt.Sprintf("release_%s_to_%s", pop.ID, sec.node.ID),
			Source:   pop.ID,
			Target:   sec.node.ID,
			Label:    rule.Label,
			Type:     model.EdgeReleases,
			Strength: model.Strength(strength),
		})
	}
	return edges
}

// Effects returns the effect edges onto one population: one per eligible
// secondary strictly within the effect radius, regardless of category
func (es *EdgeSynthesizer) Effects(pop model.Node, secondaries []secondary, index spatial.Index) []model.Edge {
	rule := es.rules.Effect
	if rule == nil {
		return nil
	}

	var edges []model.Edge
	for _, i := range index.Within(pop.Position, rule.Radius) {
		sec := secondaries[i]
		if !rule.AppliesTo(es.batches[sec.batch].Name) {
			continue
		}
		edges = append(edges, model.Edge{
			ID:       fmt.Sprintf("effect_%s_on_%s", sec.node.ID, pop.ID),
			Source:   sec.node.ID,
			Target:   pop.ID,
			Label:    rule.Label,
			Type:     model.EdgeAffects,
			Strength: model.Strength(rule.Strength),
		})
	}
	return edges
}

// Damages returns one edge from the epicenter to every affected population.
// Membership already encodes the distance check.
func (es *EdgeSynthesizer) Damages(affected Membership) []model.Edge {
	rule := es.rules.Damage
	if rule == nil {
		return nil
	}

	edges := make([]model.Edge, 0, affected.Len())
	for _, id := range affected.IDs() {
		e := model.Edge{
			ID:     "injury_to_" + id,
			Source: es.epicenter,
			Target: id,
			Label:  rule.Label,
			Type:   model.EdgeDamages,
		}
		if rule.Strength != nil {
			e.Strength = model.Strength(*rule.Strength)
		}
		edges = append(edges, e)
	}
	return edges
}
