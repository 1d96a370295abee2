// Package synth turns a scenario into a graph: it places entities, resolves
// which populations the injury reaches, and derives the edge families.
package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/ritzau/neurograph/pkg/spatial"
)

// secondary is a placed secondary node together with the strength of its
// epicenter link, both drawn from the node's own random stream
type secondary struct {
	node         model.Node
	batch        int
	index        int
	linkStrength float64
}

// EntityFactory builds fixed and secondary nodes
type EntityFactory struct {
	seed      uint64
	epicenter model.Position
}

// NewEntityFactory creates a factory. Secondary nodes are anchored on epicenter.
func NewEntityFactory(seed uint64, epicenter model.Position) *EntityFactory {
	return &EntityFactory{seed: seed, epicenter: epicenter}
}

// Fixed converts the scenario's hand-placed nodes, preserving their order
func (f *EntityFactory) Fixed(nodes []scenario.FixedNode) []model.Node {
	result := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, model.Node{
			ID:       n.ID,
			Label:    n.Label,
			Position: n.Position(),
			Attrs:    fixedAttributes(n),
		})
	}
	return result
}

func fixedAttributes(n scenario.FixedNode) model.Attributes {
	switch n.Type {
	case model.NodeTypeOrgan:
		return model.OrganAttributes{}
	case model.NodeTypeInjury:
		return model.InjuryAttributes{Description: n.Description}
	case model.NodeTypeRegion:
		return model.RegionAttributes{}
	case model.NodeTypePopulation:
		return model.PopulationAttributes{Neurotransmitter: n.Neurotransmitter}
	}
	// Scenario validation restricts fixed node types to the cases above
	panic(fmt.Sprintf("unsupported fixed node type %q", n.Type))
}

// source returns the random stream for one secondary node. Every node has its
// own stream so placement does not depend on generation order.
func (f *EntityFactory) source(batch, index int) rand.Source {
	return rand.NewPCG(f.seed, uint64(batch+1)<<40|uint64(index))
}

// Secondary builds node index of batch b. Draw order: x, y, level, link strength.
func (f *EntityFactory) Secondary(batch int, b *scenario.Batch, index int) (secondary, error) {
	src := f.source(batch, index)

	sampler, err := spatial.NewSampler(b.SamplingRegion(f.epicenter), src)
	if err != nil {
		return secondary{}, fmt.Errorf("batch %q: %w", b.Name, err)
	}
	pos := sampler.Sample()

	attrs := model.SecondaryAttributes{
		Category:    b.Category,
		Description: b.Description,
	}
	switch {
	case b.Level != nil:
		attrs.LevelKey = b.Level.Key
		attrs.Level = b.Level.Range.Draw(src)
	case b.ProximityLevel != nil:
		attrs.LevelKey = b.ProximityLevel.Key
		attrs.Level = b.ProximityLevel.Far
		if spatial.Within(pos, f.epicenter, b.ProximityLevel.Radius) {
			attrs.Level = b.ProximityLevel.Near
		}
	}

	return secondary{
		node: model.Node{
			ID:       SecondaryID(b.Name, index),
			Label:    b.Label,
			Position: pos,
			Attrs:    attrs,
		},
		batch:        batch,
		index:        index,
		linkStrength: b.Link.Strength.Draw(src),
	}, nil
}

// SecondaryID returns the ID of node index in the named batch
func SecondaryID(batch string, index int) string {
	return fmt.Sprintf("%s_%d", batch, index)
}
