package scenario

import (
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/spatial"
)

var builtins = map[string]func() *Scenario{
	"glutamate": Glutamate,
	"tbi":       TBI,
}

// Glutamate is the excitotoxicity scenario: a large pool of glutamate ligands
// around the injury zone, released by and acting on nearby populations
func Glutamate() *Scenario {
	return &Scenario{
		Name:  "glutamate",
		Title: "Expanded Mouse Brain Neural Network Simulation with Many Glutamate Nodes",
		Description: "A comprehensive simulation of the mouse brain showing major brain regions, " +
			"neural circuit components, and molecular interactions, emphasizing TBI-induced excessive glutamate release.",
		Version: "3.0",
		Output:  "expanded_mouse_brain_simulation_{date}.json",

		Epicenter: "tbi_injury_zone",
		Nodes: []FixedNode{
			{ID: "mouse_brain", Label: "Mouse Brain", Type: model.NodeTypeOrgan, X: 0, Y: 0},
			{
				ID: "tbi_injury_zone", Label: "TBI Injury Zone", Type: model.NodeTypeInjury, X: 300, Y: 150,
				Description: "Region affected by traumatic brain injury, leading to disrupted connectivity and excessive glutamate release.",
			},
			{ID: "cortex", Label: "Cortex", Type: model.NodeTypeRegion, X: 100, Y: 100},
			{ID: "hippocampus", Label: "Hippocampus", Type: model.NodeTypeRegion, X: 200, Y: 100},
			{ID: "excitatory_neurons_cortex", Label: "Excitatory Neurons (Cortex)", Type: model.NodeTypePopulation, X: 90, Y: 90, Neurotransmitter: "glutamate"},
			{ID: "inhibitory_neurons_cortex", Label: "Inhibitory Neurons (Cortex)", Type: model.NodeTypePopulation, X: 110, Y: 110, Neurotransmitter: "GABA"},
			{ID: "excitatory_neurons_hippocampus", Label: "Excitatory Neurons (Hippocampus)", Type: model.NodeTypePopulation, X: 190, Y: 90, Neurotransmitter: "glutamate"},
			{ID: "inhibitory_neurons_hippocampus", Label: "Inhibitory Neurons (Hippocampus)", Type: model.NodeTypePopulation, X: 210, Y: 110, Neurotransmitter: "GABA"},
		},
		Batches: []Batch{
			{
				Name:        "glutamate",
				Label:       "Glutamate",
				Category:    "ligand",
				Description: "Major excitatory neurotransmitter elevated in TBI, contributing to excitotoxicity.",
				Count:       10000,
				Spread:      &Spread{DX: 50, DY: 50},
				Link: Link{
					Prefix:      "edge_injury_glutamate",
					Label:       "Elevates",
					Type:        model.EdgeActivates,
					Strength:    spatial.Constant(1),
					Description: "TBI increases glutamate release due to cell damage.",
				},
			},
		},
		Synapses: []Synapse{
			{
				ID: "synapse_cortex_to_hippocampus_ex", Source: "excitatory_neurons_cortex", Target: "excitatory_neurons_hippocampus",
				Label: "Glutamatergic Synapse", Type: model.EdgeSynapse, Neurotransmitter: "glutamate",
			},
			{
				ID: "synapse_cortex_to_hippocampus_in", Source: "excitatory_neurons_cortex", Target: "inhibitory_neurons_hippocampus",
				Label: "Glutamatergic Synapse", Type: model.EdgeSynapse, Neurotransmitter: "glutamate",
			},
		},
		Rules: Rules{
			AffectedRadius: 150,
			Release: &ReleaseRule{
				Radius:           50,
				Neurotransmitter: "glutamate",
				Label:            "Releases",
				Strength:         1,
				AffectedStrength: 2,
			},
			Effect: &EffectRule{
				Radius:   50,
				Label:    "Affects",
				Strength: 1,
			},
			Damage: &DamageRule{Label: "Damages"},
		},
	}
}

// TBI is the inflammation scenario: inflammation markers with a synthetic level
// and damaged neurons whose damage depends on their distance to the injury
func TBI() *Scenario {
	return &Scenario{
		Name:  "tbi",
		Title: "Mouse Brain TBI Simulation for Nasal Spray Research",
		Description: "Synthetic data simulating TBI effects in a mouse brain, " +
			"including inflammation and neuronal damage, to support nasal spray development.",
		Version: "2.0",
		Output:  "mouse_brain_tbi_simulation_{date}.json",
		Metadata: map[string]string{
			"investment_goal": "Synthetic data for $8M TBI nasal spray investment",
		},

		Epicenter: "tbi_zone",
		Nodes: []FixedNode{
			{ID: "mouse_brain", Label: "Mouse Brain", Type: model.NodeTypeOrgan, X: 0, Y: 0},
			{ID: "tbi_zone", Label: "TBI Zone", Type: model.NodeTypeInjury, X: 300, Y: 150, Description: "Primary region of traumatic brain injury."},
			{ID: "cortex", Label: "Cortex", Type: model.NodeTypeRegion, X: 100, Y: 100},
			{ID: "hippocampus", Label: "Hippocampus", Type: model.NodeTypeRegion, X: 200, Y: 100},
			{ID: "neurons_cortex", Label: "Neurons (Cortex)", Type: model.NodeTypePopulation, X: 90, Y: 90},
			{ID: "neurons_hippocampus", Label: "Neurons (Hippocampus)", Type: model.NodeTypePopulation, X: 190, Y: 90},
		},
		Batches: []Batch{
			{
				Name:        "inflammation",
				Label:       "Inflammation Marker",
				Category:    "inflammatory",
				Description: "Elevated inflammation due to TBI, target for nasal spray.",
				Count:       5000,
				Spread:      &Spread{DX: 50, DY: 50},
				Level:       &Level{Key: "level", Range: spatial.Range{Min: 0.5, Max: 2.0}},
				Link: Link{
					Prefix:   "tbi_to_inflam",
					Label:    "Induces",
					Type:     model.EdgeActivates,
					Strength: spatial.Range{Min: 1.0, Max: 3.0},
				},
			},
			{
				Name:           "damaged_neuron",
				Label:          "Damaged Neuron",
				Category:       "neuron",
				Description:    "Neuron affected by TBI, measurable for recovery.",
				Count:          3000,
				Spread:         &Spread{DX: 100, DY: 100},
				ProximityLevel: &ProximityLevel{Key: "damage_level", Radius: 100, Near: 2.0, Far: 1.0},
				Link: Link{
					Prefix:   "tbi_to_neuron",
					Label:    "Damages",
					Type:     model.EdgeDamages,
					Strength: spatial.Range{Min: 1.0, Max: 2.5},
				},
			},
		},
		Rules: Rules{
			AffectedRadius: 150,
		},
	}
}
