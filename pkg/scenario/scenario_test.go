package scenario

import (
	"errors"
	"testing"

	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsAreValid(t *testing.T) {
	for _, name := range Builtins() {
		t.Run(name, func(t *testing.T) {
			s, err := Resolve(name)
			require.NoError(t, err)
			assert.NoError(t, s.Validate())
		})
	}
}

func TestBuiltinsReturnFreshCopies(t *testing.T) {
	a := Glutamate()
	a.Batches[0].Count = 1
	a.Rules.Release.Radius = 1

	b := Glutamate()
	assert.Equal(t, 10000, b.Batches[0].Count)
	assert.Equal(t, 50.0, b.Rules.Release.Radius)
}

func TestLoadMinimal(t *testing.T) {
	s, err := Load("testdata/minimal.yaml")
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, 4, s.FixedNodeCount())
	assert.Equal(t, 25, s.SecondaryCount())
	assert.Equal(t, model.NodeTypePopulation, s.Nodes[2].Type)
	assert.Equal(t, spatial.Range{Min: 0.5, Max: 2.0}, s.Batches[0].Level.Range)
	assert.Equal(t, 50.0, s.MaxRadius())

	epicenter, ok := s.EpicenterNode()
	require.True(t, ok)
	assert.Equal(t, model.Position{X: 100, Y: 100}, epicenter.Position())

	region := s.Batches[0].SamplingRegion(epicenter.Position())
	assert.Equal(t, spatial.Region{XMin: 80, XMax: 120, YMin: 80, YMax: 120}, region)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nbogus: 1\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
}

func TestMarshalRoundTripValidates(t *testing.T) {
	data, err := Marshal(TBI())
	require.NoError(t, err)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.NoError(t, s.Validate())
	assert.Equal(t, TBI().SecondaryCount(), s.SecondaryCount())
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("does-not-exist")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scenario)
	}{
		{"negative count", func(s *Scenario) { s.Batches[0].Count = -1 }},
		{"zero affected radius", func(s *Scenario) { s.Rules.AffectedRadius = 0 }},
		{"negative release radius", func(s *Scenario) { s.Rules.Release.Radius = -5 }},
		{"zero effect radius", func(s *Scenario) { s.Rules.Effect.Radius = 0 }},
		{"affected strength not elevated", func(s *Scenario) { s.Rules.Release.AffectedStrength = 1 }},
		{"inverted strength range", func(s *Scenario) { s.Batches[0].Link.Strength = spatial.Range{Min: 3, Max: 1} }},
		{"inverted region", func(s *Scenario) {
			s.Batches[0].Spread = nil
			s.Batches[0].Region = &spatial.Region{XMin: 10, XMax: 0, YMin: 0, YMax: 10}
		}},
		{"spread and region", func(s *Scenario) {
			s.Batches[0].Region = &spatial.Region{XMin: 0, XMax: 10, YMin: 0, YMax: 10}
		}},
		{"no sampling box", func(s *Scenario) { s.Batches[0].Spread = nil }},
		{"unknown node type", func(s *Scenario) { s.Nodes[0].Type = "organelle" }},
		{"secondary fixed node", func(s *Scenario) { s.Nodes[0].Type = model.NodeTypeSecondary }},
		{"duplicate node id", func(s *Scenario) { s.Nodes[3].ID = s.Nodes[2].ID }},
		{"epicenter missing", func(s *Scenario) { s.Epicenter = "nowhere" }},
		{"epicenter not injury", func(s *Scenario) { s.Epicenter = "cortex" }},
		{"synapse unknown source", func(s *Scenario) { s.Synapses[0].Source = "nowhere" }},
		{"synapse self loop", func(s *Scenario) { s.Synapses[0].Target = s.Synapses[0].Source }},
		{"synapse reserved id", func(s *Scenario) { s.Synapses[0].ID = "release_custom" }},
		{"link prefix reserved by release edges", func(s *Scenario) {
			s.Batches[0].Link.Prefix = "release_excitatory_neurons_cortex_to_glutamate"
		}},
		{"link prefix reserved by effect edges", func(s *Scenario) { s.Batches[0].Link.Prefix = "effect" }},
		{"link prefix collides with damage edge", func(s *Scenario) {
			s.Nodes = append(s.Nodes, FixedNode{ID: "neurons_7", Label: "Neurons", Type: model.NodeTypePopulation, X: 250, Y: 150})
			s.Batches[0].Link.Prefix = "injury_to_neurons"
		}},
		{"fixed id collides with batch", func(s *Scenario) { s.Nodes[0].ID = "glutamate_7" }},
		{"release unknown batch", func(s *Scenario) { s.Rules.Release.Batches = []string{"missing"} }},
		{"neurotransmitter on region", func(s *Scenario) { s.Nodes[2].Neurotransmitter = "glutamate" }},
		{"level and proximity level", func(s *Scenario) {
			s.Batches[0].Level = &Level{Key: "level", Range: spatial.Range{Min: 0, Max: 1}}
			s.Batches[0].ProximityLevel = &ProximityLevel{Key: "damage_level", Radius: 1, Near: 2, Far: 1}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Glutamate()
			tt.mutate(s)
			err := s.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidateAllowsDamageStemWithoutCollision(t *testing.T) {
	s := Glutamate()
	s.Batches[0].Link.Prefix = "injury_to_ligand"
	assert.NoError(t, s.Validate())
}

func TestValidateAllowsZeroCount(t *testing.T) {
	s := Glutamate()
	s.Batches[0].Count = 0
	assert.NoError(t, s.Validate())
}

func TestApplyOverrides(t *testing.T) {
	s := TBI()
	err := s.Apply(Overrides{
		Counts:         map[string]int{"inflammation": 10, "damaged_neuron": 20},
		AffectedRadius: 75,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, s.Batches[0].Count)
	assert.Equal(t, 20, s.Batches[1].Count)
	assert.Equal(t, 75.0, s.Rules.AffectedRadius)
}

func TestApplyOverrideErrors(t *testing.T) {
	assert.ErrorIs(t, TBI().Apply(Overrides{Counts: map[string]int{"glutamate": 1}}), ErrInvalidConfig)
	assert.ErrorIs(t, TBI().Apply(Overrides{ReleaseRadius: 10}), ErrInvalidConfig)
	assert.ErrorIs(t, TBI().Apply(Overrides{EffectRadius: 10}), ErrInvalidConfig)

	s := Glutamate()
	require.NoError(t, s.Apply(Overrides{ReleaseRadius: 80, EffectRadius: 60}))
	assert.Equal(t, 80.0, s.Rules.Release.Radius)
	assert.Equal(t, 60.0, s.Rules.Effect.Radius)
}
