package synth

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/spatial"
)

// TestGraphInvariants verifies properties that must hold for any valid configuration
func TestGraphInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("node count equals fixed plus secondary count", prop.ForAll(
		func(seed uint64, count int) bool {
			s := smallGlutamate(count)
			g, err := NewGenerator(s, Options{Seed: seed})
			if err != nil {
				return false
			}
			graph, err := g.Generate(context.Background())
			if err != nil {
				return false
			}
			return graph.NodeCount() == s.FixedNodeCount()+count
		},
		gen.UInt64(),
		gen.IntRange(0, 1500),
	))

	properties.Property("membership matches strict distance check", prop.ForAll(
		func(xs, ys []float64, radius float64) bool {
			epicenter := model.Position{X: 300, Y: 150}
			n := min(len(xs), len(ys))
			populations := make([]model.Node, n)
			for i := 0; i < n; i++ {
				populations[i] = model.Node{
					ID:       SecondaryID("pop", i),
					Position: model.Position{X: xs[i], Y: ys[i]},
					Attrs:    model.PopulationAttributes{},
				}
			}

			affected := Affected(populations, epicenter, radius)
			for _, p := range populations {
				if affected.Contains(p.ID) != (spatial.Distance(p.Position, epicenter) < radius) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 600)),
		gen.SliceOf(gen.Float64Range(0, 300)),
		gen.Float64Range(0.01, 400),
	))

	properties.Property("release and effect edges respect their radius", prop.ForAll(
		func(seed uint64, releaseRadius, effectRadius float64) bool {
			s := smallGlutamate(800)
			s.Rules.Release.Radius = releaseRadius
			s.Rules.Effect.Radius = effectRadius

			g, err := NewGenerator(s, Options{Seed: seed})
			if err != nil {
				return false
			}
			graph, err := g.Generate(context.Background())
			if err != nil {
				return false
			}

			for _, e := range graph.Edges() {
				src, _ := graph.Node(e.Source)
				dst, _ := graph.Node(e.Target)
				switch e.Type {
				case model.EdgeReleases:
					if spatial.Distance(src.Position, dst.Position) >= releaseRadius {
						return false
					}
				case model.EdgeAffects:
					if spatial.Distance(src.Position, dst.Position) >= effectRadius {
						return false
					}
				}
			}
			return true
		},
		gen.UInt64(),
		gen.Float64Range(1, 200),
		gen.Float64Range(1, 200),
	))

	properties.TestingRun(t)
}

func TestReleaseRuleRestrictedToBatch(t *testing.T) {
	s := pinnedScenario(model.Position{X: 95, Y: 95}, 1)
	second := s.Batches[0]
	second.Name = "decoy"
	second.Link.Prefix = "edge_injury_decoy"
	s.Batches = append(s.Batches, second)
	s.Rules.Release.Batches = []string{"glutamate"}
	s.Rules.Effect.Batches = []string{"decoy"}

	g, err := NewGenerator(s, Options{Seed: 1})
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	graph, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, e := range graph.Edges() {
		switch e.Type {
		case model.EdgeReleases:
			if e.Target != "glutamate_0" {
				t.Errorf("Release edge %s targets a batch outside the rule", e.ID)
			}
		case model.EdgeAffects:
			if e.Source != "decoy_0" {
				t.Errorf("Effect edge %s comes from a batch outside the rule", e.ID)
			}
		}
	}
}
