// Package analysis runs the generation pipeline and summarizes its result.
package analysis

import (
	"maps"
	"slices"

	"github.com/ritzau/neurograph/pkg/cycles"
	"github.com/ritzau/neurograph/pkg/graph"
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/ritzau/neurograph/pkg/synth"
)

// Summary describes the structure of one generated graph
type Summary struct {
	Scenario  string `json:"scenario"`
	Epicenter string `json:"epicenter"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`

	NodesByType     map[model.NodeType]int `json:"nodes_by_type"`
	SecondaryByKind map[string]int         `json:"secondary_by_category"`
	EdgesByType     map[model.EdgeType]int `json:"edges_by_type"`

	AffectedRadius float64  `json:"affected_radius"`
	Affected       []string `json:"affected"` // Populations strictly within the affected radius
	Unaffected     []string `json:"unaffected"`

	Links int   `json:"links"` // Distinct ordered node pairs joined by at least one edge
	Hubs  []Hub `json:"hubs"`  // Best connected nodes, most neighbours first

	Loops       []LoopSummary `json:"loops"`
	LargestLoop int           `json:"largest_loop"`

	Reach       int                    `json:"reach"` // Nodes reachable from the epicenter
	ReachByType map[model.NodeType]int `json:"reach_by_type"`
}

// Hub is a node with many distinct neighbours
type Hub struct {
	ID        string `json:"id"`
	OutDegree int    `json:"out_degree"`
	InDegree  int    `json:"in_degree"`
}

const hubCount = 5

// LoopSummary is a feedback loop without its full member list
type LoopSummary struct {
	Populations []string `json:"populations"`
	Secondaries int      `json:"secondaries"`
	Size        int      `json:"size"`
}

// Summarize inspects g, which must have been generated from s
func Summarize(g *model.Graph, s *scenario.Scenario) *Summary {
	return summarize(g, s, graph.NewNetwork(g))
}

func summarize(g *model.Graph, s *scenario.Scenario, network *graph.Network) *Summary {
	summary := &Summary{
		Scenario:        s.Name,
		Epicenter:       s.Epicenter,
		Nodes:           g.NodeCount(),
		Edges:           g.EdgeCount(),
		NodesByType:     make(map[model.NodeType]int),
		SecondaryByKind: make(map[string]int),
		EdgesByType:     make(map[model.EdgeType]int),
		AffectedRadius:  s.Rules.AffectedRadius,
		Affected:        []string{},
		Unaffected:      []string{},
		Hubs:            []Hub{},
		Loops:           []LoopSummary{},
	}

	var populations []model.Node
	var epicenter model.Position
	for _, n := range g.Nodes() {
		summary.NodesByType[n.Type()]++
		switch attrs := n.Attrs.(type) {
		case model.SecondaryAttributes:
			summary.SecondaryByKind[attrs.Category]++
		case model.PopulationAttributes:
			populations = append(populations, n)
		}
		if n.ID == s.Epicenter {
			epicenter = n.Position
		}
	}
	for _, e := range g.Edges() {
		summary.EdgesByType[e.Type]++
	}

	affected := synth.Affected(populations, epicenter, s.Rules.AffectedRadius)
	for _, p := range populations {
		if affected.Contains(p.ID) {
			summary.Affected = append(summary.Affected, p.ID)
		} else {
			summary.Unaffected = append(summary.Unaffected, p.ID)
		}
	}

	summary.Links = len(network.Edges())
	summary.Hubs = hubs(network)

	for _, loop := range cycles.FindFeedbackLoops(network) {
		summary.Loops = append(summary.Loops, LoopSummary{
			Populations: loop.Populations,
			Secondaries: loop.Secondaries,
			Size:        len(loop.Members),
		})
		summary.LargestLoop = max(summary.LargestLoop, len(loop.Members))
	}

	summary.ReachByType = network.ReachableByType(s.Epicenter)
	for _, n := range summary.ReachByType {
		summary.Reach += n
	}

	return summary
}

// hubs ranks nodes by distinct neighbours; ties keep model order
func hubs(network *graph.Network) []Hub {
	var all []Hub
	for id := range int64(network.Len()) {
		name := network.Name(id)
		hub := Hub{ID: name, OutDegree: network.OutDegree(name), InDegree: network.InDegree(name)}
		if hub.OutDegree+hub.InDegree > 0 {
			all = append(all, hub)
		}
	}
	slices.SortStableFunc(all, func(a, b Hub) int {
		return (b.OutDegree + b.InDegree) - (a.OutDegree + a.InDegree)
	})
	if len(all) > hubCount {
		all = all[:hubCount]
	}
	return append([]Hub{}, all...)
}

// Categories returns the secondary categories in sorted order
func (s *Summary) Categories() []string {
	return slices.Sorted(maps.Keys(s.SecondaryByKind))
}
