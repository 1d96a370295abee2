// Package cycles finds feedback loops in a generated network. A loop is a
// strongly connected component, typically a population that releases a
// secondary entity which in turn affects the population.
package cycles

import (
	"cmp"
	"slices"

	"github.com/ritzau/neurograph/pkg/graph"
	"github.com/ritzau/neurograph/pkg/model"
)

// FeedbackLoop is one strongly connected component of the network
type FeedbackLoop struct {
	Members     []string // Node IDs in model order
	Populations []string // Population members in model order
	Secondaries int      // Number of secondary members
}

// FindFeedbackLoops returns the loops of the network ordered by their first member
func FindFeedbackLoops(n *graph.Network) []FeedbackLoop {
	sccs := NewTarjanSCC(n.Graph()).FindSCCs()

	// Component IDs are sorted, so the first one is the earliest member
	slices.SortFunc(sccs, func(a, b []int64) int {
		return cmp.Compare(a[0], b[0])
	})

	loops := make([]FeedbackLoop, 0, len(sccs))
	for _, scc := range sccs {
		loop := FeedbackLoop{Members: make([]string, 0, len(scc))}
		for _, id := range scc {
			node, ok := n.Node(id)
			if !ok {
				continue
			}
			loop.Members = append(loop.Members, node.ID)
			switch node.Type() {
			case model.NodeTypePopulation:
				loop.Populations = append(loop.Populations, node.ID)
			case model.NodeTypeSecondary:
				loop.Secondaries++
			}
		}
		loops = append(loops, loop)
	}
	return loops
}
