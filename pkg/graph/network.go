// Package graph indexes a generated network as a gonum directed graph for
// structural queries: neighbours, degrees, and reachability.
package graph

import (
	"cmp"
	"slices"

	"github.com/ritzau/neurograph/pkg/model"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// Network is a directed view of a model.Graph. Parallel edges between the same
// ordered pair collapse into one gonum edge.
type Network struct {
	graph *simple.DirectedGraph
	nodes []model.Node        // gonum ID -> node; IDs follow model order
	ids   map[string]int64    // node ID -> gonum ID
	types map[int64]EdgeKinds // source gonum ID -> edge types leaving it
}

// EdgeKinds is the set of edge types seen on a node's outgoing edges
type EdgeKinds map[model.EdgeType]int

// NewNetwork indexes g. Nodes keep their model order as gonum IDs.
func NewNetwork(g *model.Graph) *Network {
	nodes := g.Nodes()
	n := &Network{
		graph: simple.NewDirectedGraph(),
		nodes: nodes,
		ids:   make(map[string]int64, len(nodes)),
		types: make(map[int64]EdgeKinds),
	}

	for i, node := range nodes {
		id := int64(i)
		n.ids[node.ID] = id
		n.graph.AddNode(simple.Node(id))
	}

	for _, e := range g.Edges() {
		// Builder guarantees both endpoints exist
		from, to := n.ids[e.Source], n.ids[e.Target]
		if from == to {
			continue
		}
		if !n.graph.HasEdgeFromTo(from, to) {
			n.graph.SetEdge(n.graph.NewEdge(simple.Node(from), simple.Node(to)))
		}
		kinds := n.types[from]
		if kinds == nil {
			kinds = make(EdgeKinds)
			n.types[from] = kinds
		}
		kinds[e.Type]++
	}

	return n
}

// Graph returns the underlying directed graph
func (n *Network) Graph() *simple.DirectedGraph {
	return n.graph
}

// ID returns the gonum ID of a node
func (n *Network) ID(name string) (int64, bool) {
	id, ok := n.ids[name]
	return id, ok
}

// Node returns the model node behind a gonum ID
func (n *Network) Node(id int64) (model.Node, bool) {
	if id < 0 || id >= int64(len(n.nodes)) {
		return model.Node{}, false
	}
	return n.nodes[id], true
}

// Name returns the node ID behind a gonum ID, or "" when unknown
func (n *Network) Name(id int64) string {
	node, ok := n.Node(id)
	if !ok {
		return ""
	}
	return node.ID
}

// Len returns the number of nodes
func (n *Network) Len() int {
	return len(n.nodes)
}

// Successors returns the distinct targets of a node's outgoing edges, in model order
func (n *Network) Successors(name string) []string {
	id, ok := n.ids[name]
	if !ok {
		return nil
	}
	return n.names(n.graph.From(id))
}

// Predecessors returns the distinct sources of a node's incoming edges, in model order
func (n *Network) Predecessors(name string) []string {
	id, ok := n.ids[name]
	if !ok {
		return nil
	}
	return n.names(n.graph.To(id))
}

func (n *Network) names(it gonum.Nodes) []string {
	ids := make([]int64, 0, it.Len())
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = n.nodes[id].ID
	}
	return names
}

// OutDegree returns the number of distinct successors
func (n *Network) OutDegree(name string) int {
	id, ok := n.ids[name]
	if !ok {
		return 0
	}
	return n.graph.From(id).Len()
}

// InDegree returns the number of distinct predecessors
func (n *Network) InDegree(name string) int {
	id, ok := n.ids[name]
	if !ok {
		return 0
	}
	return n.graph.To(id).Len()
}

// OutgoingKinds returns how many edges of each type leave a node
func (n *Network) OutgoingKinds(name string) EdgeKinds {
	id, ok := n.ids[name]
	if !ok {
		return nil
	}
	kinds := make(EdgeKinds, len(n.types[id]))
	for k, v := range n.types[id] {
		kinds[k] = v
	}
	return kinds
}

// Reachable returns every node reachable from start, excluding start, in model order
func (n *Network) Reachable(start string) []string {
	id, ok := n.ids[start]
	if !ok {
		return nil
	}

	var reached []int64
	bf := traverse.BreadthFirst{
		Visit: func(v gonum.Node) {
			if v.ID() != id {
				reached = append(reached, v.ID())
			}
		},
	}
	bf.Walk(n.graph, simple.Node(id), nil)

	slices.Sort(reached)
	names := make([]string, len(reached))
	for i, r := range reached {
		names[i] = n.nodes[r].ID
	}
	return names
}

// ReachableByType counts the nodes reachable from start per node type
func (n *Network) ReachableByType(start string) map[model.NodeType]int {
	counts := make(map[model.NodeType]int)
	for _, name := range n.Reachable(start) {
		node := n.nodes[n.ids[name]]
		counts[node.Type()]++
	}
	return counts
}

// Edges returns the distinct edges as [source, target] pairs, ordered by source then target
func (n *Network) Edges() [][2]string {
	var pairs [][2]int64
	it := n.graph.Edges()
	for it.Next() {
		e := it.Edge()
		pairs = append(pairs, [2]int64{e.From().ID(), e.To().ID()})
	}
	slices.SortFunc(pairs, func(a, b [2]int64) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})

	edges := make([][2]string, len(pairs))
	for i, p := range pairs {
		edges[i] = [2]string{n.nodes[p[0]].ID, n.nodes[p[1]].ID}
	}
	return edges
}
