package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvariant marks an internal defect: a duplicate id or an edge pointing at a
// node that does not exist. It is never caused by user configuration.
var ErrInvariant = errors.New("graph invariant violated")

// Graph is the synthesized network. It is produced by a Builder and cannot be
// changed afterwards; accessors hand out copies.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[string]int // node ID -> position in nodes
}

// Nodes returns the nodes in creation order
func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

// Edges returns the edges in creation order
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Node looks up a node by ID
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// IncidentEdges returns all edges that start or end at the given node
func (g *Graph) IncidentEdges(id string) []Edge {
	var result []Edge
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			result = append(result, e)
		}
	}
	return result
}

// Builder accumulates nodes and edges while enforcing the graph invariants.
// All nodes must be added before the edges that reference them.
type Builder struct {
	nodes   []Node
	edges   []Edge
	index   map[string]int
	edgeIDs map[string]struct{}
	built   bool
}

// NewBuilder creates a builder sized for the expected number of nodes and edges
func NewBuilder(nodeHint, edgeHint int) *Builder {
	return &Builder{
		nodes:   make([]Node, 0, nodeHint),
		edges:   make([]Edge, 0, edgeHint),
		index:   make(map[string]int, nodeHint),
		edgeIDs: make(map[string]struct{}, edgeHint),
	}
}

// AddNode appends a node. Duplicate IDs and nodes without attributes are rejected.
func (b *Builder) AddNode(n Node) error {
	if b.built {
		return fmt.Errorf("%w: builder already produced a graph", ErrInvariant)
	}
	if n.ID == "" {
		return fmt.Errorf("%w: node without id", ErrInvariant)
	}
	if n.Attrs == nil {
		return fmt.Errorf("%w: node %q has no attributes", ErrInvariant, n.ID)
	}
	if _, exists := b.index[n.ID]; exists {
		return fmt.Errorf("%w: duplicate node id %q", ErrInvariant, n.ID)
	}
	b.index[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return nil
}

// AddNodes appends nodes in order, stopping at the first error
func (b *Builder) AddNodes(nodes []Node) error {
	for _, n := range nodes {
		if err := b.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

// AddEdge appends an edge. Both endpoints must already exist and the ID must be new.
func (b *Builder) AddEdge(e Edge) error {
	if b.built {
		return fmt.Errorf("%w: builder already produced a graph", ErrInvariant)
	}
	if _, exists := b.edgeIDs[e.ID]; exists {
		return fmt.Errorf("%w: duplicate edge id %q", ErrInvariant, e.ID)
	}
	if _, ok := b.index[e.Source]; !ok {
		return fmt.Errorf("%w: edge %q references unknown source %q", ErrInvariant, e.ID, e.Source)
	}
	if _, ok := b.index[e.Target]; !ok {
		return fmt.Errorf("%w: edge %q references unknown target %q", ErrInvariant, e.ID, e.Target)
	}
	if e.Strength != nil && *e.Strength < 0 {
		return fmt.Errorf("%w: edge %q has negative strength", ErrInvariant, e.ID)
	}
	b.edgeIDs[e.ID] = struct{}{}
	b.edges = append(b.edges, e)
	return nil
}

// AddEdges appends edges in order, stopping at the first error
func (b *Builder) AddEdges(edges []Edge) error {
	for _, e := range edges {
		if err := b.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the finished graph. The builder cannot be used afterwards.
func (b *Builder) Build() *Graph {
	b.built = true
	return &Graph{
		nodes: b.nodes,
		edges: b.edges,
		index: b.index,
	}
}
