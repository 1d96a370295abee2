package export

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Diff lists what changed between two documents. Nodes and edges are
// matched by id.
type Diff struct {
	AddedNodes    []string `json:"added_nodes"`
	RemovedNodes  []string `json:"removed_nodes"`
	ModifiedNodes []string `json:"modified_nodes"` // Same id, different position or data
	AddedEdges    []string `json:"added_edges"`
	RemovedEdges  []string `json:"removed_edges"`
	Full          bool     `json:"full"` // No previous document; everything is new
}

// Empty reports whether nothing changed
func (d *Diff) Empty() bool {
	return !d.Full &&
		len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}

// String renders the change counts, e.g. "+3 -1 ~2 nodes, +4 -0 edges"
func (d *Diff) String() string {
	if d.Full {
		return fmt.Sprintf("%d nodes, %d edges (new)", len(d.AddedNodes), len(d.AddedEdges))
	}
	return fmt.Sprintf("+%d -%d ~%d nodes, +%d -%d edges",
		len(d.AddedNodes), len(d.RemovedNodes), len(d.ModifiedNodes),
		len(d.AddedEdges), len(d.RemovedEdges))
}

// Compare computes the diff from prev to next. A nil prev yields a full diff.
// All id lists are sorted.
func Compare(prev, next *Document) *Diff {
	nextNodes := indexNodes(next)
	nextEdges := indexEdges(next)

	if prev == nil {
		return &Diff{
			AddedNodes:    slices.Sorted(maps.Keys(nextNodes)),
			RemovedNodes:  []string{},
			ModifiedNodes: []string{},
			AddedEdges:    slices.Sorted(maps.Keys(nextEdges)),
			RemovedEdges:  []string{},
			Full:          true,
		}
	}

	prevNodes := indexNodes(prev)
	prevEdges := indexEdges(prev)

	d := &Diff{
		AddedNodes:    []string{},
		RemovedNodes:  []string{},
		ModifiedNodes: []string{},
		AddedEdges:    []string{},
		RemovedEdges:  []string{},
	}

	for id, n := range nextNodes {
		old, ok := prevNodes[id]
		switch {
		case !ok:
			d.AddedNodes = append(d.AddedNodes, id)
		case !nodesEqual(old, n):
			d.ModifiedNodes = append(d.ModifiedNodes, id)
		}
	}
	for id := range prevNodes {
		if _, ok := nextNodes[id]; !ok {
			d.RemovedNodes = append(d.RemovedNodes, id)
		}
	}

	for key := range nextEdges {
		if _, ok := prevEdges[key]; !ok {
			d.AddedEdges = append(d.AddedEdges, key)
		}
	}
	for key := range prevEdges {
		if _, ok := nextEdges[key]; !ok {
			d.RemovedEdges = append(d.RemovedEdges, key)
		}
	}

	slices.Sort(d.AddedNodes)
	slices.Sort(d.RemovedNodes)
	slices.Sort(d.ModifiedNodes)
	slices.Sort(d.AddedEdges)
	slices.Sort(d.RemovedEdges)
	return d
}

func indexNodes(doc *Document) map[string]NodeElement {
	nodes := make(map[string]NodeElement, len(doc.Elements.Nodes))
	for _, n := range doc.Elements.Nodes {
		nodes[fmt.Sprint(n.Data["id"])] = n
	}
	return nodes
}

func indexEdges(doc *Document) map[string]EdgeElement {
	edges := make(map[string]EdgeElement, len(doc.Elements.Edges))
	for _, e := range doc.Elements.Edges {
		edges[edgeKey(e)] = e
	}
	return edges
}

func edgeKey(e EdgeElement) string {
	return fmt.Sprintf("%v|%v|%v", e.Data["source"], e.Data["target"], e.Data["edge_type"])
}

func nodesEqual(a, b NodeElement) bool {
	return a.Position == b.Position && reflect.DeepEqual(a.Data, b.Data)
}
