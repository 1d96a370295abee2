package cycles

import (
	"slices"

	"gonum.org/v1/gonum/graph"
)

// TarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes and successors are visited in ascending ID order, so the result is the
// same for every run over the same graph.
type TarjanSCC struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

// frame is one suspended strongConnect call
type frame struct {
	node       int64
	successors []int64
	next       int
}

// NewTarjanSCC creates a new Tarjan SCC finder
func NewTarjanSCC(g graph.Directed) *TarjanSCC {
	return &TarjanSCC{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// FindSCCs returns every component with more than one node. Members of each
// component are sorted by ID.
func (t *TarjanSCC) FindSCCs() [][]int64 {
	for _, id := range sortedIDs(t.graph.Nodes()) {
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

// strongConnect runs Tarjan's depth-first search from root with an explicit
// stack, so long chains of secondary nodes cannot exhaust the goroutine stack
func (t *TarjanSCC) strongConnect(root int64) {
	call := []frame{t.enter(root)}

	for len(call) > 0 {
		top := &call[len(call)-1]

		if top.next < len(top.successors) {
			succ := top.successors[top.next]
			top.next++

			if _, visited := t.indices[succ]; !visited {
				call = append(call, t.enter(succ))
			} else if t.onStack[succ] {
				t.lowLink[top.node] = min(t.lowLink[top.node], t.indices[succ])
			}
			continue
		}

		node := top.node
		call = call[:len(call)-1]
		if len(call) > 0 {
			parent := call[len(call)-1].node
			t.lowLink[parent] = min(t.lowLink[parent], t.lowLink[node])
		}

		if t.lowLink[node] == t.indices[node] {
			t.pop(node)
		}
	}
}

func (t *TarjanSCC) enter(node int64) frame {
	t.indices[node] = t.index
	t.lowLink[node] = t.index
	t.index++
	t.stack = append(t.stack, node)
	t.onStack[node] = true
	return frame{node: node, successors: sortedIDs(t.graph.From(node))}
}

// pop removes the component rooted at root from the stack
func (t *TarjanSCC) pop(root int64) {
	var scc []int64
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == root {
			break
		}
	}
	// Single nodes are not cycles
	if len(scc) > 1 {
		slices.Sort(scc)
		t.sccs = append(t.sccs, scc)
	}
}

func sortedIDs(it graph.Nodes) []int64 {
	ids := make([]int64, 0, it.Len())
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}
