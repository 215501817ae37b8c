package graph

import "sort"

// MaxWeight is the largest edge weight the evaluator accepts.
const MaxWeight = 10.0

// NodeID identifies one node of the fixed universe 0..N-1.
type NodeID int

// Edges maps a destination node to its relative transition weight.
type Edges map[NodeID]float64

// Graph maps every source node to its outgoing edge set.
// Weights are relative; the evaluator normalizes them per node.
type Graph map[NodeID]Edges

// New allocates a graph with an empty edge set for every node in 0..n-1.
func New(n int) Graph {
	g := make(Graph, n)
	for i := 0; i < n; i++ {
		g[NodeID(i)] = make(Edges)
	}
	return g
}

// SetEdge records from→to with weight w, replacing any existing weight.
func (g Graph) SetEdge(from, to NodeID, w float64) {
	es, ok := g[from]
	if !ok {
		es = make(Edges)
		g[from] = es
	}
	es[to] = w
}

// NodeCount returns the number of source keys.
func (g Graph) NodeCount() int {
	return len(g)
}

// EdgeCount returns the sum of all outgoing edge-set sizes.
func (g Graph) EdgeCount() int {
	total := 0
	for _, es := range g {
		total += len(es)
	}
	return total
}

// OutDegree returns the size of n's outgoing edge set (0 if n is absent).
func (g Graph) OutDegree(n NodeID) int {
	return len(g[n])
}

// Nodes returns the source keys in ascending order.
func (g Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Targets returns the destinations of n in ascending order.
func (g Graph) Targets(n NodeID) []NodeID {
	es := g[n]
	ids := make([]NodeID, 0, len(es))
	for id := range es {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for src, es := range g {
		cp := make(Edges, len(es))
		for dst, w := range es {
			cp[dst] = w
		}
		out[src] = cp
	}
	return out
}
