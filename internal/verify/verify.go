// Package verify checks a candidate graph against the structural constraints.
//
// Check never fails: it reports. Every check runs and every violation is
// listed, so an operator sees all problems of a candidate in one pass.
package verify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
)

// Kind names the rule a violation breaks. Kinds are listed in report order.
type Kind string

const (
	KindTotalEdges   Kind = "total_edges"
	KindNodeCount    Kind = "node_count"
	KindMissingNode  Kind = "missing_node"
	KindUnknownNode  Kind = "unknown_node"
	KindNodeDegree   Kind = "node_degree"
	KindEdgeWeight   Kind = "edge_weight"
	KindDanglingEdge Kind = "dangling_edge"
)

var kindOrder = map[Kind]int{
	KindTotalEdges:   0,
	KindNodeCount:    1,
	KindMissingNode:  2,
	KindUnknownNode:  3,
	KindNodeDegree:   4,
	KindEdgeWeight:   5,
	KindDanglingEdge: 6,
}

// Violation is one broken constraint. Node and Target are set when the
// violation concerns a node or an edge.
type Violation struct {
	Kind    Kind          `json:"kind"`
	Node    *graph.NodeID `json:"node,omitempty"`
	Target  *graph.NodeID `json:"target,omitempty"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Kind, v.Message)
}

// Report is the verdict for one graph.
type Report struct {
	Valid        bool        `json:"valid"`
	NodeCount    int         `json:"node_count"`
	TotalEdges   int         `json:"total_edges"`
	MaxOutDegree int         `json:"max_out_degree"`
	Violations   []Violation `json:"violations"`
}

// Kinds returns how many violations of each kind the report holds.
func (r *Report) Kinds() map[Kind]int {
	out := make(map[Kind]int)
	for _, v := range r.Violations {
		out[v.Kind]++
	}
	return out
}

// String renders the report for a human operator.
func (r *Report) String() string {
	var b strings.Builder
	verdict := "VALID"
	if !r.Valid {
		verdict = "INVALID"
	}
	fmt.Fprintf(&b, "verification: %s (nodes=%d edges=%d max_out_degree=%d)\n",
		verdict, r.NodeCount, r.TotalEdges, r.MaxOutDegree)
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "  - %s\n", v)
	}
	return b.String()
}

// Check verifies g against c.
func Check(g graph.Graph, c config.Constraints) *Report {
	r := &Report{
		NodeCount:  g.NodeCount(),
		TotalEdges: g.EdgeCount(),
	}
	inUniverse := func(id graph.NodeID) bool { return id >= 0 && int(id) < c.NumNodes }

	if r.TotalEdges > c.MaxTotalEdges {
		r.add(Violation{
			Kind:    KindTotalEdges,
			Message: fmt.Sprintf("graph has %d edges, exceeding limit of %d", r.TotalEdges, c.MaxTotalEdges),
		})
	}

	if r.NodeCount != c.NumNodes {
		r.add(Violation{
			Kind:    KindNodeCount,
			Message: fmt.Sprintf("graph has %d nodes, should have %d", r.NodeCount, c.NumNodes),
		})
	}
	for i := 0; i < c.NumNodes; i++ {
		id := graph.NodeID(i)
		if _, ok := g[id]; !ok {
			r.add(Violation{Kind: KindMissingNode, Node: ptr(id), Message: fmt.Sprintf("node %d is missing", id)})
		}
	}

	for _, src := range g.Nodes() {
		if !inUniverse(src) {
			r.add(Violation{
				Kind:    KindUnknownNode,
				Node:    ptr(src),
				Message: fmt.Sprintf("node %d is outside the universe 0..%d", src, c.NumNodes-1),
			})
		}
		deg := g.OutDegree(src)
		if deg > r.MaxOutDegree {
			r.MaxOutDegree = deg
		}
		if deg > c.MaxEdgesPerNode {
			r.add(Violation{
				Kind:    KindNodeDegree,
				Node:    ptr(src),
				Message: fmt.Sprintf("node %d has %d edges, exceeding limit of %d", src, deg, c.MaxEdgesPerNode),
			})
		}
		for _, dst := range g.Targets(src) {
			w := g[src][dst]
			if math.IsNaN(w) || w <= 0 || w > graph.MaxWeight {
				r.add(Violation{
					Kind:    KindEdgeWeight,
					Node:    ptr(src),
					Target:  ptr(dst),
					Message: fmt.Sprintf("edge %d -> %d has invalid weight %g", src, dst, w),
				})
			}
			if !inUniverse(dst) {
				r.add(Violation{
					Kind:    KindDanglingEdge,
					Node:    ptr(src),
					Target:  ptr(dst),
					Message: fmt.Sprintf("edge %d -> %d points outside the universe", src, dst),
				})
			}
		}
	}

	sort.SliceStable(r.Violations, func(i, j int) bool {
		a, b := r.Violations[i], r.Violations[j]
		if kindOrder[a.Kind] != kindOrder[b.Kind] {
			return kindOrder[a.Kind] < kindOrder[b.Kind]
		}
		if na, nb := deref(a.Node), deref(b.Node); na != nb {
			return na < nb
		}
		return deref(a.Target) < deref(b.Target)
	})
	r.Valid = len(r.Violations) == 0
	return r
}

func (r *Report) add(v Violation) {
	r.Violations = append(r.Violations, v)
}

func ptr(id graph.NodeID) *graph.NodeID { return &id }

func deref(id *graph.NodeID) graph.NodeID {
	if id == nil {
		return -1
	}
	return *id
}
