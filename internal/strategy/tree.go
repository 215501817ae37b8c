package strategy

import (
	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/profile"
)

// HeapTree lays ranked nodes out as a binary heap rooted at the most queried
// node. Walks flow down towards children in proportion to their query counts,
// leaves return to the root, and inner nodes below the root carry a back edge
// to it weighted i*scale/N.
//
// Out-degree reaches 3, so it needs max_edges_per_node >= 3.
type HeapTree struct {
	scale float64
}

// NewHeapTree returns the heap layout with back-edge scale q.
func NewHeapTree(scale float64) *HeapTree {
	return &HeapTree{scale: scale}
}

func (h *HeapTree) Name() string { return "heap_tree" }

func (h *HeapTree) Build(p *profile.Profile) (graph.Graph, error) {
	n := p.Size()
	if n < 2 {
		return nil, ErrTooFewNodes
	}
	ranked := p.Ranked()
	root := ranked[0]

	g := graph.New(n)
	for i, id := range ranked {
		left, right := 2*i+1, 2*i+2
		switch {
		case right < n:
			// Add-one smoothing keeps zero-count children reachable.
			fl := float64(p.Count(ranked[left]) + 1)
			fr := float64(p.Count(ranked[right]) + 1)
			g.SetEdge(id, ranked[left], fl/(fl+fr))
			g.SetEdge(id, ranked[right], fr/(fl+fr))
		case left < n:
			g.SetEdge(id, ranked[left], 1)
		default:
			g.SetEdge(id, root, 1)
			continue
		}
		if i > 0 {
			g.SetEdge(id, root, float64(i)*h.scale/float64(n))
		}
	}
	return g, nil
}
