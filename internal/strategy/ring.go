package strategy

import (
	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/profile"
)

// RingShortcut lays ranked nodes on a directed ring and gives every node but
// the head a shortcut back to the head.
//
// Ring edges carry weight 1. The shortcut from rank i weighs i*scale/N, so a
// walk that has wandered further from the head is pulled back harder. The
// last node's ring successor is the head itself; there the shortcut weight
// replaces the ring weight and the node keeps a single edge.
type RingShortcut struct {
	scale float64
}

// NewRingShortcut returns the ring strategy with shortcut scale p.
func NewRingShortcut(scale float64) *RingShortcut {
	return &RingShortcut{scale: scale}
}

func (r *RingShortcut) Name() string { return "ring_shortcut" }

func (r *RingShortcut) Build(p *profile.Profile) (graph.Graph, error) {
	n := p.Size()
	if n < 2 {
		return nil, ErrTooFewNodes
	}
	ranked := p.Ranked()
	head := ranked[0]

	g := graph.New(n)
	for i, id := range ranked {
		g.SetEdge(id, ranked[(i+1)%n], 1)
		if i > 0 {
			g.SetEdge(id, head, float64(i)*r.scale/float64(n))
		}
	}
	return g, nil
}
