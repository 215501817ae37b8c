// Package profile counts how often each node was the target of a query.
package profile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/results"
)

// ErrTargetOutOfRange is returned for a query whose target is not in 0..N-1.
var ErrTargetOutOfRange = errors.New("profile: target outside node universe")

// Profile holds per-node counts over the full universe; index = NodeID.
type Profile struct {
	Counts    []int // queries targeting the node
	Successes []int // successful queries targeting the node
	Visits    []int // appearances on recorded paths
}

// Build profiles log over the universe 0..n-1.
func Build(n int, log *results.Log) (*Profile, error) {
	p := &Profile{
		Counts:    make([]int, n),
		Successes: make([]int, n),
		Visits:    make([]int, n),
	}
	for i, q := range log.Queries {
		if q.Target < 0 || int(q.Target) >= n {
			return nil, fmt.Errorf("query %d target %d: %w", i, q.Target, ErrTargetOutOfRange)
		}
		p.Counts[q.Target]++
		if q.Success {
			p.Successes[q.Target]++
		}
		for _, v := range q.Path {
			if v >= 0 && int(v) < n {
				p.Visits[v]++
			}
		}
	}
	return p, nil
}

// Size returns the universe size.
func (p *Profile) Size() int {
	return len(p.Counts)
}

// Count returns how often id was queried.
func (p *Profile) Count(id graph.NodeID) int {
	return p.Counts[id]
}

// Total returns the number of profiled queries.
func (p *Profile) Total() int {
	total := 0
	for _, c := range p.Counts {
		total += c
	}
	return total
}

// Ranked orders the universe by descending count, ties by ascending NodeID.
func (p *Profile) Ranked() []graph.NodeID {
	ids := make([]graph.NodeID, len(p.Counts))
	for i := range ids {
		ids[i] = graph.NodeID(i)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := p.Counts[ids[i]], p.Counts[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Top returns the first k ranked nodes (fewer if the universe is smaller).
func (p *Profile) Top(k int) []graph.NodeID {
	if k <= 0 {
		return nil
	}
	ranked := p.Ranked()
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
