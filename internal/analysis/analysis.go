// Package analysis estimates how well a layout serves the frequent targets.
//
// The figures are advisory: they compare the initial graph with a candidate
// and never change a verification verdict.
package analysis

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/profile"
)

// Options bounds the analysis.
type Options struct {
	TopTargets int // frequent targets to measure
	MaxNodes   int // skip graphs larger than this
}

// Steps is an expected walk length. +Inf means some start never reaches the
// target; NaN means not measured. Both encode as JSON null.
type Steps float64

func (s Steps) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (s Steps) String() string {
	f := float64(s)
	switch {
	case math.IsNaN(f):
		return "-"
	case math.IsInf(f, 1):
		return "unreachable"
	default:
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
}

// TargetSteps is the expected walk length to one target.
type TargetSteps struct {
	Target graph.NodeID `json:"target"`
	Count  int          `json:"count"`
	Steps  Steps        `json:"steps"`
}

// Result summarizes one graph.
type Result struct {
	Skipped           bool          `json:"skipped"`
	Components        int           `json:"components"`
	StronglyConnected bool          `json:"strongly_connected"`
	Targets           []TargetSteps `json:"targets"`
	WeightedSteps     Steps         `json:"weighted_steps"`
}

func (r *Result) String() string {
	if r.Skipped {
		return "analysis skipped"
	}
	return fmt.Sprintf("components=%d strongly_connected=%t weighted_steps=%s",
		r.Components, r.StronglyConnected, r.WeightedSteps)
}

// Analyze measures g over the universe of p. Edges leaving the universe and
// edges with unusable weights are ignored.
func Analyze(g graph.Graph, p *profile.Profile, opts Options) *Result {
	n := p.Size()
	if n == 0 || (opts.MaxNodes > 0 && n > opts.MaxNodes) {
		return &Result{Skipped: true}
	}

	dg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		dg.AddNode(simple.Node(i))
	}
	for src, es := range g {
		for dst, w := range es {
			if !usable(src, dst, w, n) || src == dst {
				continue
			}
			dg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(src), T: simple.Node(dst), W: w})
		}
	}
	sccs := topo.TarjanSCC(dg)

	res := &Result{
		Components:        len(sccs),
		StronglyConnected: len(sccs) == 1,
	}

	P := transitions(g, n)
	var steps, weights []float64
	for _, t := range p.Top(opts.TopTargets) {
		s := hittingTime(P, dg, t, n)
		res.Targets = append(res.Targets, TargetSteps{Target: t, Count: p.Count(t), Steps: Steps(s)})
		steps = append(steps, s)
		weights = append(weights, float64(p.Count(t)))
	}
	res.WeightedSteps = Steps(weightedMean(steps, weights))
	return res
}

// transitions returns the row-normalized transition matrix. Self-loops stay:
// they lengthen walks.
func transitions(g graph.Graph, n int) *mat.Dense {
	P := mat.NewDense(n, n, nil)
	for src, es := range g {
		if src < 0 || int(src) >= n {
			continue
		}
		var sum float64
		for dst, w := range es {
			if usable(src, dst, w, n) {
				sum += w
			}
		}
		if sum == 0 {
			continue
		}
		for dst, w := range es {
			if usable(src, dst, w, n) {
				P.Set(int(src), int(dst), w/sum)
			}
		}
	}
	return P
}

// hittingTime returns the expected steps to reach t from a uniformly random
// start, solving (I - Q) h = 1 where Q is P without t's row and column.
func hittingTime(P *mat.Dense, dg *simple.WeightedDirectedGraph, t graph.NodeID, n int) float64 {
	// In a finite chain t is hit almost surely iff every node can reach it.
	for i := 0; i < n; i++ {
		if graph.NodeID(i) != t && !topo.PathExistsIn(dg, simple.Node(i), simple.Node(t)) {
			return math.Inf(1)
		}
	}

	idx := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if graph.NodeID(i) != t {
			idx = append(idx, i)
		}
	}
	m := len(idx)
	if m == 0 {
		return 0
	}
	A := mat.NewDense(m, m, nil)
	for r, i := range idx {
		for c, j := range idx {
			v := -P.At(i, j)
			if r == c {
				v += 1
			}
			A.Set(r, c, v)
		}
	}
	ones := mat.NewVecDense(m, nil)
	for r := 0; r < m; r++ {
		ones.SetVec(r, 1)
	}
	var h mat.VecDense
	if err := h.SolveVec(A, ones); err != nil {
		return math.Inf(1)
	}
	all := make([]float64, 0, n)
	all = append(all, 0) // starting on t itself
	all = append(all, h.RawVector().Data...)
	return stat.Mean(all, nil)
}

// weightedMean weights steps by query count, falling back to a plain mean
// when no target was ever queried.
func weightedMean(steps, weights []float64) float64 {
	if len(steps) == 0 {
		return 0
	}
	for _, s := range steps {
		if math.IsInf(s, 1) {
			return math.Inf(1)
		}
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return stat.Mean(steps, nil)
	}
	return stat.Mean(steps, weights)
}

func usable(src, dst graph.NodeID, w float64, n int) bool {
	return dst >= 0 && int(dst) < n && src >= 0 && int(src) < n && !math.IsNaN(w) && w > 0
}
