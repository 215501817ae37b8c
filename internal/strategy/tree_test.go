package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/strategy"
)

func TestHeapTree_Layout(t *testing.T) {
	// Ranked: [0(9), 1(3), 2(1), 3(0), 4(0)].
	// Heap: 0 -> {1, 2}; 1 -> {3, 4}; 2, 3, 4 are leaves.
	g, err := strategy.NewHeapTree(0.5).Build(profileOf(9, 3, 1, 0, 0))
	require.NoError(t, err)

	want := graph.Graph{
		0: {1: 4.0 / 6.0, 2: 2.0 / 6.0},
		1: {3: 0.5, 4: 0.5, 0: 1 * 0.5 / 5},
		2: {0: 1},
		3: {0: 1},
		4: {0: 1},
	}
	require.Equal(t, len(want), len(g))
	for src, es := range want {
		require.Len(t, g[src], len(es), "node %d", src)
		for dst, w := range es {
			assert.InDelta(t, w, g[src][dst], 1e-12, "edge %d -> %d", src, dst)
		}
	}
}

func TestHeapTree_SingleChild(t *testing.T) {
	// Four nodes: position 1 has only a left child (position 3).
	g, err := strategy.NewHeapTree(0.7).Build(profileOf(4, 3, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, g[1][3])
	assert.InDelta(t, 0.7/4, g[1][0], 1e-12)
	assert.Len(t, g[1], 2)
}

func TestHeapTree_Invariants(t *testing.T) {
	counts := make([]int, 100)
	for i := range counts {
		counts[i] = (i * 37) % 11
	}
	g, err := strategy.NewHeapTree(0.7).Build(profileOf(counts...))
	require.NoError(t, err)

	require.Equal(t, 100, g.NodeCount())
	for src, es := range g {
		assert.GreaterOrEqual(t, len(es), 1, "node %d", src)
		assert.LessOrEqual(t, len(es), 3, "node %d", src)
		for _, w := range es {
			assert.Greater(t, w, 0.0)
			assert.LessOrEqual(t, w, graph.MaxWeight)
		}
	}
}
