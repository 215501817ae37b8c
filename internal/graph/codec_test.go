package graph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
)

func TestDecode_UniverseCheck(t *testing.T) {
	cases := []struct {
		name     string
		data     string
		universe int
		wantErr  bool
	}{
		{name: "exact universe", data: `{"0": {"1": 1}, "1": {"0": 2.5}}`, universe: 2},
		{name: "no universe check", data: `{"7": {}}`, universe: 0},
		{name: "missing node", data: `{"0": {"1": 1}}`, universe: 2, wantErr: true},
		{name: "node outside universe", data: `{"0": {}, "5": {}}`, universe: 2, wantErr: true},
		{name: "non-integer key", data: `{"a": {}}`, universe: 0, wantErr: true},
		{name: "non-numeric weight", data: `{"0": {"1": "x"}}`, universe: 0, wantErr: true},
		{name: "null document", data: `null`, universe: 0, wantErr: true},
		{name: "not json", data: `{`, universe: 0, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := graph.Decode([]byte(tc.data), tc.universe)
			if tc.wantErr {
				require.ErrorIs(t, err, graph.ErrBadFormat)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}

func TestDecode_NullEdgeSetBecomesEmpty(t *testing.T) {
	g, err := graph.Decode([]byte(`{"0": null, "1": {"0": 1}}`), 2)
	require.NoError(t, err)
	assert.NotNil(t, g[0])
	assert.Equal(t, 0, g.OutDegree(0))
}

func TestSave_DeterministicAndLoadable(t *testing.T) {
	g := graph.New(3)
	g.SetEdge(2, 0, 1.5)
	g.SetEdge(0, 1, 1)
	g.SetEdge(1, 2, 1)
	g.SetEdge(1, 0, 0.5)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "nested", "b.json")
	require.NoError(t, graph.Save(g, a))
	require.NoError(t, graph.Save(g.Clone(), b))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db, "equal graphs must encode to equal bytes")

	back, err := graph.Load(a, 3)
	require.NoError(t, err)
	assert.Equal(t, g, back)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".graph-", "temp file left behind")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := graph.Load(filepath.Join(t.TempDir(), "absent.json"), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGraph_Counts(t *testing.T) {
	g := graph.New(3)
	g.SetEdge(0, 1, 1)
	g.SetEdge(0, 2, 1)
	g.SetEdge(1, 2, 1)
	g.SetEdge(0, 1, 3) // replaces

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, 2, g.OutDegree(0))
	assert.Equal(t, 0, g.OutDegree(9))
	assert.Equal(t, []graph.NodeID{0, 1, 2}, g.Nodes())
	assert.Equal(t, []graph.NodeID{1, 2}, g.Targets(0))
	assert.Equal(t, 3.0, g[0][1])
}
