package results_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/results"
)

const sampleLog = `{
  "success_rate": 0.5,
  "detailed_results": [
    {"target": 3, "success": true, "path": [0, 1, 3]},
    {"target": 2, "success": false, "path": [4, 4, 4, 4]},
    {"target": 3, "success": true, "path": [2, 3]},
    {"target": 1}
  ]
}`

func TestDecode(t *testing.T) {
	l, err := results.Decode([]byte(sampleLog))
	require.NoError(t, err)

	require.Len(t, l.Queries, 4)
	assert.Equal(t, graph.NodeID(3), l.Queries[0].Target)
	assert.True(t, l.Queries[0].Success)
	assert.Equal(t, []graph.NodeID{0, 1, 3}, l.Queries[0].Path)
	assert.False(t, l.Queries[3].Success)
	assert.Empty(t, l.Queries[3].Path)

	assert.Contains(t, l.Metadata, "success_rate")
	assert.NotContains(t, l.Metadata, "detailed_results")

	assert.InDelta(t, 0.5, l.SuccessRate(), 1e-9)
	assert.InDelta(t, 2.5, l.MeanPathLength(), 1e-9)
}

func TestDecode_FormatErrors(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "missing detailed_results", data: `{"success_rate": 1}`, wantErr: results.ErrMissingResults},
		{name: "null detailed_results", data: `{"detailed_results": null}`, wantErr: results.ErrMissingResults},
		{name: "missing target", data: `{"detailed_results": [{"target": 1}, {"success": true}]}`, wantErr: results.ErrMissingTarget},
		{name: "null target", data: `{"detailed_results": [{"target": null}]}`, wantErr: results.ErrMissingTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := results.Decode([]byte(tc.data))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := results.Decode([]byte(`{"detailed_results": [{"target": "x"}]}`))
	assert.Error(t, err)
	_, err = results.Decode([]byte(`[]`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))

	l, err := results.Load(path)
	require.NoError(t, err)
	assert.Len(t, l.Queries, 4)
}

func TestEmptyLogSummaries(t *testing.T) {
	l, err := results.Decode([]byte(`{"detailed_results": []}`))
	require.NoError(t, err)
	assert.Zero(t, l.SuccessRate())
	assert.Zero(t, l.MeanPathLength())
}
