package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecent_CorruptStartedAt(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`INSERT INTO runs (run_id, started_at, strategy, num_nodes, queries, total_edges,
		max_out_degree, valid, violations, output_path) VALUES ('bad', 'yesterday', 'ring_shortcut', 4, 0, 6, 2, 1, 0, 'out.json')`)
	require.NoError(t, err)

	_, err = s.Recent(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `started_at "yesterday"`)
}
