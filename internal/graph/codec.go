package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrBadFormat marks a graph file that cannot be used as input.
var ErrBadFormat = errors.New("graph: bad format")

// Load reads a graph file. When universe > 0 the top-level keys must be
// exactly 0..universe-1.
func Load(path string, universe int) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	g, err := Decode(data, universe)
	if err != nil {
		return nil, fmt.Errorf("graph %s: %w", path, err)
	}
	return g, nil
}

// Decode parses the JSON form {"src": {"dst": weight}}.
func Decode(data []byte, universe int) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrBadFormat)
	}
	for src, es := range g {
		if es == nil {
			g[src] = make(Edges)
		}
	}
	if universe <= 0 {
		return g, nil
	}
	if len(g) != universe {
		return nil, fmt.Errorf("%w: %d nodes, want %d", ErrBadFormat, len(g), universe)
	}
	for src := range g {
		if src < 0 || int(src) >= universe {
			return nil, fmt.Errorf("%w: node %d outside universe 0..%d", ErrBadFormat, src, universe-1)
		}
	}
	return g, nil
}

// Encode renders g as two-space indented JSON. Keys are sorted, so equal
// graphs encode to equal bytes.
func Encode(g Graph) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes g to path through a temp file in the same directory, so a
// reader never sees a partial file.
func Save(g Graph, path string) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".graph-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close graph %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename graph %s: %w", path, err)
	}
	return nil
}
