// Package strategy turns a frequency profile into a candidate graph.
package strategy

import (
	"errors"

	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/profile"
)

// ErrTooFewNodes is returned when the universe cannot hold a ring.
var ErrTooFewNodes = errors.New("strategy: at least two nodes are required")

// Builder is the interface every construction strategy satisfies.
type Builder interface {
	// Name returns the key this builder is registered under.
	Name() string
	// Build lays out the profiled universe. The result holds every node of
	// the universe and nothing else.
	Build(p *profile.Profile) (graph.Graph, error)
}

// NewDefaultRegistry registers the built-in strategies tuned by conf.
func NewDefaultRegistry(conf config.StrategyConf) *Registry {
	reg := NewRegistry()
	reg.Register(NewRingShortcut(conf.ShortcutScale))
	reg.Register(NewHeapTree(conf.TreeBackScale))
	reg.SetDefault(config.DefaultStrategy)
	return reg
}
