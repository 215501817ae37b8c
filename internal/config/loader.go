package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNumNodes        = 500
	DefaultMaxEdgesPerNode = 3
	DefaultMaxTotalEdges   = 1000
	DefaultStrategy        = "ring_shortcut"
	DefaultShortcutScale   = 2.0
	DefaultTreeBackScale   = 0.7
	DefaultTopTargets      = 3
	DefaultAnalysisNodes   = 1000
)

// Default returns a config with every default applied, used when no file is given.
func Default() *Config {
	cfg := &Config{Version: "v1"}
	applyDefaults(cfg)
	return cfg
}

// Loader reads a YAML config file and watches it, and the files it names, for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Config returns the current (latest) configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that reloads the config whenever the
// config file or one of extra changes. Callbacks run on that goroutine, one at
// a time. Call the returned stop function to clean up.
func (l *Loader) Watch(extra ...string) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	// Watch directories: editors and writers replace files by rename.
	watched := make(map[string]struct{})
	files := make(map[string]struct{})
	for _, p := range append([]string{l.path}, extra...) {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("config watcher: %w", err)
		}
		files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := watched[dir]; ok {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("config watcher add %s: %w", dir, err)
		}
		watched[dir] = struct{}{}
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if _, ok := files[filepath.Clean(ev.Name)]; !ok {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("config reload failed; keeping previous config", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the config file and notifies callbacks.
func (l *Loader) Reload() (*Config, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*Config), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	// A writer truncates before it writes; never mistake that for an all-defaults config.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("config %s is empty", l.path)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Constraints.NumNodes == 0 {
		cfg.Constraints.NumNodes = DefaultNumNodes
	}
	if cfg.Constraints.MaxEdgesPerNode == 0 {
		cfg.Constraints.MaxEdgesPerNode = DefaultMaxEdgesPerNode
	}
	if cfg.Constraints.MaxTotalEdges == 0 {
		cfg.Constraints.MaxTotalEdges = DefaultMaxTotalEdges
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = DefaultStrategy
	}
	if cfg.Strategy.ShortcutScale == 0 {
		cfg.Strategy.ShortcutScale = DefaultShortcutScale
	}
	if cfg.Strategy.TreeBackScale == 0 {
		cfg.Strategy.TreeBackScale = DefaultTreeBackScale
	}
	if cfg.Inputs.Graph == "" {
		cfg.Inputs.Graph = "data/initial_graph.json"
	}
	if cfg.Inputs.Results == "" {
		cfg.Inputs.Results = "data/initial_results.json"
	}
	if cfg.Output.Graph == "" {
		cfg.Output.Graph = "candidate_submission/optimized_graph.json"
	}
	if cfg.Analysis.TopTargets == 0 {
		cfg.Analysis.TopTargets = DefaultTopTargets
	}
	if cfg.Analysis.MaxNodes == 0 {
		cfg.Analysis.MaxNodes = DefaultAnalysisNodes
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
