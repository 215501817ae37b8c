package config

// Config is the top-level YAML structure.
type Config struct {
	Version     string       `yaml:"version"`
	Constraints Constraints  `yaml:"constraints"`
	Strategy    StrategyConf `yaml:"strategy"`
	Inputs      InputsConf   `yaml:"inputs"`
	Output      OutputConf   `yaml:"output"`
	Analysis    AnalysisConf `yaml:"analysis"`
	Logging     LoggingConf  `yaml:"logging"`
}

// Constraints are the structural limits every candidate graph must meet.
type Constraints struct {
	NumNodes        int `yaml:"num_nodes"`
	MaxEdgesPerNode int `yaml:"max_edges_per_node"`
	MaxTotalEdges   int `yaml:"max_total_edges"`
}

// StrategyConf selects and tunes the graph construction strategy.
type StrategyConf struct {
	Name          string  `yaml:"name"`
	ShortcutScale float64 `yaml:"shortcut_scale"`  // ring_shortcut back-edge scale p
	TreeBackScale float64 `yaml:"tree_back_scale"` // heap_tree back-edge scale q
}

// InputsConf points at the read-only inputs of a run.
type InputsConf struct {
	Graph   string `yaml:"graph"`
	Results string `yaml:"results"`
}

// OutputConf points at run outputs. Empty Metrics/History disables them.
type OutputConf struct {
	Graph   string `yaml:"graph"`
	Metrics string `yaml:"metrics"`
	History string `yaml:"history"`
}

// AnalysisConf tunes the advisory layout analysis.
type AnalysisConf struct {
	Enabled    *bool `yaml:"enabled"` // nil = enabled
	TopTargets int   `yaml:"top_targets"`
	MaxNodes   int   `yaml:"max_nodes"`
}

// On reports whether analysis should run.
func (a AnalysisConf) On() bool {
	return a.Enabled == nil || *a.Enabled
}

// LoggingConf controls the slog handler.
type LoggingConf struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}
