// Package config handles tuning configuration for axreplay.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/axreplay/pkg/signature"
)

// Thresholds are the similarity acceptance levels.
type Thresholds struct {
	// Accept is the minimum similarity for a search candidate.
	Accept float64 `yaml:"accept"`
	// Direct is the high-confidence level that lets the projected
	// point's element pass without any search.
	Direct float64 `yaml:"direct"`
	// Identity is the minimum window-match confidence.
	Identity float64 `yaml:"identity"`
}

// Search bounds the candidate search strategies.
type Search struct {
	NeighborRadius float64 `yaml:"neighborRadius"` // px
	NeighborStep   float64 `yaml:"neighborStep"`   // px
	TreeMaxDepth   int     `yaml:"treeMaxDepth"`
	TreeMaxNodes   int     `yaml:"treeMaxNodes"`
}

// Escalation bounds the retry loop.
type Escalation struct {
	Budget        int     `yaml:"budget"`        // attempts before EscalationExhausted
	ThresholdStep float64 `yaml:"thresholdStep"` // per-attempt acceptance relaxation
	RadiusScale   float64 `yaml:"radiusScale"`   // neighbor radius widening factor
	MinAccept     float64 `yaml:"minAccept"`     // floor the relaxation never crosses
}

// Config is the workspace tuning file (axreplay.yaml).
type Config struct {
	Thresholds Thresholds        `yaml:"thresholds"`
	Weights    signature.Weights `yaml:"weights"`
	Search     Search            `yaml:"search"`
	Escalation Escalation        `yaml:"escalation"`

	// CallTimeoutMs bounds single collaborator calls at confirmation and
	// dispatch, where the live UI may be transiently unresponsive.
	CallTimeoutMs int `yaml:"callTimeoutMs"`
}

// Default returns the shipped tuning. The search and escalation
// constants come from field tuning of the original engine; changing
// them trades reliability against latency.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			Accept:   0.60,
			Direct:   0.85,
			Identity: 0.50,
		},
		Weights: signature.DefaultWeights(),
		Search: Search{
			NeighborRadius: 16,
			NeighborStep:   4,
			TreeMaxDepth:   5,
			TreeMaxNodes:   800,
		},
		Escalation: Escalation{
			Budget:        3,
			ThresholdStep: 0.10,
			RadiusScale:   2.0,
			MinAccept:     0.30,
		},
		CallTimeoutMs: 2000,
	}
}

// Load loads configuration from a file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for axreplay.yaml or axreplay.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"axreplay.yaml", "axreplay.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	// No config file found, use defaults.
	return Default(), nil
}

// CallTimeout returns the collaborator call bound as a duration.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMs) * time.Millisecond
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Thresholds.Accept <= 0 || c.Thresholds.Accept > 1 {
		return fmt.Errorf("config: thresholds.accept %v outside (0,1]", c.Thresholds.Accept)
	}
	if c.Thresholds.Direct < c.Thresholds.Accept || c.Thresholds.Direct > 1 {
		return fmt.Errorf("config: thresholds.direct %v must be in [accept,1]", c.Thresholds.Direct)
	}
	if c.Escalation.Budget < 0 {
		return fmt.Errorf("config: escalation.budget must be >= 0")
	}
	if c.Search.NeighborStep <= 0 || c.Search.NeighborRadius < c.Search.NeighborStep {
		return fmt.Errorf("config: search neighbor radius/step invalid")
	}
	if c.Search.TreeMaxDepth <= 0 || c.Search.TreeMaxNodes <= 0 {
		return fmt.Errorf("config: search tree limits must be positive")
	}
	if c.CallTimeoutMs <= 0 {
		return fmt.Errorf("config: callTimeoutMs must be positive")
	}
	return nil
}
