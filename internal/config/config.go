// Package config loads Berlin's tunable constants from a TOML file, falling
// back to calibrated defaults when the file is absent or partially invalid.
// This mirrors the load/default/partial-recovery pattern of the completion
// server this project's structure borrows from, and exists because spec.md
// §9 calls for the scoring weights to be centralized so property tests can
// sweep them without recompiling.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Weights holds every calibrated constant from spec.md §4.7 and §4.8.
type Weights struct {
	// Blend of the two per-term similarity measures in the [0,1000] score.
	LevenshteinWeight  float64 `toml:"levenshtein_weight"`
	JaroWinklerWeight  float64 `toml:"jaro_winkler_weight"`

	// Multiplicative anchors applied per retrieval path (§4.7).
	AnchorExact          float64 `toml:"anchor_exact"`
	AnchorPrefixFull     float64 `toml:"anchor_prefix_full"`
	AnchorPrefixPartial  float64 `toml:"anchor_prefix_partial"`
	AnchorFuzzyDist1     float64 `toml:"anchor_fuzzy_dist1"`
	AnchorFuzzyDist2     float64 `toml:"anchor_fuzzy_dist2"`
	ExactFloorBonus      float64 `toml:"exact_floor_bonus"`

	// A location's aggregated score must reach this to survive scoring (§4.7).
	InclusionThreshold float64 `toml:"inclusion_threshold"`

	// A location must additionally clear this, stricter, threshold before it
	// can participate as either end of a containment edge (§4.8, and the
	// original berlin-core GRAPH_EDGE_THRESHOLD supplement, see SPEC_FULL.md).
	GraphEdgeThreshold float64 `toml:"graph_edge_threshold"`

	// Containment boost factors (§4.8).
	AncestorBoost   float64 `toml:"ancestor_boost"`
	DescendantBoost float64 `toml:"descendant_boost"`
	StateFilterBonus float64 `toml:"state_filter_bonus"`
}

// ServerConfig holds knobs for the HTTP/CLI surfaces, not the core scoring.
type ServerConfig struct {
	ListenAddr           string `toml:"listen_addr"`
	DefaultLimit         uint32 `toml:"default_limit"`
	DefaultLevDistance   uint32 `toml:"default_lev_distance"`
}

// Config is the top-level TOML document.
type Config struct {
	Weights Weights      `toml:"weights"`
	Server  ServerConfig `toml:"server"`
}

// DefaultWeights returns the constants calibrated against the reference
// corpus, per spec.md §4.7/§4.8/§9.
func DefaultWeights() Weights {
	return Weights{
		LevenshteinWeight:  0.6,
		JaroWinklerWeight:  0.4,
		AnchorExact:        1.0,
		AnchorPrefixFull:   0.9,
		AnchorPrefixPartial: 0.7,
		AnchorFuzzyDist1:   0.6,
		AnchorFuzzyDist2:   0.4,
		ExactFloorBonus:    250,
		InclusionThreshold: 200,
		GraphEdgeThreshold: 600,
		AncestorBoost:      0.25,
		DescendantBoost:    0.10,
		StateFilterBonus:   50,
	}
}

// DefaultServer returns the default server-facing knobs, per spec.md §4.5.
func DefaultServer() ServerConfig {
	return ServerConfig{
		ListenAddr:         ":3000",
		DefaultLimit:       1,
		DefaultLevDistance: 2,
	}
}

// Default returns a Config populated entirely with calibrated defaults.
func Default() *Config {
	return &Config{Weights: DefaultWeights(), Server: DefaultServer()}
}

// Load reads a TOML config file. Tables and fields missing from the file
// keep their defaults; if the file fails to parse, the whole Config falls
// back to defaults rather than failing — a bad weights.toml should degrade
// to defaults, not take the process down, matching how ingestion failures (not config failures) are
// the only fatal case per spec.md §7.
func Load(path string) *Config {
	cfg := Default()
	if path == "" {
		return cfg
	}
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		log.Warnf("config: failed to parse %s, using defaults: %v", path, err)
		return Default()
	}
	return cfg
}

// Save writes cfg to path in TOML form.
func Save(cfg *Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
