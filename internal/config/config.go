// Package config loads and validates the engine-wide configuration.
package config

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v2"
)

// PoolConfig sets the arena page classes and the process-wide memory cap
// (spec §4.1). GrowthFactor is checked by Validate but not read by the
// pools, which grow by ceil(capacity/2) blocks at a time.
type PoolConfig struct {
	SmallPage    int     `yaml:"small_page"`
	MediumPage   int     `yaml:"medium_page"`
	LargePage    int     `yaml:"large_page"`
	MaxTotalMB   int     `yaml:"max_total_memory_mb"`
	GrowthFactor float64 `yaml:"growth_factor"`
}

// HNSWConfig controls the semantic index (spec §4.4).
type HNSWConfig struct {
	M              int `yaml:"m"`
	EfConstruction int `yaml:"ef_construction"`
	EfSearch       int `yaml:"ef_search"`
}

// BM25Config holds k1/b values for the lexical index (spec §4.3). The
// lexical index scores with its fixed constants lexical.K1 and lexical.B
// and does not read these fields.
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// GraphConfig controls the SSSP engine (spec §4.5).
type GraphConfig struct {
	// DijkstraFallbackMaxNodes is the |V| threshold below which a plain
	// Dijkstra run is used instead of the bucketed BMSSP frontier.
	DijkstraFallbackMaxNodes int `yaml:"dijkstra_fallback_max_nodes"`
}

// HybridConfig holds the hybrid planner settings (spec §4.6). Workers
// bounds the planner's concurrency. The Default* fields are checked by
// Validate but not read by the planner: each Query carries its own weights
// and MaxResults.
type HybridConfig struct {
	DefaultAlpha      float32 `yaml:"default_alpha"`
	DefaultBeta       float32 `yaml:"default_beta"`
	DefaultGamma      float32 `yaml:"default_gamma"`
	DefaultMaxResults uint32  `yaml:"default_max_results"`
	Workers           int     `yaml:"workers"`
}

// SnapshotConfig configures the optional write-behind mirror (SPEC_FULL §3).
// It never gates correctness of the in-memory core; see internal/snapshot.
type SnapshotConfig struct {
	Enabled   bool   `yaml:"enabled"`
	RedisAddr string `yaml:"redis_addr"`
	KeyPrefix string `yaml:"key_prefix"`
}

// EngineConfig is the full set of knobs the engine façade is constructed
// with. Zero-value fields are filled in by Default() / Load().
type EngineConfig struct {
	VectorDim int            `yaml:"vector_dim"`
	Pool      PoolConfig     `yaml:"pool"`
	HNSW      HNSWConfig     `yaml:"hnsw"`
	BM25      BM25Config     `yaml:"bm25"`
	Graph     GraphConfig    `yaml:"graph"`
	Hybrid    HybridConfig   `yaml:"hybrid"`
	Snapshot  SnapshotConfig `yaml:"snapshot"`
}

var allowedDims = map[int]bool{
	64: true, 128: true, 256: true, 384: true, 512: true,
	768: true, 1024: true, 1536: true, 3072: true,
}

// Default returns the configuration spec.md §4.4/§4.1/§4.3 documents as the
// engine's baked-in defaults.
func Default() EngineConfig {
	return EngineConfig{
		VectorDim: 768,
		Pool: PoolConfig{
			SmallPage:    4096,
			MediumPage:   65_536,
			LargePage:    2_097_152,
			MaxTotalMB:   2048,
			GrowthFactor: 1.5,
		},
		HNSW: HNSWConfig{
			M:              16,
			EfConstruction: 200,
			EfSearch:       100,
		},
		BM25: BM25Config{K1: 1.2, B: 0.75},
		Graph: GraphConfig{
			DijkstraFallbackMaxNodes: 1024,
		},
		Hybrid: HybridConfig{
			DefaultAlpha:      0.4,
			DefaultBeta:       0.4,
			DefaultGamma:      0.2,
			DefaultMaxResults: 20,
			Workers:           4,
		},
	}
}

// Load reads an EngineConfig from a YAML file, filling any unset fields with
// Default() values and validating the result. Mirrors the reference
// codebase's LoadConfig: never panics, reports status via pterm, and returns
// a wrapped error on failure.
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		pterm.Error.Printf("error reading engine config file: %v\n", err)
		return EngineConfig{}, fmt.Errorf("reading engine config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		pterm.Error.Printf("error unmarshaling engine config: %v\n", err)
		return EngineConfig{}, fmt.Errorf("unmarshaling engine config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	pterm.Success.Println("engine configuration loaded")
	return cfg, nil
}

// applyDefaults fills zero-valued fields left unset by a partial YAML file.
func applyDefaults(cfg *EngineConfig) {
	d := Default()
	if cfg.VectorDim == 0 {
		cfg.VectorDim = d.VectorDim
	}
	if cfg.Pool.SmallPage == 0 {
		cfg.Pool = d.Pool
	}
	if cfg.HNSW.M == 0 {
		cfg.HNSW = d.HNSW
	}
	if cfg.BM25.K1 == 0 {
		cfg.BM25 = d.BM25
	}
	if cfg.Graph.DijkstraFallbackMaxNodes == 0 {
		cfg.Graph = d.Graph
	}
	if cfg.Hybrid.DefaultMaxResults == 0 {
		cfg.Hybrid = d.Hybrid
	}
	if cfg.Snapshot.KeyPrefix == "" {
		cfg.Snapshot.KeyPrefix = "agrama:"
	}
}

// Validate checks invariants spec.md requires of the configuration
// (dimension in the allowed set, non-negative weights summing within the
// relaxed hybrid tolerance, positive pool parameters).
func (c EngineConfig) Validate() error {
	if !allowedDims[c.VectorDim] {
		return fmt.Errorf("vector_dim %d is not in the allowed set {64,128,...,3072}", c.VectorDim)
	}
	if c.Pool.GrowthFactor <= 1.0 {
		return fmt.Errorf("pool.growth_factor must be > 1.0, got %f", c.Pool.GrowthFactor)
	}
	if c.Pool.MaxTotalMB <= 0 {
		return fmt.Errorf("pool.max_total_memory_mb must be positive")
	}
	if c.HNSW.M <= 0 || c.HNSW.EfConstruction <= 0 || c.HNSW.EfSearch <= 0 {
		return fmt.Errorf("hnsw parameters must be positive")
	}
	if c.Hybrid.DefaultAlpha < 0 || c.Hybrid.DefaultBeta < 0 || c.Hybrid.DefaultGamma < 0 {
		return fmt.Errorf("hybrid default weights must be non-negative")
	}
	sum := c.Hybrid.DefaultAlpha + c.Hybrid.DefaultBeta + c.Hybrid.DefaultGamma
	if sum > 1.0+0.01 {
		return fmt.Errorf("hybrid default weights sum to %f, exceeds 1.0 + epsilon", sum)
	}
	return nil
}
