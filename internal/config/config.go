// Package config loads and hot-reloads the domain configuration view: the
// YAML-defined knobs for memory sizing, retrieval fusion, speculative
// dispatch policy, tool argument defaults, and CORS, that the rest of the
// process reads through a Store rather than by holding a *Config across
// an await point.
package config

import "github.com/vaak-ai/voxengine/internal/llm"

// Config is the full set of recognized configuration keys. Every field
// maps to exactly one spec-level key; fields are grouped by concern, and
// yaml tags are flat to match the keys as documented (e.g. "dense_top_k",
// not "retrieval.dense_top_k"). The one exception is CORS, which is
// decoded from a nested "cors:" block.
type Config struct {
	// Memory sizing and tiering (internal/memory.Config).
	WorkingMemorySize      int  `yaml:"working_memory_size"`
	SummarizationThreshold int  `yaml:"summarization_threshold"`
	MaxEpisodicSummaries   int  `yaml:"max_episodic_summaries"`
	SemanticMemoryEnabled  bool `yaml:"semantic_memory_enabled"`
	LowWatermarkTokens     int  `yaml:"low_watermark_tokens"`
	HighWatermarkTokens    int  `yaml:"high_watermark_tokens"`
	MaxContextTokens       int  `yaml:"max_context_tokens"`

	// Hybrid retrieval fusion and rerank (internal/retrieval.Config).
	DenseTopK                   int     `yaml:"dense_top_k"`
	SparseTopK                  int     `yaml:"sparse_top_k"`
	FinalTopK                   int     `yaml:"final_top_k"`
	DenseWeight                 float64 `yaml:"dense_weight"`
	RRFK                        int     `yaml:"rrf_k"`
	MinScore                    float64 `yaml:"min_score"`
	RerankingEnabled            bool    `yaml:"reranking_enabled"`
	PrefetchConfidenceThreshold float64 `yaml:"prefetch_confidence_threshold"`
	PrefetchTopK                int     `yaml:"prefetch_top_k"`
	QueryExpansionEnabled       bool    `yaml:"query_expansion_enabled"`

	// Prompt assembly (internal/engine.Config).
	ContextWindowTokens int `yaml:"context_window_tokens"`

	// ToolDefaults supplies tool_defaults.<tool>.<arg>: default argument
	// values applied when an intent slot is absent (internal/tool.DispatchConfig).
	ToolDefaults map[string]map[string]string `yaml:"tool_defaults"`

	// Speculative SLM/LLM dispatch policy (internal/llm.Config).
	SlmTimeoutMs        int     `yaml:"slm_timeout_ms"`
	QualityThreshold    float64 `yaml:"quality_threshold"`
	ComplexityThreshold float64 `yaml:"complexity_threshold"`
	FallbackEnabled     bool    `yaml:"fallback_enabled"`
	Mode                string  `yaml:"mode"`

	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig controls cross-origin request handling for internal/httpapi.
// Enabled/AllowOrigins take effect on process start only: this is a
// restart-time setting, so Store.Reload never touches it after the
// first Load.
type CORSConfig struct {
	Enabled      bool     `yaml:"enabled"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// Default returns the configuration defaults, matching each wired
// component's own DefaultConfig so an empty or partial YAML file still
// produces a usable process.
func Default() *Config {
	return &Config{
		WorkingMemorySize:      20,
		SummarizationThreshold: 10,
		MaxEpisodicSummaries:   20,
		SemanticMemoryEnabled:  true,
		LowWatermarkTokens:     4000,
		HighWatermarkTokens:    7000,
		MaxContextTokens:       8000,

		DenseTopK:                   20,
		SparseTopK:                  20,
		FinalTopK:                   5,
		DenseWeight:                 0.5,
		RRFK:                        60,
		MinScore:                    0.0,
		RerankingEnabled:            true,
		PrefetchConfidenceThreshold: 0.6,
		PrefetchTopK:                3,
		QueryExpansionEnabled:       true,

		ContextWindowTokens: 8000,

		SlmTimeoutMs:        200,
		QualityThreshold:    0.8,
		ComplexityThreshold: 0.7,
		FallbackEnabled:     true,
		Mode:                string(llm.SlmFirst),

		CORS: CORSConfig{Enabled: false},
	}
}
