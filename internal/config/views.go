package config

import (
	"time"

	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/llm"
	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/retrieval"
	"github.com/vaak-ai/voxengine/internal/tool"
)

// MemoryConfig projects the memory-tiering keys onto internal/memory.Config.
func (c *Config) MemoryConfig() memory.Config {
	d := memory.DefaultConfig()
	return memory.Config{
		WorkingMemorySize:      c.WorkingMemorySize,
		SummarizationThreshold: c.SummarizationThreshold,
		MaxEpisodicSummaries:   c.MaxEpisodicSummaries,
		SemanticMemoryEnabled:  c.SemanticMemoryEnabled,
		LowWatermarkTokens:     c.LowWatermarkTokens,
		HighWatermarkTokens:    c.HighWatermarkTokens,
		MaxContextTokens:       c.MaxContextTokens,
		CoreBlockCharCap:       d.CoreBlockCharCap,
	}
}

// RetrievalConfig projects the fusion/rerank/prefetch keys onto
// internal/retrieval.Config.
func (c *Config) RetrievalConfig() retrieval.Config {
	return retrieval.Config{
		DenseTopK:                   c.DenseTopK,
		SparseTopK:                  c.SparseTopK,
		FinalTopK:                   c.FinalTopK,
		MinScore:                    c.MinScore,
		DenseWeight:                 c.DenseWeight,
		RRFK:                        c.RRFK,
		RerankEnabled:               c.RerankingEnabled,
		PrefetchConfidenceThreshold: c.PrefetchConfidenceThreshold,
		PrefetchTopK:                c.PrefetchTopK,
	}
}

// SpeculativeConfig projects the dispatch-policy keys onto
// internal/llm.Config.
func (c *Config) SpeculativeConfig() llm.Config {
	d := llm.DefaultConfig()
	return llm.Config{
		Mode:                  llm.Mode(c.Mode),
		ComplexityThreshold:   c.ComplexityThreshold,
		SlmTimeout:            time.Duration(c.SlmTimeoutMs) * time.Millisecond,
		MinTokensBeforeSwitch: d.MinTokensBeforeSwitch,
		QualityThreshold:      c.QualityThreshold,
		FallbackEnabled:       c.FallbackEnabled,
	}
}

// EngineConfig projects the prompt-assembly keys onto internal/engine.Config.
// SystemInstructions and StageGuidance are persona-layer concerns outside
// this file's keys and are left empty for the caller to fill in;
// ToolsEnabled keeps engine.DefaultConfig's value (true).
func (c *Config) EngineConfig() engine.Config {
	d := engine.DefaultConfig()
	d.ContextWindowTokens = c.ContextWindowTokens
	return d
}

// ToolDispatchConfig projects tool_defaults.* onto internal/tool.DispatchConfig.
func (c *Config) ToolDispatchConfig() tool.DispatchConfig {
	return tool.DispatchConfig{Defaults: c.ToolDefaults}
}
