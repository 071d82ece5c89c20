package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vaak-ai/voxengine/internal/llm"
)

// Load reads the YAML configuration file at path, decodes it onto
// Default(), and validates the result. A convenience wrapper around
// LoadFromReader.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML document from r onto a copy of Default()
// (so keys the document omits keep their default value) and validates the
// result. Unknown keys are rejected, catching typos in tuning YAML before
// they silently no-op. Useful in tests where configs are built from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values, returning a
// joined error listing every failure found.
func Validate(cfg *Config) error {
	var errs []error

	requirePositive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	requireUnitInterval := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %f", name, v))
		}
	}

	requirePositive("working_memory_size", cfg.WorkingMemorySize)
	requirePositive("summarization_threshold", cfg.SummarizationThreshold)
	requirePositive("max_episodic_summaries", cfg.MaxEpisodicSummaries)
	if cfg.LowWatermarkTokens <= 0 || cfg.HighWatermarkTokens <= 0 || cfg.MaxContextTokens <= 0 {
		errs = append(errs, errors.New("low_watermark_tokens, high_watermark_tokens, and max_context_tokens must all be positive"))
	} else if !(cfg.LowWatermarkTokens <= cfg.HighWatermarkTokens && cfg.HighWatermarkTokens <= cfg.MaxContextTokens) {
		errs = append(errs, fmt.Errorf("watermarks must satisfy low(%d) <= high(%d) <= max(%d)",
			cfg.LowWatermarkTokens, cfg.HighWatermarkTokens, cfg.MaxContextTokens))
	}

	requirePositive("dense_top_k", cfg.DenseTopK)
	requirePositive("sparse_top_k", cfg.SparseTopK)
	requirePositive("final_top_k", cfg.FinalTopK)
	requireUnitInterval("dense_weight", cfg.DenseWeight)
	requirePositive("rrf_k", cfg.RRFK)
	requireUnitInterval("prefetch_confidence_threshold", cfg.PrefetchConfidenceThreshold)
	requirePositive("prefetch_top_k", cfg.PrefetchTopK)

	requirePositive("context_window_tokens", cfg.ContextWindowTokens)

	if cfg.SlmTimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("slm_timeout_ms must be positive, got %d", cfg.SlmTimeoutMs))
	}
	requireUnitInterval("quality_threshold", cfg.QualityThreshold)
	requireUnitInterval("complexity_threshold", cfg.ComplexityThreshold)
	switch llm.Mode(cfg.Mode) {
	case llm.SlmFirst, llm.RaceParallel, llm.HybridStreaming, llm.DraftVerify:
	default:
		errs = append(errs, fmt.Errorf("mode %q is not one of slm_first, race_parallel, hybrid_streaming, draft_verify", cfg.Mode))
	}

	if cfg.CORS.Enabled && len(cfg.CORS.AllowOrigins) == 0 {
		errs = append(errs, errors.New("cors.enabled is true but cors.allow_origins is empty"))
	}

	return errors.Join(errs...)
}
