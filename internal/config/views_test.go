package config

import "testing"

func TestViews_ProjectConfiguredValues(t *testing.T) {
	cfg := Default()
	cfg.DenseTopK = 42
	cfg.SlmTimeoutMs = 500
	cfg.Mode = "hybrid_streaming"

	rc := cfg.RetrievalConfig()
	if rc.DenseTopK != 42 {
		t.Errorf("RetrievalConfig.DenseTopK = %d, want 42", rc.DenseTopK)
	}

	sc := cfg.SpeculativeConfig()
	if sc.SlmTimeout.Milliseconds() != 500 {
		t.Errorf("SpeculativeConfig.SlmTimeout = %v, want 500ms", sc.SlmTimeout)
	}
	if string(sc.Mode) != "hybrid_streaming" {
		t.Errorf("SpeculativeConfig.Mode = %q, want hybrid_streaming", sc.Mode)
	}

	mc := cfg.MemoryConfig()
	if mc.WorkingMemorySize != cfg.WorkingMemorySize {
		t.Errorf("MemoryConfig.WorkingMemorySize = %d, want %d", mc.WorkingMemorySize, cfg.WorkingMemorySize)
	}

	ec := cfg.EngineConfig()
	if ec.ContextWindowTokens != cfg.ContextWindowTokens {
		t.Errorf("EngineConfig.ContextWindowTokens = %d, want %d", ec.ContextWindowTokens, cfg.ContextWindowTokens)
	}

	cfg.ToolDefaults = map[string]map[string]string{"emi_calculator": {"tenure_months": "12"}}
	tc := cfg.ToolDispatchConfig()
	if tc.Defaults["emi_calculator"]["tenure_months"] != "12" {
		t.Errorf("ToolDispatchConfig.Defaults missing override")
	}
}
