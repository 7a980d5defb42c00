package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SV_HTTP_ADDR", "SV_AI_PROVIDER", "GROQ_API_KEY", "GEMINI_API_KEY", "SV_AI_TIMEOUT_MS", "SV_DISTANCE_CACHE_TTL_S"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.AI.Provider != ProviderGroq {
		t.Errorf("AI.Provider = %q, want %q", cfg.AI.Provider, ProviderGroq)
	}
	if cfg.AI.Timeout != 8*time.Second {
		t.Errorf("AI.Timeout = %v, want 8s", cfg.AI.Timeout)
	}
	if cfg.Maps.CacheTTL != 24*time.Hour {
		t.Errorf("Maps.CacheTTL = %v, want 24h", cfg.Maps.CacheTTL)
	}
	if cfg.AI.RemoteKey() != "" {
		t.Errorf("RemoteKey() = %q, want empty", cfg.AI.RemoteKey())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SV_AI_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GROQ_API_KEY", "q-key")
	t.Setenv("SV_AI_TIMEOUT_MS", "2500")
	t.Setenv("SV_DISTANCE_CACHE_TTL_S", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.RemoteKey() != "g-key" {
		t.Errorf("RemoteKey() = %q, want g-key", cfg.AI.RemoteKey())
	}
	if cfg.AI.Timeout != 2500*time.Millisecond {
		t.Errorf("AI.Timeout = %v, want 2.5s", cfg.AI.Timeout)
	}
	if cfg.Maps.CacheTTL != 24*time.Hour {
		t.Errorf("invalid TTL should fall back to default, got %v", cfg.Maps.CacheTTL)
	}
}
