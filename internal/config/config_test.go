package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.APIPort)
	}
	if cfg.RAGTopK != 4 {
		t.Fatalf("expected default top-k 4, got %d", cfg.RAGTopK)
	}
	if cfg.MaxTurns != 10 {
		t.Fatalf("expected default max turns 10, got %d", cfg.MaxTurns)
	}
	if cfg.ExcerptLength != 200 {
		t.Fatalf("expected default excerpt length 200, got %d", cfg.ExcerptLength)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("CONFLUENCE_SPACE_KEY", "DOCS")
	t.Setenv("RAG_TOP_K", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9999" || cfg.ConfluenceSpaceKey != "DOCS" || cfg.RAGTopK != 7 {
		t.Fatalf("environment values not applied: %+v", cfg)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("MAX_TURNS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTurns != 10 {
		t.Fatalf("expected fallback for invalid int, got %d", cfg.MaxTurns)
	}
}

func TestLoadFileOverridesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api_port: "7070"
confluence:
  space_key: FILE
  base_url: https://wiki.example.com
rag_top_k: 2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("API_PORT", "9999")
	t.Setenv("CONFLUENCE_SPACE_KEY", "ENV")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "7070" {
		t.Fatalf("file should win over env, got port %s", cfg.APIPort)
	}
	if cfg.ConfluenceSpaceKey != "FILE" || cfg.ConfluenceBaseURL != "https://wiki.example.com" {
		t.Fatalf("nested file values not applied: %+v", cfg)
	}
	if cfg.RAGTopK != 2 {
		t.Fatalf("expected top-k from file, got %d", cfg.RAGTopK)
	}
	// Untouched keys keep their env/default values.
	if cfg.MaxTurns != 10 {
		t.Fatalf("unset file key must not clobber default, got %d", cfg.MaxTurns)
	}
}

func TestLoadMissingConfigFileFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
