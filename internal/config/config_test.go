package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Embed.Provider != "hashing" {
		t.Errorf("Embed.Provider = %q, want %q", cfg.Embed.Provider, "hashing")
	}
	if cfg.Vector.Backend != "memory" {
		t.Errorf("Vector.Backend = %q, want %q", cfg.Vector.Backend, "memory")
	}
	if cfg.Bench.TopN != 10 {
		t.Errorf("Bench.TopN = %d, want 10", cfg.Bench.TopN)
	}
	if cfg.Bench.KWide != 30 {
		t.Errorf("Bench.KWide = %d, want 30", cfg.Bench.KWide)
	}
	if cfg.Bench.JudgeSamples != 1 {
		t.Errorf("Bench.JudgeSamples = %d, want 1", cfg.Bench.JudgeSamples)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
bench:
  workers: 2
  top_n: 5
  k_wide: 20
llm:
  model: local-model
  base_url: http://localhost:11434/v1
vector:
  backend: qdrant
  host: qdrant.internal
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bench.Workers != 2 {
		t.Errorf("Bench.Workers = %d, want 2", cfg.Bench.Workers)
	}
	if cfg.Bench.TopN != 5 {
		t.Errorf("Bench.TopN = %d, want 5", cfg.Bench.TopN)
	}
	if cfg.LLM.Model != "local-model" {
		t.Errorf("LLM.Model = %q, want %q", cfg.LLM.Model, "local-model")
	}
	if cfg.Vector.Host != "qdrant.internal" {
		t.Errorf("Vector.Host = %q, want %q", cfg.Vector.Host, "qdrant.internal")
	}
	// Untouched sections keep their defaults.
	if cfg.Bench.QueryTimeout != 2*time.Minute {
		t.Errorf("Bench.QueryTimeout = %v, want 2m", cfg.Bench.QueryTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("bench:\n  workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SHELF_BENCH_WORKERS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bench.Workers != 8 {
		t.Errorf("Bench.Workers = %d, want env override 8", cfg.Bench.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad embed provider", func(c *Config) { c.Embed.Provider = "onnx" }, true},
		{"zero dimension", func(c *Config) { c.Embed.Dimension = 0 }, true},
		{"bad vector backend", func(c *Config) { c.Vector.Backend = "pinecone" }, true},
		{"k_wide not above top_n", func(c *Config) { c.Bench.KWide = 10 }, true},
		{"even judge samples", func(c *Config) { c.Bench.JudgeSamples = 2 }, true},
		{"median of three", func(c *Config) { c.Bench.JudgeSamples = 3 }, false},
		{"kafka without brokers", func(c *Config) { c.Bus.Backend = "kafka" }, true},
		{"http scrape without url", func(c *Config) { c.Scrape.Source = "http" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
