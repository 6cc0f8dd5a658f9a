package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			APIKey:     "test-key",
			Model:      "text-embedding-3-small",
			Dimensions: 384,
		},
		LLM: LLMConfig{
			Provider: "openai",
			APIKey:   "test-key",
			Model:    "gpt-4o-mini",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }},
		{"no db addrs", func(c *Config) { c.Database.Addrs = nil }},
		{"no embedding model", func(c *Config) { c.Embedding.Model = "" }},
		{"negative dimensions", func(c *Config) { c.Embedding.Dimensions = -1 }},
		{"no llm model", func(c *Config) { c.LLM.Model = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Retrieval.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Retrieval.Workers)
	}
	if cfg.Retrieval.DefaultK != 3 || cfg.Retrieval.ExpandToN != 3 || cfg.Retrieval.KeepTopK != 3 {
		t.Errorf("unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RETRIEVER_TEST_KEY", "secret")

	in := []byte("api_key: ${RETRIEVER_TEST_KEY}\nmodel: ${RETRIEVER_TEST_MODEL:-gpt-4o-mini}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: secret\nmodel: gpt-4o-mini\n" {
		t.Errorf("unexpected expansion: %q", out)
	}
}

func TestGetEnv_Default(t *testing.T) {
	old, had := os.LookupEnv("ENV")
	os.Unsetenv("ENV")
	defer func() {
		if had {
			os.Setenv("ENV", old)
		}
	}()

	if env := GetEnv(); env != "local" {
		t.Errorf("expected local, got %q", env)
	}
}
