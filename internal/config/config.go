// Package config provides configuration loading and structs for bugloc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Eval      EvalConfig      `yaml:"eval"`
	Corpus    CorpusConfig    `yaml:"corpus"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the results database and persisted indexes.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexDir     string `yaml:"index_dir"`
	ResultsDir   string `yaml:"results_dir"`
	ReportsDir   string `yaml:"reports_dir"`
}

// EmbeddingConfig holds embedding capability settings.
type EmbeddingConfig struct {
	// Provider selects the embedding capability: "openai" or "mock".
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
	// MaxRetries bounds per-chunk retry attempts on embedding failure.
	MaxRetries int `yaml:"max_retries"`
	// Parallelism bounds concurrent embedding calls during an index build.
	Parallelism int `yaml:"parallelism"`
}

// RetrievalConfig holds chunking, BM25, and fusion settings.
type RetrievalConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`    // words per chunk
	ChunkOverlap   int     `yaml:"chunk_overlap"` // overlapping words between chunks
	TopKCandidates int     `yaml:"top_k_candidates"`
	TopN           int     `yaml:"top_n"`          // ranked list length
	LexicalWeight  float64 `yaml:"lexical_weight"` // fusion α in [0,1]
	BM25K1         float64 `yaml:"bm25_k1"`
	BM25B          float64 `yaml:"bm25_b"`
}

// EvalConfig holds evaluation settings.
type EvalConfig struct {
	HitKs []int `yaml:"hit_ks"`
}

// CorpusConfig holds source-file discovery settings.
type CorpusConfig struct {
	Extensions []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Defaults are applied first and the file is decoded over them: a field
	// absent from the YAML keeps its default, while an explicit zero (say
	// lexical_weight: 0 or bm25_b: 0) is a real value and survives.
	var cfg Config
	ApplyDefaults(&cfg)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexDir = expandPath(cfg.Storage.IndexDir, configDir)
	cfg.Storage.ResultsDir = expandPath(cfg.Storage.ResultsDir, configDir)
	cfg.Storage.ReportsDir = expandPath(cfg.Storage.ReportsDir, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects values that would make ranking undefined.
func (c *Config) Validate() error {
	if c.Retrieval.LexicalWeight < 0 || c.Retrieval.LexicalWeight > 1 {
		return fmt.Errorf("retrieval.lexical_weight must be in [0,1], got %v", c.Retrieval.LexicalWeight)
	}
	if c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("retrieval.chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Retrieval.ChunkOverlap, c.Retrieval.ChunkSize)
	}
	for _, k := range c.Eval.HitKs {
		if k <= 0 {
			return fmt.Errorf("eval.hit_ks must be positive, got %d", k)
		}
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
