package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/bugloc.db"
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = "./data/indexes"
	}
	if cfg.Storage.ResultsDir == "" {
		cfg.Storage.ResultsDir = "./data/results"
	}
	if cfg.Storage.ReportsDir == "" {
		cfg.Storage.ReportsDir = "./data/reports"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 3
	}
	if cfg.Embedding.Parallelism == 0 {
		cfg.Embedding.Parallelism = 8
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 512
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 50
	}
	if cfg.Retrieval.TopKCandidates == 0 {
		cfg.Retrieval.TopKCandidates = 100
	}
	if cfg.Retrieval.TopN == 0 {
		cfg.Retrieval.TopN = 100
	}
	if cfg.Retrieval.LexicalWeight == 0 {
		cfg.Retrieval.LexicalWeight = 0.3
	}
	if cfg.Retrieval.BM25K1 == 0 {
		cfg.Retrieval.BM25K1 = 1.2
	}
	if cfg.Retrieval.BM25B == 0 {
		cfg.Retrieval.BM25B = 0.75
	}
	if len(cfg.Eval.HitKs) == 0 {
		cfg.Eval.HitKs = []int{1, 5, 10}
	}
	if len(cfg.Corpus.Extensions) == 0 {
		cfg.Corpus.Extensions = []string{
			".go", ".py", ".java", ".js", ".ts", ".c", ".h", ".cpp", ".hpp", ".cs", ".php", ".vue",
		}
	}
}
