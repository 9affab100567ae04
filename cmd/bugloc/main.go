// Package main is the bugloc CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bugloc/bugloc/internal/cli"
	"github.com/bugloc/bugloc/internal/config"
	"github.com/bugloc/bugloc/internal/corpus"
	"github.com/bugloc/bugloc/internal/embedding"
	"github.com/bugloc/bugloc/internal/eval"
	"github.com/bugloc/bugloc/internal/indexer"
	"github.com/bugloc/bugloc/internal/lexical"
	"github.com/bugloc/bugloc/internal/models"
	"github.com/bugloc/bugloc/internal/queries"
	"github.com/bugloc/bugloc/internal/search"
	"github.com/bugloc/bugloc/internal/server"
	"github.com/bugloc/bugloc/internal/storage"
	"github.com/bugloc/bugloc/internal/watcher"
	"github.com/bugloc/bugloc/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/bugloc/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys may live in a local .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "index":
		runIndex()
	case "rank":
		runRank()
	case "evaluate":
		runEvaluate()
	case "serve":
		runServe()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("bugloc version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components holds the services shared by every command.
type components struct {
	Config   *config.Config
	Logger   *zap.Logger
	Analyzer *lexical.Analyzer
	Embedder embedding.Embedder
	Engine   *search.Engine
}

func (c *components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimensions), nil
	case "openai", "":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set (use embedding.provider: mock for offline runs)")
		}
		return embedding.NewOpenAIEmbedder(apiKey, cfg.Embedding.Model, cfg.Embedding.Dimensions, cfg.Embedding.CacheSize)
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
}

func initializeComponents(configPath string, debug bool) (*components, error) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath))

	analyzer, err := lexical.NewAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	engine := search.NewEngine(analyzer, embedder, &cfg.Retrieval, search.WithLogger(logger))
	return &components{
		Config:   cfg,
		Logger:   logger,
		Analyzer: analyzer,
		Embedder: embedder,
		Engine:   engine,
	}, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	project := fs.String("project", "", "project name (required)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *project == "" || fs.NArg() < 1 {
		fmt.Println("Usage: bugloc index -project <name> [flags] <source-dir>")
		os.Exit(1)
	}
	sourceDir := fs.Arg(0)

	c, err := initializeComponents(*configPath, *debug)
	if err != nil {
		fatal("%v", err)
	}
	defer c.Close()

	loader := corpus.NewLoader(c.Config.Corpus.Extensions, corpus.WithLogger(c.Logger))
	files, err := loader.Load(sourceDir)
	if err != nil {
		fatal("Failed to load corpus: %v", err)
	}

	builder := indexer.NewBuilder(c.Analyzer, c.Embedder, c.Config, indexer.WithLogger(c.Logger))
	proj, err := builder.Build(context.Background(), *project, files)
	if err != nil {
		fatal("Index build failed: %v", err)
	}
	if err := proj.Save(c.Config.Storage.IndexDir); err != nil {
		fatal("Failed to save indexes: %v", err)
	}
	fmt.Printf("Indexed %d file(s), %d chunk(s) for project %s\n",
		len(files), proj.Lexical.Len(), *project)
}

func runRank() {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	project := fs.String("project", "", "project name (required)")
	queriesDir := fs.String("queries", "", "query directory for batch ranking")
	bugID := fs.String("bug", "adhoc", "bug ID for an ad-hoc query")
	familyFlag := fs.String("family", "basic", "query family for an ad-hoc query")
	variantFlag := fs.String("variant", "baseline", "query variant for an ad-hoc query")
	alpha := fs.Float64("alpha", -1, "lexical fusion weight override in [0,1] (-1 = use config)")
	topN := fs.Int("top", 0, "ranked list length override (0 = use config)")
	outputFormat := fs.String("output", "text", "output format for ad-hoc queries: text, json, or yaml")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *project == "" {
		fmt.Println("Usage: bugloc rank -project <name> [-queries <dir> | [flags] <query text>]")
		os.Exit(1)
	}

	c, err := initializeComponents(*configPath, *debug)
	if err != nil {
		fatal("%v", err)
	}
	defer c.Close()

	proj, err := indexer.LoadProject(c.Config.Storage.IndexDir, *project, c.Config.Embedding.Dimensions)
	if err != nil {
		fatal("Failed to load indexes (run \"bugloc index\" first): %v", err)
	}

	opts := &search.Options{TopN: *topN}
	if *alpha >= 0 {
		if *alpha > 1 {
			fatal("alpha must be in [0,1], got %v", *alpha)
		}
		opts.LexicalWeight = alpha
	}
	ctx := context.Background()

	if *queriesDir != "" {
		runRankBatch(ctx, c, proj, *queriesDir, opts)
		return
	}

	queryText := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryText == "" {
		fmt.Println("Usage: bugloc rank -project <name> [-queries <dir> | [flags] <query text>]")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatal("%v", err)
	}
	family, err := models.ParseFamily(*familyFlag)
	if err != nil {
		fatal("%v", err)
	}
	variant, err := models.ParseVariant(*variantFlag)
	if err != nil {
		fatal("%v", err)
	}
	q := &models.Query{BugID: *bugID, Family: family, Variant: variant, Text: queryText}
	rl, err := c.Engine.Rank(ctx, proj, q, opts)
	if err != nil {
		fatal("Ranking failed: %v", err)
	}
	if err := cli.WriteRankedList(os.Stdout, rl, format); err != nil {
		fatal("Output failed: %v", err)
	}
}

// runRankBatch ranks every query file in dir, writes the ranked-list artifacts
// to the results directory, and records the batch as a run in the database.
func runRankBatch(ctx context.Context, c *components, proj *indexer.Project, dir string, opts *search.Options) {
	loader := queries.NewLoader(queries.WithLogger(c.Logger))
	qs, err := loader.LoadDir(dir)
	if err != nil {
		fatal("Failed to load queries: %v", err)
	}
	if len(qs) == 0 {
		fatal("No queries found under %s", dir)
	}

	store, err := storage.NewStore(c.Config.Storage.DatabasePath)
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	defer store.Close()

	runID, err := store.BeginRun(ctx, proj.Name)
	if err != nil {
		fatal("Failed to create run: %v", err)
	}

	resultsDir := filepath.Join(c.Config.Storage.ResultsDir, proj.Name)
	ranked := 0
	for _, q := range qs {
		rl, err := c.Engine.Rank(ctx, proj, q, opts)
		if err != nil {
			c.Logger.Warn("query skipped",
				zap.String("bug_id", q.BugID),
				zap.String("family", string(q.Family)),
				zap.String("variant", string(q.Variant)),
				zap.Error(err))
			continue
		}
		if err := eval.WriteRankedList(resultsDir, rl); err != nil {
			fatal("Failed to write ranked list: %v", err)
		}
		if err := store.SaveRankedList(ctx, runID, rl); err != nil {
			fatal("Failed to save ranked list: %v", err)
		}
		ranked++
	}
	fmt.Printf("Ranked %d of %d queries for project %s (run %s)\n", ranked, len(qs), proj.Name, runID)
}

func runEvaluate() {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	project := fs.String("project", "", "project name (required)")
	groundTruthPath := fs.String("ground-truth", "", "ground-truth file (required)")
	resultsDir := fs.String("results", "", "read ranked-list artifacts from this directory instead of the latest run")
	familyFlag := fs.String("family", "", "evaluate a single query family (default: all)")
	outputFormat := fs.String("output", "text", "output format: text, json, or yaml")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *project == "" || *groundTruthPath == "" {
		fmt.Println("Usage: bugloc evaluate -project <name> -ground-truth <file> [flags]")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatal("%v", err)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fatal("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	gt, err := eval.LoadGroundTruth(*groundTruthPath)
	if err != nil {
		fatal("Failed to load ground truth: %v", err)
	}

	ctx := context.Background()
	store, err := storage.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	defer store.Close()

	var lists map[models.QueryKey][]string
	var runID string
	if *resultsDir != "" {
		lists, err = eval.ReadRankedLists(*resultsDir)
		if err != nil {
			fatal("Failed to read ranked lists: %v", err)
		}
		runID, err = store.BeginRun(ctx, *project)
		if err != nil {
			fatal("Failed to create run: %v", err)
		}
	} else {
		runID, err = store.LatestRunID(ctx, *project)
		if err != nil {
			fatal("No runs recorded (run \"bugloc rank -queries\" first): %v", err)
		}
		lists, err = store.ListRankedLists(ctx, runID)
		if err != nil {
			fatal("Failed to load ranked lists: %v", err)
		}
	}

	families := models.Families()
	if *familyFlag != "" {
		family, err := models.ParseFamily(*familyFlag)
		if err != nil {
			fatal("%v", err)
		}
		families = []models.QueryFamily{family}
	}

	for _, family := range families {
		report := eval.Evaluate(*project, family, lists, gt, cfg.Eval.HitKs)
		if err := store.SaveReport(ctx, runID, report); err != nil {
			fatal("Failed to save report: %v", err)
		}
		if err := writeReportFile(cfg.Storage.ReportsDir, report); err != nil {
			fatal("Failed to write report file: %v", err)
		}
		if err := cli.WriteReport(os.Stdout, report, format); err != nil {
			fatal("Output failed: %v", err)
		}
		fmt.Println()
	}
}

func writeReportFile(dir string, report *models.MetricReport) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_report.yaml", report.Project, report.Family))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return cli.WriteReport(f, report, cli.OutputYAML)
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	project := fs.String("project", "", "project name (required)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *project == "" {
		fmt.Println("Usage: bugloc serve -project <name> [flags]")
		os.Exit(1)
	}
	c, err := initializeComponents(*configPath, *debug)
	if err != nil {
		fatal("%v", err)
	}
	defer c.Close()

	proj, err := indexer.LoadProject(c.Config.Storage.IndexDir, *project, c.Config.Embedding.Dimensions)
	if err != nil {
		fatal("Failed to load indexes (run \"bugloc index\" first): %v", err)
	}
	store, err := storage.NewStore(c.Config.Storage.DatabasePath)
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	defer store.Close()

	srv := server.NewServer(c.Engine, proj, store, &c.Config.Server, c.Logger)
	serveUntilSignal(c, srv, nil)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	project := fs.String("project", "", "project name (required)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *project == "" || fs.NArg() < 1 {
		fmt.Println("Usage: bugloc watch -project <name> [flags] <source-dir>")
		os.Exit(1)
	}
	sourceDir := fs.Arg(0)

	c, err := initializeComponents(*configPath, *debug)
	if err != nil {
		fatal("%v", err)
	}
	defer c.Close()

	loader := corpus.NewLoader(c.Config.Corpus.Extensions, corpus.WithLogger(c.Logger))
	builder := indexer.NewBuilder(c.Analyzer, c.Embedder, c.Config, indexer.WithLogger(c.Logger))

	build := func() (*indexer.Project, error) {
		files, err := loader.Load(sourceDir)
		if err != nil {
			return nil, err
		}
		proj, err := builder.Build(context.Background(), *project, files)
		if err != nil {
			return nil, err
		}
		if err := proj.Save(c.Config.Storage.IndexDir); err != nil {
			return nil, err
		}
		return proj, nil
	}

	proj, err := build()
	if err != nil {
		fatal("Initial index build failed: %v", err)
	}
	store, err := storage.NewStore(c.Config.Storage.DatabasePath)
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	defer store.Close()

	srv := server.NewServer(c.Engine, proj, store, &c.Config.Server, c.Logger)

	watchSvc := watcher.NewWatcher(sourceDir, c.Config.Corpus.Extensions, func() {
		rebuilt, err := build()
		if err != nil {
			c.Logger.Error("index rebuild failed, keeping previous indexes", zap.Error(err))
			return
		}
		srv.SetProject(rebuilt)
		c.Logger.Info("indexes rebuilt", zap.String("project", *project))
	}, watcher.WithLogger(c.Logger))

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		fatal("Failed to start watcher: %v", err)
	}
	serveUntilSignal(c, srv, func() {
		watchSvc.Stop()
	})
}

func serveUntilSignal(c *components, srv *server.Server, onShutdown func()) {
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	c.Logger.Info("Shutting down...")
	if onShutdown != nil {
		onShutdown()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Println(`bugloc - Hybrid retrieval engine for bug localization

Usage:
  bugloc index -project <name> <source-dir>     Build lexical and vector indexes
  bugloc rank -project <name> -queries <dir>    Rank all query files (batch run)
  bugloc rank -project <name> <query text>      Rank one ad-hoc query
  bugloc evaluate -project <name> -ground-truth <file>
                                                Score ranked lists and write reports
  bugloc serve -project <name>                  Start the HTTP API
  bugloc watch -project <name> <source-dir>     Serve and rebuild indexes on changes
  bugloc version                                Show version
  bugloc help                                   Show this help

Common Flags:
  --config string   Config file path (default: /usr/local/etc/bugloc/config.yaml;
                    falls back to ./config.yaml when present)
  --debug           Enable debug logging

Rank Flags:
  --queries string  Query directory; one subdirectory per bug with
                    <bug>_<variant>_<family>_query.txt files
  --alpha float     Lexical fusion weight override in [0,1]
  --top int         Ranked list length override
  --bug string      Bug ID for an ad-hoc query (default: adhoc)
  --family string   basic, keybert, or reason (default: basic)
  --variant string  baseline or extended (default: baseline)
  --output string   Output format for ad-hoc queries: text, json, or yaml

Evaluate Flags:
  --ground-truth string  Ground-truth file ("bug_id count" header lines)
  --results string       Read ranked-list artifacts from a directory instead of
                         the latest recorded run
  --family string        Evaluate a single family (default: all)
  --output string        Output format: text, json, or yaml

Examples:
  bugloc index -project myapp ./src
  bugloc rank -project myapp -queries ./queries
  bugloc rank -project myapp null pointer in session handler
  bugloc evaluate -project myapp -ground-truth ./ground_truth.txt
  bugloc serve -project myapp
  bugloc watch -project myapp ./src`)
}
