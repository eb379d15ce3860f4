package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/scoutline/board-member-search/internal/config"
	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/internal/extract/gemini"
	"github.com/scoutline/board-member-search/internal/extract/llmfoundry"
	"github.com/scoutline/board-member-search/internal/input"
	"github.com/scoutline/board-member-search/internal/search"
	"github.com/scoutline/board-member-search/internal/server"
	"github.com/scoutline/board-member-search/internal/verify"
	"github.com/scoutline/board-member-search/pkg/pipeline/redact"
)

func main() {
	ctx := context.Background()

	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "search":
		os.Exit(runSearch(ctx, os.Args[2:]))
	case "verify":
		os.Exit(runVerify(ctx, os.Args[2:]))
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	addr := fs.String("addr", "", "Listen address override (env: SERVER_ADDR)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", redact.Secrets(err.Error()))
		return 2
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger error: %s\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	sites, records, err := newExtractors(context.Background(), cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "extractor error: %s\n", redact.Secrets(err.Error()))
		return 2
	}

	srv := server.New(cfg.Server, sites, records, cfg.PipelineOptions(), log)
	if err := srv.Run(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func runSearch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	inputPath := fs.String("input", "", "Input spreadsheet path (.xlsx or .xls)")
	outputPath := fs.String("output", search.OutputCSVName, "Output CSV path")
	urlColumn := fs.String("url-column", "", "Spreadsheet column holding website URLs (env: URL_COLUMN)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *inputPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "search requires --input")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", redact.Secrets(err.Error()))
		return 2
	}
	if *urlColumn != "" {
		cfg.Server.URLColumn = *urlColumn
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger error: %s\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	_, records, err := newExtractors(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "extractor error: %s\n", redact.Secrets(err.Error()))
		return 2
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "open input: %s\n", err)
		return 1
	}
	urls, err := input.ReadSiteURLs(f, cfg.Server.URLColumn)
	_ = f.Close()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "read spreadsheet: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	if len(urls) == 0 {
		_, _ = fmt.Fprintf(os.Stderr, "no website URLs found in column %q\n", cfg.Server.URLColumn)
		return 1
	}

	summary, err := search.Run(ctx, urls, records, *outputPath, cfg.PipelineOptions(), log)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "search failed: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	fmt.Printf("processed %d sites: %d with data, %d not found, %d failed, %d rows -> %s\n",
		summary.Sites, summary.WithData, summary.NotFound, summary.Failed, summary.TotalRows, *outputPath)
	return 0
}

func runVerify(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	inputPath := fs.String("input", "", "Input member table CSV path")
	outputDir := fs.String("output-dir", ".", "Directory for the result bundle")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *inputPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "verify requires --input")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", redact.Secrets(err.Error()))
		return 2
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger error: %s\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	sites, _, err := newExtractors(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "extractor error: %s\n", redact.Secrets(err.Error()))
		return 2
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "open input: %s\n", err)
		return 1
	}
	table, err := input.ReadMemberTable(f)
	_ = f.Close()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "read member table: %s\n", redact.Secrets(err.Error()))
		return 1
	}

	results, err := verify.Run(ctx, table, sites, cfg.PipelineOptions(), log)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "verify failed: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	bundle, err := verify.WriteArtifacts(*outputDir, table, results)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write artifacts: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	fmt.Printf("verified %d sites -> %s\n", len(results), bundle)
	return 0
}

// newExtractors builds both extractor views of the configured backend. The
// llmfoundry client serves both interfaces from one value.
func newExtractors(ctx context.Context, cfg config.Config) (extract.SiteExtractor, extract.RecordExtractor, error) {
	switch cfg.API.Backend {
	case config.BackendGemini:
		ex, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.API.GeminiAPIKey,
			Model:   cfg.API.Model,
			BaseURL: cfg.API.BaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return ex, ex, nil
	default:
		ex, err := llmfoundry.New(llmfoundry.Config{
			Token:   cfg.API.Token,
			Project: cfg.API.Project,
			BaseURL: cfg.API.BaseURL,
			Model:   cfg.API.Model,
		})
		if err != nil {
			return nil, nil, err
		}
		return ex, ex, nil
	}
}

func newLogger(cfg config.Logging) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = level
	}
	return zc.Build()
}

func usage(w *os.File) {
	_, _ = fmt.Fprintf(w, `boardsearch: board member extraction pipeline (web + CLI modes)

Usage:
  boardsearch <command> [flags]

Commands:
  serve    Start the upload web front end
  search   Process a URL spreadsheet into a combined board member CSV
  verify   Re-check a member table CSV and produce a feedback bundle

Examples:
  boardsearch serve --addr :8080
  boardsearch search --input companies.xlsx --output combined_board_members.csv
  boardsearch verify --input members.csv --output-dir out/

Environment:
  LLM_FOUNDRY_TOKEN     API token for the llmfoundry backend (required)
  LLM_FOUNDRY_PROJECT   Project name appended to the bearer credential
  LLM_FOUNDRY_BASE_URL  Base URL override for the llmfoundry backend
  EXTRACT_BACKEND       Extractor backend: llmfoundry (default) or gemini
  EXTRACT_MODEL         Model name override
  GEMINI_API_KEY        API key for the gemini backend
  WORKERS               Concurrent site workers (default 5)
  MAX_RETRIES           Retries per site for transient failures (default 0)
  REQUEST_TIMEOUT       Per-site request timeout (default 30s)
  RATE_LIMIT_RPS        Global request rate limit, 0 disables
  SERVER_ADDR           Listen address for serve (default :8080)
  URL_COLUMN            Spreadsheet URL column (default %q)

`, input.DefaultURLColumn)
}
