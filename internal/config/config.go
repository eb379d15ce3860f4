// Package config loads runtime configuration from an optional YAML file with
// environment variable overrides. Environment always wins over the file so a
// deployment can ship one config file and still tune per-instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scoutline/board-member-search/internal/input"
	"github.com/scoutline/board-member-search/pkg/pipeline/worker"
)

// Extractor backends.
const (
	BackendLLMFoundry = "llmfoundry"
	BackendGemini     = "gemini"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	out, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(out)
	return nil
}

// API configures which extractor backend to use and how to reach it.
type API struct {
	Backend      string `yaml:"backend"`
	BaseURL      string `yaml:"base_url"`
	Token        string `yaml:"token"`
	Project      string `yaml:"project"`
	Model        string `yaml:"model"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// Pipeline configures the worker pool shared by both processing paths.
type Pipeline struct {
	Workers        int      `yaml:"workers"`
	MaxRetries     int      `yaml:"max_retries"`
	RequestTimeout Duration `yaml:"request_timeout"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
}

// Server configures the upload front end.
type Server struct {
	Addr        string `yaml:"addr"`
	UploadDir   string `yaml:"upload_dir"`
	DownloadDir string `yaml:"download_dir"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	URLColumn   string `yaml:"url_column"`
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the full runtime configuration.
type Config struct {
	API      API      `yaml:"api"`
	Pipeline Pipeline `yaml:"pipeline"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

// Default returns the configuration used when neither file nor environment
// sets a value.
func Default() Config {
	return Config{
		API: API{
			Backend: BackendLLMFoundry,
			BaseURL: "https://llmfoundry.straive.com",
			Model:   "gemini-2.0-flash-001",
		},
		Pipeline: Pipeline{
			Workers:        5,
			MaxRetries:     0,
			RequestTimeout: Duration(30 * time.Second),
		},
		Server: Server{
			Addr:        ":8080",
			UploadDir:   "uploads",
			DownloadDir: "downloads",
			MaxUploadMB: 16,
			URLColumn:   input.DefaultURLColumn,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is non-empty, then environment overrides. A missing file at an
// explicitly given path is an error; path == "" skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has its credential set.
func (c Config) Validate() error {
	switch c.API.Backend {
	case BackendLLMFoundry:
		if strings.TrimSpace(c.API.Token) == "" {
			return errors.New("LLM_FOUNDRY_TOKEN is required for the llmfoundry backend")
		}
	case BackendGemini:
		if strings.TrimSpace(c.API.GeminiAPIKey) == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		return fmt.Errorf("unknown extractor backend %q", c.API.Backend)
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Pipeline.Workers)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be positive, got %d MiB", c.Server.MaxUploadMB)
	}
	return nil
}

// PipelineOptions converts the pipeline section into worker pool options.
func (c Config) PipelineOptions() worker.Options {
	return worker.Options{
		Workers:        c.Pipeline.Workers,
		MaxRetries:     c.Pipeline.MaxRetries,
		RequestTimeout: time.Duration(c.Pipeline.RequestTimeout),
		RateLimitRPS:   c.Pipeline.RateLimitRPS,
	}
}

func applyEnv(cfg *Config) error {
	envString(&cfg.API.Backend, "EXTRACT_BACKEND")
	envString(&cfg.API.BaseURL, "LLM_FOUNDRY_BASE_URL")
	envString(&cfg.API.Token, "LLM_FOUNDRY_TOKEN")
	envString(&cfg.API.Project, "LLM_FOUNDRY_PROJECT")
	envString(&cfg.API.Model, "EXTRACT_MODEL")
	envString(&cfg.API.GeminiAPIKey, "GEMINI_API_KEY")

	if err := envInt(&cfg.Pipeline.Workers, "WORKERS"); err != nil {
		return err
	}
	if err := envInt(&cfg.Pipeline.MaxRetries, "MAX_RETRIES"); err != nil {
		return err
	}
	if err := envDuration(&cfg.Pipeline.RequestTimeout, "REQUEST_TIMEOUT"); err != nil {
		return err
	}
	if err := envFloat(&cfg.Pipeline.RateLimitRPS, "RATE_LIMIT_RPS"); err != nil {
		return err
	}

	envString(&cfg.Server.Addr, "SERVER_ADDR")
	envString(&cfg.Server.UploadDir, "UPLOAD_DIR")
	envString(&cfg.Server.DownloadDir, "DOWNLOAD_DIR")
	if err := envInt64(&cfg.Server.MaxUploadMB, "MAX_UPLOAD_MB"); err != nil {
		return err
	}
	envString(&cfg.Server.URLColumn, "URL_COLUMN")

	envString(&cfg.Logging.Level, "LOG_LEVEL")
	if err := envBool(&cfg.Logging.Development, "LOG_DEVELOPMENT"); err != nil {
		return err
	}
	return nil
}

func envString(dst *string, varName string) {
	if v := strings.TrimSpace(os.Getenv(varName)); v != "" {
		*dst = v
	}
}

func envInt(dst *int, varName string) error {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	*dst = out
	return nil
}

func envInt64(dst *int64, varName string) error {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return nil
	}
	out, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	*dst = out
	return nil
}

func envFloat(dst *float64, varName string) error {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	*dst = out
	return nil
}

func envDuration(dst *Duration, varName string) error {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	*dst = Duration(out)
	return nil
}

func envBool(dst *bool, varName string) error {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	*dst = out
	return nil
}
