package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithTokenFromEnv(t *testing.T) {
	t.Setenv("LLM_FOUNDRY_TOKEN", "tok")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Backend != BackendLLMFoundry {
		t.Fatalf("unexpected backend %q", cfg.API.Backend)
	}
	if cfg.Pipeline.Workers != 5 {
		t.Fatalf("unexpected workers %d", cfg.Pipeline.Workers)
	}
	if time.Duration(cfg.Pipeline.RequestTimeout) != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Pipeline.RequestTimeout)
	}
	if cfg.Server.MaxUploadMB != 16 {
		t.Fatalf("unexpected upload cap %d", cfg.Server.MaxUploadMB)
	}
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	t.Setenv("LLM_FOUNDRY_TOKEN", "tok")
	t.Setenv("WORKERS", "12")

	path := filepath.Join(t.TempDir(), "config.yaml")
	fileYAML := `
api:
  project: myproject
pipeline:
  workers: 3
  request_timeout: 45s
server:
  addr: ":9000"
`
	if err := os.WriteFile(path, []byte(fileYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Env beats file, file beats default.
	if cfg.Pipeline.Workers != 12 {
		t.Fatalf("env override lost, workers=%d", cfg.Pipeline.Workers)
	}
	if time.Duration(cfg.Pipeline.RequestTimeout) != 45*time.Second {
		t.Fatalf("file timeout lost: %v", cfg.Pipeline.RequestTimeout)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("file addr lost: %q", cfg.Server.Addr)
	}
	if cfg.API.Project != "myproject" {
		t.Fatalf("file project lost: %q", cfg.API.Project)
	}
}

func TestLoad_MissingTokenFails(t *testing.T) {
	t.Setenv("LLM_FOUNDRY_TOKEN", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestLoad_GeminiBackendRequiresAPIKey(t *testing.T) {
	t.Setenv("EXTRACT_BACKEND", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for missing gemini key")
	}

	t.Setenv("GEMINI_API_KEY", "key")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Backend != BackendGemini {
		t.Fatalf("unexpected backend %q", cfg.API.Backend)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("LLM_FOUNDRY_TOKEN", "tok")
	t.Setenv("WORKERS", "many")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric WORKERS")
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	t.Setenv("LLM_FOUNDRY_TOKEN", "tok")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
