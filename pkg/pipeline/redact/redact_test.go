package redact_test

import (
	"strings"
	"testing"

	"github.com/scoutline/board-member-search/pkg/pipeline/redact"
)

func TestSecrets_RedactsBearerToken(t *testing.T) {
	t.Parallel()

	in := `Post "https://llmfoundry.example/v1": Authorization header Bearer abc123:my-project rejected`
	out := redact.Secrets(in)
	if strings.Contains(out, "abc123") {
		t.Fatalf("token leaked: %q", out)
	}
	if !strings.Contains(out, "Bearer <redacted>") {
		t.Fatalf("expected redaction marker, got %q", out)
	}
}

func TestSecrets_RedactsKeyValueForms(t *testing.T) {
	t.Parallel()

	in := "config rejected: llm_foundry_token=sk-deadbeef api_key: xyz"
	out := redact.Secrets(in)
	if strings.Contains(out, "sk-deadbeef") || strings.Contains(out, "xyz") {
		t.Fatalf("secret leaked: %q", out)
	}
}

func TestSecrets_NoopOnPlainText(t *testing.T) {
	t.Parallel()

	in := "connection refused"
	if out := redact.Secrets(in); out != in {
		t.Fatalf("expected no-op, got %q", out)
	}
}
