package llmfoundry_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/internal/extract/llmfoundry"
	"github.com/scoutline/board-member-search/pkg/pipeline/core"
)

func replyWithText(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func newClient(t *testing.T, baseURL string) *llmfoundry.Client {
	t.Helper()
	c, err := llmfoundry.New(llmfoundry.Config{
		Token:   "test-token",
		Project: "test-project",
		BaseURL: baseURL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestExtractSite_ParsesFencedReport(t *testing.T) {
	t.Parallel()

	fenced := "```json\n{\"board_members\": [{\"First Name\": \"John\", \"Last Name\": \"Doe\", \"Title\": \"Board Member\", \"Biography\": \"Bio\", \"Source\": \"https://acme.example/about\"}], \"advisory_members\": [], \"status\": \"success\", \"message\": \"found 1\"}\n```"

	var gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = json.Marshal(decodeBody(t, r))
		replyWithText(t, w, fenced)
	}))
	defer srv.Close()

	report, err := newClient(t, srv.URL).ExtractSite(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer test-token:test-project" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if report.Status != extract.StatusSuccess {
		t.Fatalf("unexpected status: %q", report.Status)
	}
	if len(report.BoardMembers) != 1 || report.BoardMembers[0].FirstName != "John" || report.BoardMembers[0].LastName != "Doe" {
		t.Fatalf("unexpected board members: %#v", report.BoardMembers)
	}

	var req map[string]any
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal captured body: %v", err)
	}
	gen, ok := req["generationConfig"].(map[string]any)
	if !ok || gen["temperature"] != float64(0) {
		t.Fatalf("expected temperature 0, got %#v", req["generationConfig"])
	}
	tools, ok := req["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("expected google_search tool, got %#v", req["tools"])
	}
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func TestExtractSite_MissingStatusBecomesUnknown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		replyWithText(t, w, `{"board_members": [], "advisory_members": []}`)
	}))
	defer srv.Close()

	report, err := newClient(t, srv.URL).ExtractSite(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != extract.StatusUnknown {
		t.Fatalf("expected unknown status, got %q", report.Status)
	}
}

func TestExtractRecords_ParsesLooseRecords(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		replyWithText(t, w, "```json\n[{\"Status\": \"BOM Available\", \"First Name\": \"Ada\", \"Undergrad Year\": \"1995\"}]\n```")
	}))
	defer srv.Close()

	records, err := newClient(t, srv.URL).ExtractRecords(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["First Name"] != "Ada" {
		t.Fatalf("unexpected record: %#v", records[0])
	}
}

func TestExtractSite_ServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).ExtractSite(context.Background(), "https://acme.example")
	var te *core.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("expected transient error, got %v", err)
	}
	var apiErr *llmfoundry.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}
}

func TestExtractSite_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad credential", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).ExtractSite(context.Background(), "https://acme.example")
	var te *core.TransientError
	if errors.As(err, &te) {
		t.Fatalf("401 must not be transient: %v", err)
	}
	var apiErr *llmfoundry.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestExtractSite_MalformedEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).ExtractSite(context.Background(), "https://acme.example")
	if !errors.Is(err, llmfoundry.ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
}

func TestExtractSite_UnparsableReply(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		replyWithText(t, w, "I could not find any board members, sorry!")
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).ExtractSite(context.Background(), "https://acme.example")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCleanModelJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"backslashes", `{"a": "b\\c"}`, `{"a": "bc"}`},
		{"noop without fences", `{"a": 1}`, `{"a": 1}`},
		{"idempotent", llmfoundry.CleanModelJSON("```json\n{}\n```"), "{}"},
	}
	for _, tc := range cases {
		if got := llmfoundry.CleanModelJSON(tc.in); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNew_RequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := llmfoundry.New(llmfoundry.Config{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}
