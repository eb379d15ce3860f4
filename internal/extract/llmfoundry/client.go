// Package llmfoundry implements both extractor contracts on top of the LLM
// Foundry Gemini proxy. The proxy speaks the raw generateContent REST shape
// and authenticates with a "Bearer <token>:<project>" credential, so this is
// a plain HTTP client rather than an SDK wrapper.
package llmfoundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/pkg/pipeline/core"
	"github.com/scoutline/board-member-search/pkg/pipeline/redact"
)

const (
	defaultBaseURL = "https://llmfoundry.straive.com"
	defaultModel   = "gemini-2.0-flash-001"
)

type Config struct {
	// Token is the LLM Foundry bearer token. Required.
	Token string
	// Project is appended to the credential as "<token>:<project>".
	Project string
	// BaseURL overrides the proxy base URL. Useful for testing.
	BaseURL string
	Model   string

	// HTTPClient overrides the transport. The worker pool applies the request
	// timeout through the context, so the zero-timeout default client is fine.
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	credential string
}

func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("llmfoundry: token is required")
	}
	credential := token
	if p := strings.TrimSpace(cfg.Project); p != "" {
		credential = token + ":" + p
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		model:      model,
		credential: credential,
	}, nil
}

// Wire types for the generateContent request/response envelope.

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type searchTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type generateRequest struct {
	SystemInstruction content          `json:"system_instruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	Tools             []searchTool     `json:"tools"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// APIError is a sanitized summary of a non-2xx proxy response. Bodies are
// redacted and truncated before they get anywhere near output rows.
type APIError struct {
	StatusCode int
	Status     string
	Snippet    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "llmfoundry api error"
	}
	if e.Snippet == "" {
		return fmt.Sprintf("llmfoundry api error: status=%s", e.Status)
	}
	return fmt.Sprintf("llmfoundry api error: status=%s body=%s", e.Status, e.Snippet)
}

// ErrMalformedReply reports a 2xx response without the expected
// candidates/content/parts structure.
var ErrMalformedReply = fmt.Errorf("llmfoundry: unexpected response structure")

// generate sends one system/user prompt pair and returns the first text part
// of the first candidate, uncleaned.
func (c *Client) generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	reqBody := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig:  generationConfig{Temperature: 0},
		Tools:             []searchTool{{}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llmfoundry: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/gemini/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llmfoundry: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llmfoundry: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("llmfoundry: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Snippet:    snippet(body),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode/100 == 5 {
			return "", &core.TransientError{Err: apiErr}
		}
		return "", apiErr
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("llmfoundry: decode response envelope: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrMalformedReply
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// CleanModelJSON strips markdown code fences and literal backslashes from the
// model's reply. The model is observed to wrap its JSON in ```json fences, so
// this is a required step before decoding; text without fences passes through
// unchanged.
func CleanModelJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, `\`, "")
	return strings.TrimSpace(s)
}

type wireMember struct {
	FirstName string `json:"First Name"`
	LastName  string `json:"Last Name"`
	Title     string `json:"Title"`
	Biography string `json:"Biography"`
	Source    string `json:"Source"`
}

type wireSiteReport struct {
	BoardMembers    []wireMember `json:"board_members"`
	AdvisoryMembers []wireMember `json:"advisory_members"`
	Status          string       `json:"status"`
	Message         string       `json:"message"`
}

// ExtractSite implements extract.SiteExtractor for the verification path.
func (c *Client) ExtractSite(ctx context.Context, url string) (extract.SiteReport, error) {
	text, err := c.generate(ctx, siteSystemPrompt, userPrompt(url))
	if err != nil {
		return extract.SiteReport{}, err
	}

	var wire wireSiteReport
	if err := json.Unmarshal([]byte(CleanModelJSON(text)), &wire); err != nil {
		return extract.SiteReport{}, fmt.Errorf("llmfoundry: parse site report: %w", err)
	}

	report := extract.SiteReport{
		Status:  strings.TrimSpace(wire.Status),
		Message: strings.TrimSpace(wire.Message),
	}
	if report.Status == "" {
		report.Status = extract.StatusUnknown
	}
	for _, m := range wire.BoardMembers {
		report.BoardMembers = append(report.BoardMembers, memberFromWire(m))
	}
	for _, m := range wire.AdvisoryMembers {
		report.AdvisoryMembers = append(report.AdvisoryMembers, memberFromWire(m))
	}
	return report, nil
}

func memberFromWire(m wireMember) extract.Member {
	return extract.Member{
		FirstName: strings.TrimSpace(m.FirstName),
		LastName:  strings.TrimSpace(m.LastName),
		Title:     strings.TrimSpace(m.Title),
		Biography: strings.TrimSpace(m.Biography),
		Source:    strings.TrimSpace(m.Source),
	}
}

// ExtractRecords implements extract.RecordExtractor for the single-shot path.
func (c *Client) ExtractRecords(ctx context.Context, url string) ([]extract.RawRecord, error) {
	text, err := c.generate(ctx, recordSystemPrompt, userPrompt(url))
	if err != nil {
		return nil, err
	}

	var records []extract.RawRecord
	if err := json.Unmarshal([]byte(CleanModelJSON(text)), &records); err != nil {
		return nil, fmt.Errorf("llmfoundry: parse member records: %w", err)
	}
	return records, nil
}

func snippet(body []byte) string {
	const max = 256
	b := body
	if len(b) > max {
		b = b[:max]
	}
	s := redact.Secrets(string(b))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(body) > max {
		return s + "..."
	}
	return s
}
