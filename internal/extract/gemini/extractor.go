// Package gemini implements the extractor contracts directly against the
// Gemini API. Unlike the llmfoundry proxy backend, it can request structured
// JSON output, so no fence cleanup is involved.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/pkg/pipeline/core"
	"google.golang.org/genai"
)

type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

type Extractor struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Extractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash-001"
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Extractor{client: client, model: model}, nil
}

var memberSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"first_name": {Type: genai.TypeString},
		"last_name":  {Type: genai.TypeString},
		"title":      {Type: genai.TypeString},
		"biography":  {Type: genai.TypeString},
		"source":     {Type: genai.TypeString},
	},
	Required: []string{"first_name", "last_name"},
}

var siteReportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"board_members":    {Type: genai.TypeArray, Items: memberSchema},
		"advisory_members": {Type: genai.TypeArray, Items: memberSchema},
		"status":           {Type: genai.TypeString, Enum: []string{"success", "not_found"}},
		"message":          {Type: genai.TypeString},
	},
	Required: []string{"board_members", "advisory_members", "status"},
}

type wireMember struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
	Biography string `json:"biography"`
	Source    string `json:"source"`
}

type wireSiteReport struct {
	BoardMembers    []wireMember `json:"board_members"`
	AdvisoryMembers []wireMember `json:"advisory_members"`
	Status          string       `json:"status"`
	Message         string       `json:"message"`
}

// ExtractSite implements extract.SiteExtractor.
func (e *Extractor) ExtractSite(ctx context.Context, url string) (extract.SiteReport, error) {
	resp, err := e.client.Models.GenerateContent(
		ctx,
		e.model,
		genai.Text(sitePrompt(url)),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			CandidateCount:   1,
			Temperature:      genai.Ptr[float32](0),
			ResponseMIMEType: "application/json",
			ResponseSchema:   siteReportSchema,
		},
	)
	if err != nil {
		return extract.SiteReport{}, classifyErr(err)
	}

	var wire wireSiteReport
	if err := json.Unmarshal([]byte(resp.Text()), &wire); err != nil {
		return extract.SiteReport{}, fmt.Errorf("gemini: parse site report: %w", err)
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

// ExtractRecords implements extract.RecordExtractor. The record schema is the
// flat spreadsheet shape whose keys double as CSV column names, so the reply
// is requested as a JSON array and decoded loosely.
func (e *Extractor) ExtractRecords(ctx context.Context, url string) ([]extract.RawRecord, error) {
	resp, err := e.client.Models.GenerateContent(
		ctx,
		e.model,
		genai.Text(recordsPrompt(url)),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			CandidateCount:   1,
			Temperature:      genai.Ptr[float32](0),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, classifyErr(err)
	}

	var records []extract.RawRecord
	if err := json.Unmarshal([]byte(resp.Text()), &records); err != nil {
		return nil, fmt.Errorf("gemini: parse member records: %w", err)
	}
	return records, nil
}

func classifyErr(err error) error {
	// Wrap transient failures so the worker pool may retry when configured.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return &core.TransientError{Err: err}
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &core.TransientError{Err: err}
	}
	return err
}
