// Package verify runs the verification path: every distinct site URL from an
// uploaded member table goes through the extractor, freshly found members are
// deduped against the rows already known for that URL, and each site gets a
// feedback label measuring how much the run added.
package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/internal/input"
	"github.com/scoutline/board-member-search/internal/members"
	"github.com/scoutline/board-member-search/internal/report"
	"github.com/scoutline/board-member-search/pkg/pipeline/redact"
	"github.com/scoutline/board-member-search/pkg/pipeline/worker"
)

// Artifact names inside the result bundle.
const (
	EnhancedCSVName = "enhanced_board_members.csv"
	FeedbackCSVName = "model_feedback.csv"
	BundleName      = "feedback_results.zip"
)

// SiteResult is the outcome for one URL. Feedback is a GOOD/AVERAGE/POOR
// label for completed tasks and an error string for failed ones; SearchStatus
// is the model-reported status, or "error" when the task failed.
type SiteResult struct {
	URL          string
	NewMembers   []extract.Member
	Feedback     string
	SearchStatus string
}

// Run processes every distinct URL in the table through the extractor.
// Per-task failures degrade to an error-shaped SiteResult and never abort the
// batch; cancelling ctx does. Results come back in input URL order.
func Run(ctx context.Context, table *input.Table, ex extract.SiteExtractor, opts worker.Options, log *zap.Logger) ([]SiteResult, error) {
	urls := table.URLs()
	log.Info("starting verification batch",
		zap.Int("sites", len(urls)),
		zap.Int("workers", opts.Workers),
	)

	process := func(reqCtx context.Context, url string) (SiteResult, error) {
		existing := table.ExistingMembers(url)

		rep, err := ex.ExtractSite(reqCtx, url)
		if err != nil {
			return SiteResult{}, err
		}

		newMembers := members.FilterNew(rep.AllMembers(), existing)
		status := rep.Status
		if status == "" {
			status = extract.StatusUnknown
		}
		log.Info("site processed",
			zap.String("url", url),
			zap.String("status", status),
			zap.Int("existing", len(existing)),
			zap.Int("new_members", len(newMembers)),
		)
		return SiteResult{
			URL:          url,
			NewMembers:   newMembers,
			Feedback:     members.Score(len(newMembers)),
			SearchStatus: status,
		}, nil
	}

	// One task's failure degrades its own result only.
	opts.FailurePolicy = worker.FailurePolicyPartialOutput
	out, err := worker.ProcessAll(ctx, urls, process, opts)
	if err != nil {
		return nil, err
	}

	results := make([]SiteResult, 0, len(out))
	for _, item := range out {
		if item.Err != nil {
			log.Warn("site failed",
				zap.String("url", item.Input),
				zap.Error(item.Err),
			)
			results = append(results, SiteResult{
				URL:          item.Input,
				Feedback:     "Error processing website: " + redact.Secrets(item.Err.Error()),
				SearchStatus: extract.StatusError,
			})
			continue
		}
		results = append(results, item.Output)
	}
	return results, nil
}

// BuildEnhancedTable returns a copy of the input table with one appended row
// per newly found member. Original rows pass through untouched; the source
// columns are added to the header when the input lacks them so member source
// URLs survive minimum-schema uploads.
func BuildEnhancedTable(table *input.Table, results []SiteResult) *input.Table {
	out := table.Clone()
	out.EnsureColumns(input.ColTitleSource, input.ColBiographySource)
	for _, res := range results {
		for _, m := range res.NewMembers {
			out.AppendRow(map[string]string{
				input.ColWebsiteURL:      res.URL,
				input.ColStatus:          "BOM Available",
				input.ColComments:        "Added by automated search",
				input.ColFirstName:       m.FirstName,
				input.ColLastName:        m.LastName,
				input.ColTitle:           m.Title,
				input.ColTitleSource:     m.Source,
				input.ColBiography:       m.Biography,
				input.ColBiographySource: m.Source,
			})
		}
	}
	return out
}

// FeedbackHeader returns the feedback table's column set.
func FeedbackHeader() []string {
	return []string{"Website URL", "Search Status", "New Members Found", "Feedback"}
}

// FeedbackRows renders one feedback row per site result.
func FeedbackRows(results []SiteResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.URL,
			res.SearchStatus,
			strconv.Itoa(len(res.NewMembers)),
			res.Feedback,
		})
	}
	return rows
}

// WriteArtifacts writes the enhanced member table and the feedback table into
// dir and bundles both into a zip. Returns the bundle path.
func WriteArtifacts(dir string, table *input.Table, results []SiteResult) (string, error) {
	enhancedPath := filepath.Join(dir, EnhancedCSVName)
	feedbackPath := filepath.Join(dir, FeedbackCSVName)

	enhanced := BuildEnhancedTable(table, results)
	f, err := os.Create(enhancedPath)
	if err != nil {
		return "", fmt.Errorf("create enhanced csv: %w", err)
	}
	if err := enhanced.WriteCSV(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	ff, err := os.Create(feedbackPath)
	if err != nil {
		return "", fmt.Errorf("create feedback csv: %w", err)
	}
	if err := report.WriteTable(ff, FeedbackHeader(), FeedbackRows(results)); err != nil {
		_ = ff.Close()
		return "", err
	}
	if err := ff.Close(); err != nil {
		return "", err
	}

	bundlePath := filepath.Join(dir, BundleName)
	if err := report.ZipFiles(bundlePath, enhancedPath, feedbackPath); err != nil {
		return "", err
	}
	return bundlePath, nil
}
