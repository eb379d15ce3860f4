// Package search runs the single-shot path: every distinct URL from an
// uploaded spreadsheet goes through the extractor and the normalized rows are
// appended to one output CSV as each site completes.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/internal/members"
	"github.com/scoutline/board-member-search/internal/report"
	"github.com/scoutline/board-member-search/pkg/pipeline/worker"
)

// OutputCSVName is the download filename for the single-shot result.
const OutputCSVName = "combined_board_members.csv"

// Summary counts outcomes for one run.
type Summary struct {
	Sites     int
	WithData  int
	NotFound  int
	Failed    int
	TotalRows int
}

// Run processes the URLs and appends results to the CSV at outPath in
// completion order. Rows are appended as sites finish, so a partially
// processed batch still leaves a usable artifact; failed sites contribute a
// Not Found row rather than aborting the run.
func Run(ctx context.Context, urls []string, ex extract.RecordExtractor, outPath string, opts worker.Options, log *zap.Logger) (Summary, error) {
	summary := Summary{Sites: len(urls)}
	log.Info("starting single-shot batch",
		zap.Int("sites", len(urls)),
		zap.Int("workers", opts.Workers),
		zap.String("output", outPath),
	)

	process := func(reqCtx context.Context, url string) ([]extract.RawRecord, error) {
		return ex.ExtractRecords(reqCtx, url)
	}

	// The append callback runs serially in the collector, so file writes
	// never interleave.
	onResult := func(res worker.Result[string, []extract.RawRecord]) error {
		var rows []members.Record
		switch {
		case res.Err != nil:
			log.Warn("site failed", zap.String("url", res.Input), zap.Error(res.Err))
			summary.Failed++
			rows = []members.Record{members.NotFound(res.Input, members.CommentAPIFailure)}
		case members.IsNoResultsSentinel(res.Output) || len(res.Output) == 0:
			summary.NotFound++
			rows = members.Normalize(res.Input, res.Output)
		default:
			summary.WithData++
			rows = members.Normalize(res.Input, res.Output)
		}

		summary.TotalRows += len(rows)
		log.Info("site processed",
			zap.String("url", res.Input),
			zap.Int("rows", len(rows)),
		)
		return report.AppendRecords(outPath, rows)
	}

	opts.FailurePolicy = worker.FailurePolicyPartialOutput
	if _, err := worker.ProcessAllWithCallback(ctx, urls, process, onResult, opts); err != nil {
		return summary, err
	}
	return summary, nil
}
