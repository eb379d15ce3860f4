// Package extract defines the domain types and extractor contracts shared by
// both processing paths: the verification run (site-level reports deduped
// against an existing dataset) and the single-shot run (full spreadsheet rows
// per member).
package extract

import "context"

// Member is one board or advisory board member as reported by the model.
type Member struct {
	FirstName string
	LastName  string
	Title     string
	Biography string
	Source    string
}

// Search statuses reported by the model for one site.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
	StatusUnknown  = "unknown"
)

// SiteReport is the structured reply for one website in the verification path.
type SiteReport struct {
	BoardMembers    []Member
	AdvisoryMembers []Member
	Status          string
	Message         string
}

// AllMembers merges board and advisory members, board first, preserving the
// model's ordering within each group.
func (r SiteReport) AllMembers() []Member {
	out := make([]Member, 0, len(r.BoardMembers)+len(r.AdvisoryMembers))
	out = append(out, r.BoardMembers...)
	out = append(out, r.AdvisoryMembers...)
	return out
}

// RawRecord is one loosely-typed member record from the single-shot reply.
// Keys may be partially absent; values are whatever the model emitted.
type RawRecord map[string]any

// SiteExtractor retrieves a structured board/advisory report for one site.
type SiteExtractor interface {
	ExtractSite(ctx context.Context, url string) (SiteReport, error)
}

// RecordExtractor retrieves loosely-typed member records for one site.
type RecordExtractor interface {
	ExtractRecords(ctx context.Context, url string) ([]RawRecord, error)
}
