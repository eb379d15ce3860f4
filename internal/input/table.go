// Package input loads the two upload formats: the verification path's member
// table CSV and the single-shot path's URL spreadsheet.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/scoutline/board-member-search/internal/extract"
)

// Column names the member table must carry. Any other columns are preserved
// verbatim on pass-through rows.
const (
	ColWebsiteURL = "Website URL"
	ColFirstName  = "First Name"
	ColLastName   = "Last Name"
	ColTitle      = "Title"
	ColBiography  = "Biography"
	ColStatus     = "Status"
	ColComments   = "Comments"
)

// Optional columns the enhanced output adds when the input lacks them.
const (
	ColTitleSource     = "Title Source"
	ColBiographySource = "Biography Source"
)

func requiredColumns() []string {
	return []string{ColWebsiteURL, ColFirstName, ColLastName, ColTitle, ColBiography, ColStatus, ColComments}
}

// Table is a member table with its original column set intact.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadMemberTable parses a member table CSV. A missing required column is
// fatal to the whole request; no partial processing happens after that.
func ReadMemberTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns() {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	t := &Table{Header: header, index: index}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		t.Rows = append(t.Rows, rec)
	}
}

// Get returns the named cell of a row, or "" when the row is short.
func (t *Table) Get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// URLs returns the distinct non-blank website URLs in first-seen order. Each
// distinct URL is processed once per batch even when it appears on many rows.
func (t *Table) URLs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.Rows {
		url := strings.TrimSpace(t.Get(row, ColWebsiteURL))
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

// ExistingMembers returns the known members for one URL, skipping rows
// without both a first and a last name.
func (t *Table) ExistingMembers(url string) []extract.Member {
	var out []extract.Member
	for _, row := range t.Rows {
		if strings.TrimSpace(t.Get(row, ColWebsiteURL)) != url {
			continue
		}
		first := strings.TrimSpace(t.Get(row, ColFirstName))
		last := strings.TrimSpace(t.Get(row, ColLastName))
		if first == "" || last == "" {
			continue
		}
		out = append(out, extract.Member{
			FirstName: first,
			LastName:  last,
			Title:     t.Get(row, ColTitle),
			Biography: t.Get(row, ColBiography),
		})
	}
	return out
}

// EnsureColumns appends any missing columns to the header. Existing rows stay
// short; WriteCSV pads them with empty cells.
func (t *Table) EnsureColumns(cols ...string) {
	for _, col := range cols {
		if _, ok := t.index[col]; ok {
			continue
		}
		t.index[col] = len(t.Header)
		t.Header = append(t.Header, col)
	}
}

// AppendRow adds a row populated from vals; columns not named in vals render
// as empty cells.
func (t *Table) AppendRow(vals map[string]string) {
	row := make([]string, len(t.Header))
	for col, v := range vals {
		if i, ok := t.index[col]; ok {
			row[i] = v
		}
	}
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy sharing no row storage with the receiver.
func (t *Table) Clone() *Table {
	out := &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, 0, len(t.Rows)),
		index:  make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

// WriteCSV writes the table with its original header and column order.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		// Pad short rows so every record has the full column set.
		if len(row) < len(t.Header) {
			padded := make([]string, len(t.Header))
			copy(padded, row)
			row = padded
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
