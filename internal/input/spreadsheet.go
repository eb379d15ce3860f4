package input

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultURLColumn is the spreadsheet header the single-shot path looks for.
const DefaultURLColumn = "Portfolio company Website"

// ReadSiteURLs reads an Excel workbook and returns the values of the named
// URL column from the first sheet, skipping blank cells and repeated URLs
// (first-seen order). Other columns are ignored.
func ReadSiteURLs(r io.Reader, column string) ([]string, error) {
	if strings.TrimSpace(column) == "" {
		column = DefaultURLColumn
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing required column %q", column)
	}

	colIdx := -1
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", column)
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, row := range rows[1:] {
		if colIdx >= len(row) {
			continue
		}
		url := strings.TrimSpace(row[colIdx])
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls, nil
}
