// Package report writes the output artifacts: the append-mode single-shot
// CSV, plain CSV tables, and the verification zip bundle.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/scoutline/board-member-search/internal/members"
)

// AppendRecords appends member records to the CSV at path, creating it if
// needed. The header is written exactly once: only when the file is new or
// empty. Safe to call repeatedly as per-URL results arrive.
func AppendRecords(path string, recs []members.Record) error {
	if len(recs) == 0 {
		return nil
	}

	writeHeader := true
	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
		writeHeader = false
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output csv: %w", err)
	}

	cw := csv.NewWriter(f)
	if writeHeader {
		if err := cw.Write(members.Columns()); err != nil {
			_ = f.Close()
			return err
		}
	}
	for _, rec := range recs {
		if err := cw.Write(rec.Values()); err != nil {
			_ = f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteTable writes a header plus rows as CSV.
func WriteTable(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
