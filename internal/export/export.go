// Package export writes extracted voter records as CSV or JSON files, or
// into a PostgreSQL table. Column names are the stable record field keys.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// TemplateColumn is appended to the record fields in tabular output.
const TemplateColumn = "template"

// Document is the exported result of one run.
type Document struct {
	RunID    string         `json:"run_id,omitempty"`
	Template string         `json:"template"`
	Records  []voter.Record `json:"records"`
	Summary  any            `json:"summary,omitempty"`
}

// Columns returns the tabular column names.
func Columns() []string {
	return append(append([]string(nil), voter.Fields...), TemplateColumn)
}

// Row returns the tabular values of one record.
func Row(rec voter.Record, template string) []string {
	return append(rec.Values(), template)
}

// ValidateFormat reports whether format is supported.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, FormatCSV:
		return nil
	}
	return fmt.Errorf("unsupported output format %q (want %s or %s)", format, FormatJSON, FormatCSV)
}

// Write encodes doc in the given format.
func Write(w io.Writer, format string, doc Document) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, doc)
	case FormatJSON:
		return WriteJSON(w, doc)
	}
	return ValidateFormat(format)
}

// WriteFile writes doc to path, or to stdout when path is empty or "-".
func WriteFile(path, format string, doc Document) error {
	if path == "" || path == "-" {
		return Write(os.Stdout, format, doc)
	}
	f, err := os.Create(path) //nolint:gosec // G304: output path is user-provided
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(f, format, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range doc.Records {
		if err := cw.Write(Row(rec, doc.Template)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", rec.ExtractionOrder, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	if doc.Records == nil {
		doc.Records = []voter.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
