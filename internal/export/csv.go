// Package export writes saved analyses as CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"mediguard/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the history header row.
var columns = []string{
	"Bill Title",
	"Insurance Provider",
	"Total Billed",
	"Potential Savings",
	"Issues Found",
	"Summary",
	"Flagged Items",
	"Created At",
}

// CSVWriter wraps csv.Writer for exporting history records.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of records to rows and writes them.
func (w *CSVWriter) WriteRecords(recs []domain.HistoryRecord) error {
	for i := range recs {
		if err := w.csv.Write(recordToRow(&recs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes BOM, header and every record, then flushes.
func WriteCSV(out io.Writer, recs []domain.HistoryRecord) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewCSVWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRecords(recs); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// recordToRow converts a record to one row. Summary and flagged items come
// from the stored analysis and are left empty when it cannot be decoded.
func recordToRow(rec *domain.HistoryRecord) []string {
	row := make([]string, len(columns))
	row[0] = derefString(rec.BillTitle)
	row[1] = derefString(rec.InsuranceProvider)
	row[2] = formatMoney(rec.TotalBilled)
	row[3] = formatMoney(rec.PotentialSavings)
	if rec.IssuesFound != nil {
		row[4] = strconv.Itoa(*rec.IssuesFound)
	}
	row[7] = rec.CreatedAt.UTC().Format(time.RFC3339)

	if a := rec.Analysis(); a != nil {
		row[5] = a.Summary
		row[6] = flaggedItems(a.Items)
	}
	return row
}

// flaggedItems lists the incorrect items as "CODE description".
func flaggedItems(items []domain.LineItem) string {
	var parts []string
	for i := range items {
		if items[i].Status != domain.LineItemIncorrect {
			continue
		}
		parts = append(parts, strings.TrimSpace(items[i].CPTCode+" "+items[i].Description))
	}
	return strings.Join(parts, "; ")
}

func formatMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
