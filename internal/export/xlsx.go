package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mediguard/internal/domain"
)

const (
	summarySheet = "Analyses"
	itemsSheet   = "Line Items"
)

var itemColumns = []string{
	"Bill Title",
	"CPT Code",
	"Description",
	"Amount",
	"Status",
	"Estimated Reasonable Amount",
	"Why",
}

// WriteXLSX writes a workbook with one summary row per record and one row
// per line item on a second sheet.
func WriteXLSX(out io.Writer, recs []domain.HistoryRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("export.WriteXLSX rename: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("export.WriteXLSX sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export.WriteXLSX style: %w", err)
	}
	if err := writeHeader(f, summarySheet, columns, bold); err != nil {
		return err
	}
	if err := writeHeader(f, itemsSheet, itemColumns, bold); err != nil {
		return err
	}

	itemRow := 2
	for i := range recs {
		rec := &recs[i]
		row := []interface{}{
			derefString(rec.BillTitle),
			derefString(rec.InsuranceProvider),
			numberOrBlank(rec.TotalBilled),
			numberOrBlank(rec.PotentialSavings),
			intOrBlank(rec.IssuesFound),
		}
		text := recordToRow(rec)
		row = append(row, text[5], text[6], rec.CreatedAt.UTC())
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}

		a := rec.Analysis()
		if a == nil {
			continue
		}
		for _, it := range a.Items {
			var estimate interface{} = ""
			if it.EstimatedReasonableAmount != nil {
				estimate = *it.EstimatedReasonableAmount
			}
			item := []interface{}{
				derefString(rec.BillTitle), it.CPTCode, it.Description,
				it.Amount, string(it.Status), estimate, it.Why,
			}
			if err := setRow(f, itemsSheet, itemRow, item); err != nil {
				return err
			}
			itemRow++
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("export.WriteXLSX write: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, n int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export.setRow %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func numberOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func intOrBlank(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
