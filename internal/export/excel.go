package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bidrecon/internal/domain"
)

// WriteWorkbook renders the session's line items and analysis report into an
// xlsx workbook: one sheet per source collection plus a Comparison sheet when
// a report exists. Report fields are rendered verbatim, never re-derived.
func WriteWorkbook(w io.Writer, state *domain.SessionState) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheets := []struct {
		name  string
		items []domain.LineItem
	}{
		{"RFP Items", state.RFPItems},
		{"Bid Items", state.BidItems},
		{"Plan Quantities", state.PlanItems},
	}

	first := true
	for _, sheet := range sheets {
		if len(sheet.items) == 0 {
			continue
		}
		if err := addItemSheet(f, sheet.name, sheet.items, first); err != nil {
			return err
		}
		first = false
	}
	if state.Report != nil {
		if err := addComparisonSheet(f, state.Report, first); err != nil {
			return err
		}
		first = false
	}
	if first {
		// Nothing to export; leave the default sheet with a note.
		if err := f.SetCellValue("Sheet1", "A1", "No data in session"); err != nil {
			return fmt.Errorf("writing empty workbook: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, first bool) error {
	if first {
		// Reuse the default sheet for the first section.
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("renaming sheet: %w", err)
		}
		return nil
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %q: %w", name, err)
	}
	return nil
}

func addItemSheet(f *excelize.File, name string, items []domain.LineItem, first bool) error {
	if err := addSheet(f, name, first); err != nil {
		return err
	}

	header := []interface{}{"Item No", "Description", "Category", "Unit", "Quantity", "Unit Price", "Mandatory", "Notes"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range items {
		item := &items[i]
		row := []interface{}{
			item.ID,
			item.Description,
			string(item.Category),
			string(item.Unit),
			optionalCell(item.Quantity),
			optionalCell(item.UnitPrice),
			formatBool(item.Mandatory),
			item.Notes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return nil
}

func addComparisonSheet(f *excelize.File, report *domain.AnalysisReport, first bool) error {
	const name = "Comparison"
	if err := addSheet(f, name, first); err != nil {
		return err
	}

	summary := []interface{}{
		"Completeness", report.Completeness,
		"Accuracy", report.Accuracy,
		"Status", string(report.Status),
	}
	if err := f.SetSheetRow(name, "A1", &summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	header := []interface{}{"Status", "Severity", "RFP Item", "Bid Item", "Plan Item", "Description", "Deviation %", "Explanation"}
	if err := f.SetSheetRow(name, "A3", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range report.Results {
		r := &report.Results[i]
		row := []interface{}{
			string(r.Status),
			string(r.Severity),
			r.RFPItemID,
			r.BidItemID,
			r.PlanItemID,
			r.Description,
			optionalCell(r.DeviationPct),
			r.Explanation,
		}
		cell := fmt.Sprintf("A%d", i+4)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+4, err)
		}
	}
	return nil
}

// optionalCell keeps absent values as empty cells instead of zeroes.
func optionalCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
