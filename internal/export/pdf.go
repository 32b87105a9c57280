package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"bidrecon/internal/domain"
)

// WriteReportPDF renders the analysis report as a printable summary. Scores
// and issue lists come straight from the report; nothing is recomputed here.
func WriteReportPDF(w io.Writer, state *domain.SessionState) error {
	report := state.Report
	if report == nil {
		return domain.ErrNoAnalysis
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(10, 10, 10)

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, "Bid Analysis Report")
	pdf.Ln(12)

	if state.ProjectInfo.ProjectName != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(190, 6, state.ProjectInfo.ProjectName)
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		if state.ProjectInfo.Owner != "" {
			pdf.Cell(190, 5, "Owner: "+state.ProjectInfo.Owner)
			pdf.Ln(5)
		}
		if state.ProjectInfo.Location != "" {
			pdf.Cell(190, 5, "Location: "+state.ProjectInfo.Location)
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 7, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, fmt.Sprintf("Completeness: %.1f%%", report.Completeness*100))
	pdf.Cell(95, 6, fmt.Sprintf("Accuracy: %.1f%%", report.Accuracy*100))
	pdf.Ln(6)
	pdf.Cell(95, 6, fmt.Sprintf("Status: %s", report.Status))
	pdf.Cell(95, 6, fmt.Sprintf("RFP items: %d  Bid items: %d  Plan: %d",
		report.Summary.RFPItems, report.Summary.BidItems, report.Summary.PlanItems))
	pdf.Ln(6)
	pdf.MultiCell(190, 6, report.StatusMessage, "", "L", false)
	pdf.Ln(4)

	writeIssueTable(pdf, "Critical Issues", report.CriticalIssues)
	writeIssueTable(pdf, "Warnings", report.Warnings)

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func writeIssueTable(pdf *gofpdf.Fpdf, title string, issues []domain.ComparisonResult) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 7, fmt.Sprintf("%s (%d)", title, len(issues)))
	pdf.Ln(8)

	if len(issues) == 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(190, 6, "None")
		pdf.Ln(8)
		return
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(40, 7, "Status", "1", 0, "L", true, 0, "")
	pdf.CellFormat(70, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Deviation", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Items", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i := range issues {
		r := &issues[i]
		deviation := ""
		if r.DeviationPct != nil {
			deviation = strconv.FormatFloat(*r.DeviationPct, 'f', 1, 64) + "%"
		}
		refs := r.RFPItemID
		if r.BidItemID != "" {
			refs += " / " + r.BidItemID
		}
		if r.PlanItemID != "" {
			refs += " / " + r.PlanItemID
		}
		pdf.CellFormat(40, 7, string(r.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, clip(r.Description, 45), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, deviation, "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 7, clip(refs, 35), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func clip(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
