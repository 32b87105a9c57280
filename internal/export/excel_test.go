package export_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bidrecon/internal/domain"
	"bidrecon/internal/export"
)

func sampleState() *domain.SessionState {
	return &domain.SessionState{
		ID:          "test-session",
		ProjectInfo: domain.ProjectInfo{ProjectName: "SH-130 Widening"},
		RFPItems: []domain.LineItem{
			{ID: "100-1", Description: "Unclassified Excavation", Unit: domain.UnitCY, Quantity: qty(12500), Category: domain.CategoryEarthwork, Source: domain.SourceRFP},
		},
		BidItems: []domain.LineItem{
			{ID: "B-1", Description: "Excavation", Unit: domain.UnitCY, Quantity: qty(12400), Category: domain.CategoryEarthwork, Source: domain.SourceBid},
		},
		Report: &domain.AnalysisReport{
			Completeness: 1.0,
			Accuracy:     1.0,
			Status:       domain.BidStatusReady,
			Results: []domain.ComparisonResult{
				{
					Status:      domain.StatusMatchedConsistent,
					RFPItemID:   "100-1",
					BidItemID:   "B-1",
					Description: "Unclassified Excavation",
					Explanation: "quantities agree within tolerance",
				},
			},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, sampleState()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"RFP Items", "Bid Items", "Comparison"}, f.GetSheetList())

	t.Run("item_sheet_rows", func(t *testing.T) {
		got, err := f.GetCellValue("RFP Items", "B2")
		require.NoError(t, err)
		assert.Equal(t, "Unclassified Excavation", got)

		unit, err := f.GetCellValue("RFP Items", "D2")
		require.NoError(t, err)
		assert.Equal(t, "CY", unit)
	})

	t.Run("comparison_sheet", func(t *testing.T) {
		status, err := f.GetCellValue("Comparison", "F1")
		require.NoError(t, err)
		assert.Equal(t, "ready", status)

		result, err := f.GetCellValue("Comparison", "A4")
		require.NoError(t, err)
		assert.Equal(t, "matched_consistent", result)
	})
}

func TestWriteWorkbook_EmptySession(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, &domain.SessionState{ID: "empty"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	note, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "No data in session", note)
}

func TestWriteReportPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteReportPDF(&buf, sampleState()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteReportPDF_NoReport(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteReportPDF(&buf, &domain.SessionState{ID: "empty"})
	assert.ErrorIs(t, err, domain.ErrNoAnalysis)
}
