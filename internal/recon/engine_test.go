package recon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidrecon/internal/domain"
	"bidrecon/internal/recon"
)

func qty(v float64) *float64 { return &v }

func item(id, desc string, unit domain.Unit, quantity *float64, cat domain.Category, source domain.Source) domain.LineItem {
	return domain.LineItem{
		ID:          id,
		Description: desc,
		Unit:        unit,
		Quantity:    quantity,
		Category:    cat,
		Source:      source,
	}
}

func sampleRFP() []domain.LineItem {
	return []domain.LineItem{
		item("R1", "Unclassified Excavation", domain.UnitCY, qty(1000), domain.CategoryEarthwork, domain.SourceRFP),
		item("R2", "18-inch RCP Storm Drain", domain.UnitLF, qty(500), domain.CategoryUtilities, domain.SourceRFP),
		item("R3", "Asphalt Concrete Pavement", domain.UnitTON, qty(250), domain.CategoryPaving, domain.SourceRFP),
	}
}

func sampleBid() []domain.LineItem {
	return []domain.LineItem{
		item("B1", "Unclassified Excavation", domain.UnitCY, qty(1020), domain.CategoryEarthwork, domain.SourceBid),
		item("B2", "18-inch RCP Storm Drain", domain.UnitLF, qty(500), domain.CategoryUtilities, domain.SourceBid),
		item("B3", "Asphalt Concrete Pavement", domain.UnitTON, qty(250), domain.CategoryPaving, domain.SourceBid),
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	rfp, bid := sampleRFP(), sampleBid()
	plan := []domain.LineItem{
		item("P1", "Unclassified Excavation", domain.UnitCY, qty(990), domain.CategoryEarthwork, domain.SourcePlan),
	}

	first, err := recon.Analyze(rfp, bid, plan, recon.DefaultOptions())
	require.NoError(t, err)
	second, err := recon.Analyze(rfp, bid, plan, recon.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyze_InjectiveMatching(t *testing.T) {
	// Two near-identical RFP items compete for a single bid item; only one
	// may win it.
	rfp := []domain.LineItem{
		item("R1", "Concrete Sidewalk 4 inch", domain.UnitSF, qty(2000), domain.CategoryPaving, domain.SourceRFP),
		item("R2", "Concrete Sidewalk 6 inch", domain.UnitSF, qty(800), domain.CategoryPaving, domain.SourceRFP),
	}
	bid := []domain.LineItem{
		item("B1", "Concrete Sidewalk 4 inch", domain.UnitSF, qty(2000), domain.CategoryPaving, domain.SourceBid),
	}

	report, err := recon.Analyze(rfp, bid, nil, recon.DefaultOptions())
	require.NoError(t, err)

	seenBid := map[string]int{}
	for _, r := range report.Results {
		if r.Status.Matched() && r.BidItemID != "" {
			seenBid[r.BidItemID]++
		}
	}
	assert.Equal(t, 1, seenBid["B1"])
	assert.Equal(t, 1, report.Summary.MissingBid)
}

func TestAnalyze_MatchScoreBounds(t *testing.T) {
	report, err := recon.Analyze(sampleRFP(), sampleBid(), nil, recon.DefaultOptions())
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.GreaterOrEqual(t, r.MatchScore, 0.0)
		assert.LessOrEqual(t, r.MatchScore, 1.0)
	}
	// Identical description and unit pairs at full score.
	for _, r := range report.Results {
		if r.RFPItemID == "R2" {
			assert.Equal(t, 1.0, r.MatchScore)
		}
	}
}

func TestAnalyze_ToleranceBoundaryInclusive(t *testing.T) {
	rfp := []domain.LineItem{
		item("R1", "Topsoil Placement", domain.UnitCY, qty(100), domain.CategoryEarthwork, domain.SourceRFP),
	}
	bid := []domain.LineItem{
		item("B1", "Topsoil Placement", domain.UnitCY, qty(95), domain.CategoryEarthwork, domain.SourceBid),
	}

	// |100-95| / 100 is exactly the 5% default tolerance.
	report, err := recon.Analyze(rfp, bid, nil, recon.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusMatchedConsistent, report.Results[0].Status)
	require.NotNil(t, report.Results[0].DeviationPct)
	assert.InDelta(t, 5.0, *report.Results[0].DeviationPct, 1e-12)
}

func TestAnalyze_EmptyBid(t *testing.T) {
	report, err := recon.Analyze(sampleRFP(), nil, nil, recon.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.Completeness)
	assert.Equal(t, 1.0, report.Accuracy)
	require.Len(t, report.Results, 3)
	for _, r := range report.Results {
		assert.Equal(t, domain.StatusMissingFromBid, r.Status)
	}
}

func TestAnalyze_EmptyEverything(t *testing.T) {
	report, err := recon.Analyze(nil, nil, nil, recon.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, 1.0, report.Completeness)
	assert.Equal(t, 1.0, report.Accuracy)
}

func TestAnalyze_ConsistentMatchDeviation(t *testing.T) {
	rfp := []domain.LineItem{
		item("R1", "Unclassified Excavation", domain.UnitCY, qty(100), domain.CategoryEarthwork, domain.SourceRFP),
	}
	bid := []domain.LineItem{
		item("B1", "Unclassified Excavation", domain.UnitCY, qty(102), domain.CategoryEarthwork, domain.SourceBid),
	}

	report, err := recon.Analyze(rfp, bid, nil, recon.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	r := report.Results[0]
	assert.Equal(t, domain.StatusMatchedConsistent, r.Status)
	require.NotNil(t, r.DeviationPct)
	assert.InDelta(t, 1.96, *r.DeviationPct, 0.01)
	require.NotNil(t, r.Delta)
	assert.InDelta(t, 2.0, *r.Delta, 1e-12)
}

func TestAnalyze_AccuracyPolicy(t *testing.T) {
	// One consistent pair, one unit-mismatched pair, one unverifiable pair:
	// accuracy counts the unit mismatch but not the unverifiable pair.
	rfp := []domain.LineItem{
		item("R1", "Silt Fence", domain.UnitLF, qty(1000), domain.CategoryErosion, domain.SourceRFP),
		item("R2", "Inlet Protection", domain.UnitEA, qty(12), domain.CategoryErosion, domain.SourceRFP),
		item("R3", "Seeding and Mulching", domain.UnitAC, nil, domain.CategoryLandscape, domain.SourceRFP),
	}
	bid := []domain.LineItem{
		item("B1", "Silt Fence", domain.UnitLF, qty(1000), domain.CategoryErosion, domain.SourceBid),
		item("B2", "Inlet Protection", domain.UnitCY, qty(12), domain.CategoryErosion, domain.SourceBid),
		item("B3", "Seeding and Mulching", domain.UnitAC, qty(3), domain.CategoryLandscape, domain.SourceBid),
	}

	report, err := recon.Analyze(rfp, bid, nil, recon.DefaultOptions())
	require.NoError(t, err)

	statuses := map[string]domain.MatchStatus{}
	for _, r := range report.Results {
		statuses[r.RFPItemID] = r.Status
	}
	require.Equal(t, domain.StatusMatchedConsistent, statuses["R1"])
	require.Equal(t, domain.StatusUnitMismatch, statuses["R2"])
	require.Equal(t, domain.StatusUnverifiable, statuses["R3"])

	// Denominator is {consistent, unit mismatch}; unverifiable is excluded.
	assert.InDelta(t, 0.5, report.Accuracy, 1e-12)
	assert.Equal(t, 1.0, report.Completeness)
}

func TestAnalyze_IssueOrdering(t *testing.T) {
	rfp := []domain.LineItem{
		item("R1", "Unclassified Excavation", domain.UnitCY, qty(100), domain.CategoryEarthwork, domain.SourceRFP),
		item("R2", "Curb and Gutter", domain.UnitLF, qty(100), domain.CategoryPaving, domain.SourceRFP),
	}
	bid := []domain.LineItem{
		item("B1", "Unclassified Excavation", domain.UnitCY, qty(80), domain.CategoryEarthwork, domain.SourceBid),  // 20% off
		item("B2", "Curb and Gutter", domain.UnitLF, qty(92), domain.CategoryPaving, domain.SourceBid),             // 8% off
	}

	report, err := recon.Analyze(rfp, bid, nil, recon.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, report.CriticalIssues, 1)
	assert.Equal(t, "R1", report.CriticalIssues[0].RFPItemID)
	assert.Equal(t, domain.SeverityCritical, report.CriticalIssues[0].Severity)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "R2", report.Warnings[0].RFPItemID)
	assert.Equal(t, domain.SeverityWarning, report.Warnings[0].Severity)
}

func TestAnalyze_MandatoryMissingIsCritical(t *testing.T) {
	rfp := []domain.LineItem{
		{ID: "R1", Description: "Mobilization", Unit: domain.UnitLS, Quantity: qty(1),
			Category: domain.CategoryGeneral, Source: domain.SourceRFP, Mandatory: true},
	}
	report, err := recon.Analyze(rfp, nil, nil, recon.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, report.CriticalIssues, 1)
	assert.Equal(t, domain.StatusMissingFromBid, report.CriticalIssues[0].Status)
	assert.Equal(t, domain.BidStatusNotReady, report.Status)
}

func TestAnalyze_PlanPass(t *testing.T) {
	rfp := sampleRFP()
	bid := sampleBid()
	plan := []domain.LineItem{
		item("P1", "Unclassified Excavation", domain.UnitCY, qty(1000), domain.CategoryEarthwork, domain.SourcePlan),
		item("P2", "Rock Rip Rap", domain.UnitTON, qty(40), domain.CategoryStructures, domain.SourcePlan),
	}

	report, err := recon.Analyze(rfp, bid, plan, recon.DefaultOptions())
	require.NoError(t, err)

	var planMatched, missingRFP bool
	for _, r := range report.Results {
		if r.PlanItemID == "P1" && r.Status.Matched() {
			planMatched = true
			assert.Equal(t, "R1", r.RFPItemID)
		}
		if r.PlanItemID == "P2" {
			assert.Equal(t, domain.StatusMissingFromRFP, r.Status)
			missingRFP = true
		}
	}
	assert.True(t, planMatched)
	assert.True(t, missingRFP)
	assert.Equal(t, 1, report.Summary.MissingRFP)
}

func TestAnalyze_ValidationErrors(t *testing.T) {
	t.Run("duplicate_id", func(t *testing.T) {
		rfp := []domain.LineItem{
			item("R1", "Item A", domain.UnitEA, qty(1), domain.CategoryGeneral, domain.SourceRFP),
			item("R1", "Item B", domain.UnitEA, qty(2), domain.CategoryGeneral, domain.SourceRFP),
		}
		_, err := recon.Analyze(rfp, nil, nil, recon.DefaultOptions())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("blank_id", func(t *testing.T) {
		bid := []domain.LineItem{
			item("", "Item A", domain.UnitEA, qty(1), domain.CategoryGeneral, domain.SourceBid),
		}
		_, err := recon.Analyze(nil, bid, nil, recon.DefaultOptions())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("tolerance_out_of_range", func(t *testing.T) {
		opts := recon.DefaultOptions()
		opts.QuantityTolerancePct = 120
		_, err := recon.Analyze(nil, nil, nil, opts)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("threshold_out_of_range", func(t *testing.T) {
		opts := recon.DefaultOptions()
		opts.MatchThreshold = 1.5
		_, err := recon.Analyze(nil, nil, nil, opts)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestCompareQuantities_Buckets(t *testing.T) {
	bid := []domain.LineItem{
		item("B1", "Unclassified Excavation", domain.UnitCY, qty(1200), domain.CategoryEarthwork, domain.SourceBid),
		item("B2", "18-inch RCP Storm Drain", domain.UnitLF, qty(400), domain.CategoryUtilities, domain.SourceBid),
		item("B3", "Asphalt Concrete Pavement", domain.UnitTON, qty(250), domain.CategoryPaving, domain.SourceBid),
		item("B4", "Temporary Fence", domain.UnitLF, qty(300), domain.CategoryGeneral, domain.SourceBid),
	}
	plan := []domain.LineItem{
		item("P1", "Unclassified Excavation", domain.UnitCY, qty(1000), domain.CategoryEarthwork, domain.SourcePlan),
		item("P2", "18-inch RCP Storm Drain", domain.UnitLF, qty(500), domain.CategoryUtilities, domain.SourcePlan),
		item("P3", "Asphalt Concrete Pavement", domain.UnitTON, qty(245), domain.CategoryPaving, domain.SourcePlan),
		item("P4", "Chain Link Fence", domain.UnitLF, qty(80), domain.CategoryStructures, domain.SourcePlan),
	}

	cmp, err := recon.CompareQuantities(bid, plan, recon.DefaultOptions())
	require.NoError(t, err)

	// B1 is 20% over plan, B2 is 20% under, B3 within the 10% plan tolerance.
	require.Len(t, cmp.Overestimated, 1)
	assert.Equal(t, "B1", cmp.Overestimated[0].BidItemID)
	require.Len(t, cmp.Underestimated, 1)
	assert.Equal(t, "B2", cmp.Underestimated[0].BidItemID)
	require.Len(t, cmp.Matches, 1)
	assert.Equal(t, "B3", cmp.Matches[0].BidItemID)
	require.Len(t, cmp.NotOnPlans, 1)
	assert.Equal(t, "B4", cmp.NotOnPlans[0].BidItemID)
	require.Len(t, cmp.NotInProposal, 1)
	assert.Equal(t, "P4", cmp.NotInProposal[0].PlanItemID)
}
