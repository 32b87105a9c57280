package recon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidrecon/internal/domain"
	"bidrecon/internal/recon"
)

func analyzeOne(t *testing.T, rfpItem, bidItem domain.LineItem, opts recon.Options) domain.ComparisonResult {
	t.Helper()
	report, err := recon.Analyze(
		[]domain.LineItem{rfpItem},
		[]domain.LineItem{bidItem},
		nil, opts,
	)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	return report.Results[0]
}

func TestComparator_UnitConversion(t *testing.T) {
	t.Run("sy_to_sf", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Concrete Pavement", domain.UnitSY, qty(100), domain.CategoryPaving, domain.SourceRFP),
			item("B1", "Concrete Pavement", domain.UnitSF, qty(900), domain.CategoryPaving, domain.SourceBid),
			recon.DefaultOptions(),
		)
		// 900 SF is exactly 100 SY.
		assert.Equal(t, domain.StatusMatchedConsistent, r.Status)
		require.NotNil(t, r.DeviationPct)
		assert.InDelta(t, 0.0, *r.DeviationPct, 1e-9)
	})

	t.Run("ton_to_lb", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Structural Steel", domain.UnitTON, qty(10), domain.CategoryStructures, domain.SourceRFP),
			item("B1", "Structural Steel", domain.UnitLB, qty(24000), domain.CategoryStructures, domain.SourceBid),
			recon.DefaultOptions(),
		)
		// 24000 LB is 12 TON against 10 TON: 16.7% over.
		assert.Equal(t, domain.StatusQuantityMismatch, r.Status)
		assert.Equal(t, domain.SeverityCritical, r.Severity)
	})

	t.Run("no_conversion_defined", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Storm Inlet", domain.UnitEA, qty(10), domain.CategoryUtilities, domain.SourceRFP),
			item("B1", "Storm Inlet", domain.UnitLF, qty(10), domain.CategoryUtilities, domain.SourceBid),
			recon.DefaultOptions(),
		)
		assert.Equal(t, domain.StatusUnitMismatch, r.Status)
		assert.Nil(t, r.Delta)
	})
}

func TestComparator_AbsentQuantities(t *testing.T) {
	t.Run("bid_side_missing", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Clearing and Grubbing", domain.UnitAC, qty(5), domain.CategoryEarthwork, domain.SourceRFP),
			item("B1", "Clearing and Grubbing", domain.UnitAC, nil, domain.CategoryEarthwork, domain.SourceBid),
			recon.DefaultOptions(),
		)
		assert.Equal(t, domain.StatusUnverifiable, r.Status)
		assert.Contains(t, r.Explanation, "bid")
	})

	t.Run("both_missing", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Clearing and Grubbing", domain.UnitAC, nil, domain.CategoryEarthwork, domain.SourceRFP),
			item("B1", "Clearing and Grubbing", domain.UnitAC, nil, domain.CategoryEarthwork, domain.SourceBid),
			recon.DefaultOptions(),
		)
		assert.Equal(t, domain.StatusUnverifiable, r.Status)
	})

	t.Run("unit_missing_one_side", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Clearing and Grubbing", domain.UnitAC, qty(5), domain.CategoryEarthwork, domain.SourceRFP),
			item("B1", "Clearing and Grubbing", domain.UnitUnknown, qty(5), domain.CategoryEarthwork, domain.SourceBid),
			recon.DefaultOptions(),
		)
		assert.Equal(t, domain.StatusUnverifiable, r.Status)
	})
}

func TestComparator_ZeroQuantities(t *testing.T) {
	r := analyzeOne(t,
		item("R1", "Rock Excavation", domain.UnitCY, qty(0), domain.CategoryEarthwork, domain.SourceRFP),
		item("B1", "Rock Excavation", domain.UnitCY, qty(0), domain.CategoryEarthwork, domain.SourceBid),
		recon.DefaultOptions(),
	)
	// Zero against zero agrees; the epsilon denominator keeps it finite.
	assert.Equal(t, domain.StatusMatchedConsistent, r.Status)
	require.NotNil(t, r.DeviationPct)
	assert.Equal(t, 0.0, *r.DeviationPct)
}

func TestComparator_ZeroTolerance(t *testing.T) {
	opts := recon.DefaultOptions()
	opts.QuantityTolerancePct = 0

	t.Run("exact_agreement_passes", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Guardrail", domain.UnitLF, qty(100), domain.CategoryTraffic, domain.SourceRFP),
			item("B1", "Guardrail", domain.UnitLF, qty(100), domain.CategoryTraffic, domain.SourceBid),
			opts,
		)
		assert.Equal(t, domain.StatusMatchedConsistent, r.Status)
	})

	t.Run("any_deviation_fails", func(t *testing.T) {
		r := analyzeOne(t,
			item("R1", "Guardrail", domain.UnitLF, qty(100), domain.CategoryTraffic, domain.SourceRFP),
			item("B1", "Guardrail", domain.UnitLF, qty(101), domain.CategoryTraffic, domain.SourceBid),
			opts,
		)
		assert.Equal(t, domain.StatusQuantityMismatch, r.Status)
	})
}
