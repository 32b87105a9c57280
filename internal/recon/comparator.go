package recon

import (
	"fmt"
	"math"
	"strconv"

	"bidrecon/internal/domain"
)

// deviationEpsilon guards the deviation denominator when both quantities are
// zero or near zero.
const deviationEpsilon = 1e-9

type unitPair struct {
	from, to domain.Unit
}

// Conversion factors between units of the same physical dimension,
// expressed as "one from-unit equals N to-units".
var unitConversions = map[unitPair]float64{
	{domain.UnitSY, domain.UnitSF}: 9,
	{domain.UnitAC, domain.UnitSF}: 43560,
	{domain.UnitAC, domain.UnitSY}: 4840,
	{domain.UnitCY, domain.UnitCF}: 27,
	{domain.UnitTON, domain.UnitLB}: 2000,
	{domain.UnitMI, domain.UnitLF}: 5280,
}

func conversionFactor(from, to domain.Unit) (float64, bool) {
	if from == to {
		return 1, true
	}
	if f, ok := unitConversions[unitPair{from, to}]; ok {
		return f, true
	}
	if f, ok := unitConversions[unitPair{to, from}]; ok {
		return 1 / f, true
	}
	return 0, false
}

func fmtQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// comparePair reconciles the quantities of two matched line items. The left
// item is the reference side; its description labels the result. The caller
// fills in item identifiers, match score and position.
func comparePair(left, right *domain.LineItem, tolerancePct float64) domain.ComparisonResult {
	res := domain.ComparisonResult{Description: left.Description}

	if !left.HasQuantity() || !right.HasQuantity() {
		res.Status = domain.StatusUnverifiable
		side := string(left.Source)
		if left.HasQuantity() {
			side = string(right.Source)
		}
		res.Explanation = fmt.Sprintf("no quantity stated on the %s side; cannot verify", side)
		return res
	}

	a := *left.Quantity
	b := *right.Quantity

	switch {
	case left.Unit == domain.UnitUnknown && right.Unit == domain.UnitUnknown:
		// Both unknown: assume the documents use the same implicit unit.
	case left.Unit == domain.UnitUnknown || right.Unit == domain.UnitUnknown:
		res.Status = domain.StatusUnverifiable
		res.Explanation = "unit of measure missing on one side; cannot verify quantities"
		return res
	default:
		factor, ok := conversionFactor(right.Unit, left.Unit)
		if !ok {
			res.Status = domain.StatusUnitMismatch
			res.Explanation = fmt.Sprintf("%s (%s) cannot be reconciled with %s (%s): no defined conversion",
				fmtQty(a), left.Unit, fmtQty(b), right.Unit)
			return res
		}
		b *= factor
	}

	delta := b - a
	deviation := math.Abs(delta) * 100 / math.Max(math.Max(math.Abs(a), math.Abs(b)), deviationEpsilon)
	res.Delta = &delta
	res.DeviationPct = &deviation

	unitLabel := ""
	if left.Unit != domain.UnitUnknown {
		unitLabel = " " + string(left.Unit)
	}
	if deviation <= tolerancePct {
		res.Status = domain.StatusMatchedConsistent
		res.Explanation = fmt.Sprintf("quantities agree within tolerance: %s vs %s%s (%.2f%% deviation)",
			fmtQty(a), fmtQty(b), unitLabel, deviation)
	} else {
		res.Status = domain.StatusQuantityMismatch
		res.Explanation = fmt.Sprintf("quantity deviation %.2f%% exceeds %s%% tolerance: %s vs %s%s",
			deviation, fmtQty(tolerancePct), fmtQty(a), fmtQty(b), unitLabel)
	}
	return res
}
