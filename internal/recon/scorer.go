package recon

import (
	"fmt"
	"sort"

	"bidrecon/internal/domain"
)

// assignSeverity classifies one result as an issue. Mandatory RFP items
// missing from the bid and large quantity deviations are critical; every
// other non-consistent outcome is a warning.
func assignSeverity(r *domain.ComparisonResult, mandatory bool, highSeverityPct float64) {
	switch r.Status {
	case domain.StatusMatchedConsistent:
		r.Severity = domain.SeverityNone
	case domain.StatusMissingFromBid:
		if mandatory {
			r.Severity = domain.SeverityCritical
		} else {
			r.Severity = domain.SeverityWarning
		}
	case domain.StatusQuantityMismatch:
		if r.DeviationPct != nil && *r.DeviationPct > highSeverityPct {
			r.Severity = domain.SeverityCritical
		} else {
			r.Severity = domain.SeverityWarning
		}
	default:
		r.Severity = domain.SeverityWarning
	}
}

// sortIssues orders an issue list for review: largest deviation first,
// then reference document order, then identifiers. Results without a
// deviation sort after those with one.
func sortIssues(issues []domain.ComparisonResult) {
	sort.SliceStable(issues, func(i, j int) bool {
		di, dj := -1.0, -1.0
		if issues[i].DeviationPct != nil {
			di = *issues[i].DeviationPct
		}
		if issues[j].DeviationPct != nil {
			dj = *issues[j].DeviationPct
		}
		if di != dj {
			return di > dj
		}
		if issues[i].Position != issues[j].Position {
			return issues[i].Position < issues[j].Position
		}
		if issues[i].RFPItemID != issues[j].RFPItemID {
			return issues[i].RFPItemID < issues[j].RFPItemID
		}
		if issues[i].BidItemID != issues[j].BidItemID {
			return issues[i].BidItemID < issues[j].BidItemID
		}
		return issues[i].PlanItemID < issues[j].PlanItemID
	})
}

// scoreReport derives scores, issue lists and the readiness verdict from the
// accumulated results.
//
// Completeness is the fraction of RFP items that found a bid counterpart.
// Accuracy is the fraction of verifiable matched pairings that agree within
// tolerance: unverifiable pairings are excluded from the denominator, unit
// mismatches are included and count against accuracy. Both scores are
// vacuously 1.0 over an empty denominator.
func scoreReport(results []domain.ComparisonResult, summary domain.ReportSummary) *domain.AnalysisReport {
	matchedRFP := map[string]bool{}
	verifiable, consistent := 0, 0
	for i := range results {
		r := &results[i]
		if r.Status.Matched() && r.RFPItemID != "" && r.BidItemID != "" {
			matchedRFP[r.RFPItemID] = true
		}
		if r.Status.Matched() && r.Status != domain.StatusUnverifiable {
			verifiable++
			if r.Status == domain.StatusMatchedConsistent {
				consistent++
			}
		}
	}

	completeness := 1.0
	if summary.RFPItems > 0 {
		completeness = float64(len(matchedRFP)) / float64(summary.RFPItems)
	}
	accuracy := 1.0
	if verifiable > 0 {
		accuracy = float64(consistent) / float64(verifiable)
	}

	var criticals, warnings []domain.ComparisonResult
	for _, r := range results {
		switch r.Severity {
		case domain.SeverityCritical:
			criticals = append(criticals, r)
		case domain.SeverityWarning:
			warnings = append(warnings, r)
		}
	}
	sortIssues(criticals)
	sortIssues(warnings)

	report := &domain.AnalysisReport{
		Results:        results,
		CriticalIssues: criticals,
		Warnings:       warnings,
		Completeness:   completeness,
		Accuracy:       accuracy,
		Summary:        summary,
	}
	report.Status, report.StatusMessage = bidStatus(report)
	return report
}

// bidStatus is the overall readiness verdict shown to the estimator.
func bidStatus(report *domain.AnalysisReport) (domain.BidStatus, string) {
	switch {
	case len(report.CriticalIssues) > 0:
		return domain.BidStatusNotReady,
			fmt.Sprintf("%d critical issue(s) must be resolved before submission", len(report.CriticalIssues))
	case report.Completeness < 0.8:
		return domain.BidStatusIncomplete,
			fmt.Sprintf("only %.0f%% of RFP items are covered by the bid", report.Completeness*100)
	case report.Accuracy < 0.8:
		return domain.BidStatusNeedsReview,
			fmt.Sprintf("quantity accuracy is %.0f%%; review flagged items", report.Accuracy*100)
	case len(report.Warnings) > 5:
		return domain.BidStatusReviewWarnings,
			fmt.Sprintf("%d warnings should be reviewed before submission", len(report.Warnings))
	}
	return domain.BidStatusReady, "bid is complete and consistent with the RFP and plans"
}
