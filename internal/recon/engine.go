// Package recon reconciles the three line-item collections of a bid package:
// RFP pay items, the contractor's bid proposal, and quantities taken off the
// plan sheets. It is pure and deterministic: identical inputs produce
// byte-identical reports, and it performs no I/O.
package recon

import (
	"fmt"

	"bidrecon/internal/domain"
)

// Options tunes the reconciliation engine. Percentages are expressed in
// [0,100], match scores in [0,1].
type Options struct {
	// QuantityTolerancePct is the maximum deviation, inclusive, at which
	// matched quantities still count as consistent.
	QuantityTolerancePct float64
	// HighSeverityThresholdPct is the deviation above which a quantity
	// mismatch escalates from warning to critical.
	HighSeverityThresholdPct float64
	// PlanTolerancePct is the looser tolerance used when checking bid
	// quantities against plan takeoffs, which are estimates themselves.
	PlanTolerancePct float64
	// CandidateFloor is the minimum match score for a pairing to be
	// considered at all.
	CandidateFloor float64
	// MatchThreshold is the minimum match score for a pairing to be
	// committed.
	MatchThreshold float64
}

// DefaultOptions returns the tuning used by the product: 5% quantity
// tolerance, 15% critical threshold, 10% plan tolerance.
func DefaultOptions() Options {
	return Options{
		QuantityTolerancePct:     5,
		HighSeverityThresholdPct: 15,
		PlanTolerancePct:         10,
		CandidateFloor:           0.35,
		MatchThreshold:           0.55,
	}
}

func (o Options) validate() error {
	pcts := map[string]float64{
		"quantity_tolerance_pct":      o.QuantityTolerancePct,
		"high_severity_threshold_pct": o.HighSeverityThresholdPct,
		"plan_tolerance_pct":          o.PlanTolerancePct,
	}
	for name, v := range pcts {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s %v outside [0,100]", domain.ErrConfiguration, name, v)
		}
	}
	scores := map[string]float64{
		"candidate_floor": o.CandidateFloor,
		"match_threshold": o.MatchThreshold,
	}
	for name, v := range scores {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s %v outside [0,1]", domain.ErrConfiguration, name, v)
		}
	}
	return nil
}

// validateItems rejects collections that would make results ambiguous:
// blank or duplicate identifiers within a source.
func validateItems(items []domain.LineItem, source domain.Source) error {
	seen := make(map[string]bool, len(items))
	for i := range items {
		id := items[i].ID
		if id == "" {
			return fmt.Errorf("%w: %s item at position %d has no identifier", domain.ErrInvalidInput, source, i)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate identifier %q in %s items", domain.ErrInvalidInput, id, source)
		}
		seen[id] = true
	}
	return nil
}

// Analyze reconciles the bid against the RFP and, when plan quantities are
// present, against the plans. Validation happens before any matching; on
// error no partial report is returned.
//
// Pass 1 pairs RFP items with bid items: unmatched RFP items become
// MissingFromBid, unmatched bid items become ExtraInBid. Pass 2 pairs RFP
// items with plan quantities: unmatched plan quantities become
// MissingFromRFP. An absent plan collection skips pass 2 entirely.
func Analyze(rfp, bid, plan []domain.LineItem, opts Options) (*domain.AnalysisReport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	for _, in := range []struct {
		items  []domain.LineItem
		source domain.Source
	}{{rfp, domain.SourceRFP}, {bid, domain.SourceBid}, {plan, domain.SourcePlan}} {
		if err := validateItems(in.items, in.source); err != nil {
			return nil, err
		}
	}

	summary := domain.ReportSummary{
		RFPItems:  len(rfp),
		BidItems:  len(bid),
		PlanItems: len(plan),
	}
	var results []domain.ComparisonResult

	bidByID := indexItems(bid)
	planByID := indexItems(plan)

	// Pass 1: RFP against bid.
	bidAssigned := assignMatches(candidatePairs(rfp, bid, opts.CandidateFloor), opts.MatchThreshold)
	matchedBid := make(map[string]bool, len(bidAssigned))
	for i := range rfp {
		item := &rfp[i]
		cand, ok := bidAssigned[item.ID]
		if !ok {
			r := domain.ComparisonResult{
				Status:      domain.StatusMissingFromBid,
				RFPItemID:   item.ID,
				Description: item.Description,
				Explanation: "RFP pay item has no counterpart in the bid proposal",
				Position:    i,
			}
			assignSeverity(&r, item.Mandatory, opts.HighSeverityThresholdPct)
			results = append(results, r)
			summary.MissingBid++
			continue
		}
		matchedBid[cand.RightID] = true
		r := comparePair(item, bidByID[cand.RightID], opts.QuantityTolerancePct)
		r.RFPItemID = item.ID
		r.BidItemID = cand.RightID
		r.MatchScore = cand.Score
		r.Position = i
		assignSeverity(&r, item.Mandatory, opts.HighSeverityThresholdPct)
		results = append(results, r)
		tally(&summary, r.Status)
	}
	for i := range bid {
		if matchedBid[bid[i].ID] {
			continue
		}
		r := domain.ComparisonResult{
			Status:      domain.StatusExtraInBid,
			BidItemID:   bid[i].ID,
			Description: bid[i].Description,
			Explanation: "bid line item is not called for by the RFP",
			Severity:    domain.SeverityWarning,
			Position:    i,
		}
		results = append(results, r)
		summary.ExtraBid++
	}

	// Pass 2: RFP against plan takeoffs.
	if len(plan) > 0 {
		planAssigned := assignMatches(candidatePairs(rfp, plan, opts.CandidateFloor), opts.MatchThreshold)
		matchedPlan := make(map[string]bool, len(planAssigned))
		for i := range rfp {
			item := &rfp[i]
			cand, ok := planAssigned[item.ID]
			if !ok {
				continue
			}
			matchedPlan[cand.RightID] = true
			r := comparePair(item, planByID[cand.RightID], opts.QuantityTolerancePct)
			r.RFPItemID = item.ID
			r.PlanItemID = cand.RightID
			r.MatchScore = cand.Score
			r.Position = i
			assignSeverity(&r, item.Mandatory, opts.HighSeverityThresholdPct)
			results = append(results, r)
			tally(&summary, r.Status)
		}
		for i := range plan {
			if matchedPlan[plan[i].ID] {
				continue
			}
			r := domain.ComparisonResult{
				Status:      domain.StatusMissingFromRFP,
				PlanItemID:  plan[i].ID,
				Description: plan[i].Description,
				Explanation: "quantity shown on the plans is not required by the RFP",
				Severity:    domain.SeverityWarning,
				Position:    i,
			}
			results = append(results, r)
			summary.MissingRFP++
		}
	}

	return scoreReport(results, summary), nil
}

// CompareQuantities checks bid quantities directly against plan takeoffs,
// bucketing paired items into over- and under-estimated using the looser
// plan tolerance. It shares the matcher and comparator with Analyze.
func CompareQuantities(bid, plan []domain.LineItem, opts Options) (*domain.QuantityComparison, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := validateItems(bid, domain.SourceBid); err != nil {
		return nil, err
	}
	if err := validateItems(plan, domain.SourcePlan); err != nil {
		return nil, err
	}

	cmp := &domain.QuantityComparison{
		Summary: domain.ReportSummary{BidItems: len(bid), PlanItems: len(plan)},
	}
	planByID := indexItems(plan)

	assigned := assignMatches(candidatePairs(bid, plan, opts.CandidateFloor), opts.MatchThreshold)
	matchedPlan := make(map[string]bool, len(assigned))
	for i := range bid {
		item := &bid[i]
		cand, ok := assigned[item.ID]
		if !ok {
			cmp.NotOnPlans = append(cmp.NotOnPlans, domain.ComparisonResult{
				Status:      domain.StatusUnverifiable,
				BidItemID:   item.ID,
				Description: item.Description,
				Explanation: "bid quantity does not appear on the plan sheets",
				Severity:    domain.SeverityWarning,
				Position:    i,
			})
			continue
		}
		matchedPlan[cand.RightID] = true
		r := comparePair(item, planByID[cand.RightID], opts.PlanTolerancePct)
		r.BidItemID = item.ID
		r.PlanItemID = cand.RightID
		r.MatchScore = cand.Score
		r.Position = i
		assignSeverity(&r, item.Mandatory, opts.HighSeverityThresholdPct)
		tally(&cmp.Summary, r.Status)
		switch {
		case r.Status == domain.StatusQuantityMismatch && r.Delta != nil && *r.Delta < 0:
			// Delta is plan minus bid; negative means the bid carries more.
			cmp.Overestimated = append(cmp.Overestimated, r)
		case r.Status == domain.StatusQuantityMismatch:
			cmp.Underestimated = append(cmp.Underestimated, r)
		default:
			cmp.Matches = append(cmp.Matches, r)
		}
	}
	for i := range plan {
		if matchedPlan[plan[i].ID] {
			continue
		}
		cmp.NotInProposal = append(cmp.NotInProposal, domain.ComparisonResult{
			Status:      domain.StatusUnverifiable,
			PlanItemID:  plan[i].ID,
			Description: plan[i].Description,
			Explanation: "plan quantity has no counterpart in the bid proposal",
			Severity:    domain.SeverityWarning,
			Position:    i,
		})
	}
	return cmp, nil
}

func indexItems(items []domain.LineItem) map[string]*domain.LineItem {
	m := make(map[string]*domain.LineItem, len(items))
	for i := range items {
		m[items[i].ID] = &items[i]
	}
	return m
}

func tally(s *domain.ReportSummary, status domain.MatchStatus) {
	if status.Matched() {
		s.Matched++
	}
	switch status {
	case domain.StatusMatchedConsistent:
		s.Consistent++
	case domain.StatusQuantityMismatch, domain.StatusUnitMismatch:
		s.Mismatched++
	case domain.StatusUnverifiable:
		s.Unverifiable++
	}
}
