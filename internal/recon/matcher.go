package recon

import (
	"sort"

	"bidrecon/internal/domain"
)

// categoriesOverlap gates candidate generation. Items only pair within their
// work category; CategoryGeneral pairs with anything because extractors park
// uncategorizable items there.
func categoriesOverlap(a, b domain.Category) bool {
	return a == b || a == domain.CategoryGeneral || b == domain.CategoryGeneral
}

// candidatePairs scores every cross-category-compatible (left, right) pairing
// and keeps those at or above the relevance floor. Empty inputs yield an empty
// candidate list, never an error.
func candidatePairs(left, right []domain.LineItem, floor float64) []domain.MatchCandidate {
	var cands []domain.MatchCandidate
	for i := range left {
		for j := range right {
			if !categoriesOverlap(left[i].Category, right[j].Category) {
				continue
			}
			score := matchScore(&left[i], &right[j])
			if score < floor {
				continue
			}
			cands = append(cands, domain.MatchCandidate{
				LeftID:  left[i].ID,
				RightID: right[j].ID,
				Score:   score,
			})
		}
	}
	return cands
}

// assignMatches commits pairings greedily, best score first, so every item
// appears in at most one committed pair. Ties break on score, then left
// identifier, then right identifier, which makes the assignment a pure
// function of the candidate set.
func assignMatches(cands []domain.MatchCandidate, threshold float64) map[string]domain.MatchCandidate {
	sorted := make([]domain.MatchCandidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if sorted[i].LeftID != sorted[j].LeftID {
			return sorted[i].LeftID < sorted[j].LeftID
		}
		return sorted[i].RightID < sorted[j].RightID
	})

	assigned := make(map[string]domain.MatchCandidate)
	usedRight := make(map[string]bool)
	for _, c := range sorted {
		if c.Score < threshold {
			break
		}
		if _, taken := assigned[c.LeftID]; taken || usedRight[c.RightID] {
			continue
		}
		assigned[c.LeftID] = c
		usedRight[c.RightID] = true
	}
	return assigned
}
