package recon

import (
	"regexp"
	"strconv"
	"strings"

	"bidrecon/internal/domain"
)

// Description tokens: runs of letters or digits, keeping decimal numbers
// intact so "12.5" does not split into "12" and "5".
var tokenPattern = regexp.MustCompile(`[a-z]+|[0-9]+(?:\.[0-9]+)?`)

// Dimension vocabulary collapses to short forms so "18-inch RCP" and
// `18" RCP` tokenize identically.
var tokenAliases = map[string]string{
	"inch": "in", "inches": "in",
	"foot": "ft", "feet": "ft",
	"yard": "yd", "yards": "yd", "yds": "yd",
	"reinforced": "reinf",
	"concrete":   "conc",
	"aggregate":  "agg",
	"pavement":   "pvmt",
	"diameter":   "dia",
}

var stopTokens = map[string]bool{
	"and": true, "of": true, "the": true, "for": true,
	"per": true, "incl": true, "including": true, "furnish": true,
	"install": true, "place": true, "complete": true,
}

// descTokens normalizes a description into a token set. Numeric tokens are
// canonicalized ("12.0" and "12" agree) because pipe diameters, pavement
// thicknesses and station numbers carry most of the matching signal on
// civil pay items.
func descTokens(s string) map[string]bool {
	tokens := map[string]bool{}
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		if stopTokens[tok] {
			continue
		}
		if alias, ok := tokenAliases[tok]; ok {
			tok = alias
		}
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			tok = strconv.FormatFloat(f, 'f', -1, 64)
		}
		tokens[tok] = true
	}
	return tokens
}

// diceCoefficient returns 2|A∩B| / (|A|+|B|) over token sets, in [0,1].
func diceCoefficient(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	return 2 * float64(inter) / float64(len(a)+len(b))
}

// unitAffinity scores how well two units support a pairing:
//
//	+1.0 identical units
//	+0.5 different units with a defined conversion (SY vs SF)
//	 0.0 unknown on either side, or compatible-but-different (LF vs EA)
//	-1.0 physically incompatible (CY vs EA)
func unitAffinity(a, b domain.Unit) float64 {
	if a == domain.UnitUnknown || b == domain.UnitUnknown {
		return 0
	}
	if a == b {
		return 1
	}
	if _, ok := conversionFactor(a, b); ok {
		return 0.5
	}
	if unitsCompatible(a, b) {
		return 0
	}
	return -1
}

// Lump-sum items can stand in for any measured item, and counted items (EA)
// are routinely re-expressed as lengths or areas of the installed work.
func unitsCompatible(a, b domain.Unit) bool {
	if a == domain.UnitLS || b == domain.UnitLS {
		return true
	}
	if a == domain.UnitEA || b == domain.UnitEA {
		switch {
		case a == domain.UnitLF, b == domain.UnitLF,
			a == domain.UnitSF, b == domain.UnitSF,
			a == domain.UnitSY, b == domain.UnitSY:
			return true
		}
	}
	return false
}

const (
	textWeight = 0.85
	unitWeight = 0.15
)

// matchScore combines description similarity with unit affinity into [0,1].
// Identical descriptions in identical units score 1.0; an incompatible unit
// subtracts the full unit weight.
func matchScore(a, b *domain.LineItem) float64 {
	score := textWeight*diceCoefficient(descTokens(a.Description), descTokens(b.Description)) +
		unitWeight*unitAffinity(a.Unit, b.Unit)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
