package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"bidrecon/internal/domain"
	"bidrecon/internal/port"
)

// rawPayload mirrors the JSON schema the extraction prompt demands.
// Quantity and unit price are pointers so "null" survives decoding.
type rawPayload struct {
	ProjectInfo *domain.ProjectInfo `json:"project_info"`
	LineItems   []rawLineItem       `json:"line_items"`
}

type rawLineItem struct {
	ItemNumber  string   `json:"item_number"`
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	Category    string   `json:"category"`
	Mandatory   bool     `json:"mandatory"`
	UnitPrice   *float64 `json:"unit_price"`
	Notes       string   `json:"notes"`
}

// DecodePayload turns the raw JSON text of an LLM response into normalized
// line items. Normalization never invents data: absent quantities stay nil,
// unrecognized units become UnitUnknown, and every repair it does make
// (generated identifiers, de-duplicated item numbers) is reported as a
// warning.
func DecodePayload(text string, kind domain.DocumentKind, model string) (*port.ExtractOutput, error) {
	var raw rawPayload
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}

	out := &port.ExtractOutput{
		ProjectInfo: raw.ProjectInfo,
		ModelUsed:   model,
	}

	source := kind.Source()
	seen := map[string]bool{}
	pos := 0
	for i, ri := range raw.LineItems {
		desc := strings.TrimSpace(ri.Description)
		if desc == "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("line_items[%d]: empty description, item skipped", i))
			continue
		}

		id := strings.TrimSpace(ri.ItemNumber)
		if id == "" {
			id = fmt.Sprintf("%s-%03d", strings.ToUpper(string(kind)), pos+1)
			out.Warnings = append(out.Warnings, fmt.Sprintf("line_items[%d]: no item number, generated %q", i, id))
		}
		if seen[id] {
			deduped := fmt.Sprintf("%s.%d", id, pos+1)
			out.Warnings = append(out.Warnings, fmt.Sprintf("line_items[%d]: duplicate item number %q, renamed to %q", i, id, deduped))
			id = deduped
		}
		seen[id] = true

		unit := domain.ParseUnit(ri.Unit)
		if unit == domain.UnitUnknown && strings.TrimSpace(ri.Unit) != "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("line_items[%d]: unrecognized unit %q", i, ri.Unit))
		}
		if ri.Quantity != nil && *ri.Quantity < 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf("line_items[%d]: negative quantity %v", i, *ri.Quantity))
		}

		out.Items = append(out.Items, domain.LineItem{
			ID:          id,
			Description: desc,
			Unit:        unit,
			Quantity:    ri.Quantity,
			UnitPrice:   ri.UnitPrice,
			Category:    domain.ParseCategory(ri.Category),
			Source:      source,
			Mandatory:   ri.Mandatory,
			Position:    pos,
			Notes:       strings.TrimSpace(ri.Notes),
		})
		pos++
	}

	return out, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
