// Package spreadsheet extracts line items from xlsx bid schedules without
// an LLM: most contractors maintain their working bid as a spreadsheet with
// a recognizable header row.
package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"bidrecon/internal/domain"
	"bidrecon/internal/port"
)

// Extractor implements port.DocumentExtractor for spreadsheet uploads.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Column header synonyms, matched case-insensitively after trimming.
var columnNames = map[string][]string{
	"item":        {"item", "item no", "item no.", "item number", "no", "no.", "bid item"},
	"description": {"description", "item description", "work description", "pay item"},
	"quantity":    {"quantity", "qty", "est qty", "estimated quantity", "plan qty"},
	"unit":        {"unit", "uom", "units", "unit of measure"},
	"unit_price":  {"unit price", "price", "unit cost", "rate", "bid price"},
	"category":    {"category", "division", "work category"},
}

func (e *Extractor) Extract(_ context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	f, err := excelize.OpenReader(bytes.NewReader(input.FileBytes))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	out := &port.ExtractOutput{ModelUsed: "spreadsheet"}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	headerRow, cols := findHeader(rows)
	if cols == nil {
		return nil, fmt.Errorf("no header row with a description column found in sheet %q", sheets[0])
	}

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		desc := cell(row, colIdx(cols, "description"))
		if strings.TrimSpace(desc) == "" {
			continue
		}
		ri := rawRow{
			ItemNumber:  cell(row, colIdx(cols, "item")),
			Description: desc,
			Unit:        cell(row, colIdx(cols, "unit")),
			Category:    cell(row, colIdx(cols, "category")),
		}
		if qty, ok := parseNumber(cell(row, colIdx(cols, "quantity"))); ok {
			ri.Quantity = &qty
		}
		if price, ok := parseNumber(cell(row, colIdx(cols, "unit_price"))); ok {
			ri.UnitPrice = &price
		}
		appendItem(out, ri, input.Kind, i)
	}

	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no line items found in sheet %q", sheets[0])
	}
	return out, nil
}

type rawRow struct {
	ItemNumber  string
	Description string
	Quantity    *float64
	Unit        string
	Category    string
	UnitPrice   *float64
}

// appendItem applies the same normalization rules as the LLM payload decoder:
// generated identifiers for blank item numbers, positional de-duplication,
// units and categories parsed leniently but never guessed.
func appendItem(out *port.ExtractOutput, ri rawRow, kind domain.DocumentKind, sheetRow int) {
	pos := len(out.Items)

	id := strings.TrimSpace(ri.ItemNumber)
	if id == "" {
		id = fmt.Sprintf("%s-%03d", strings.ToUpper(string(kind)), pos+1)
		out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: no item number, generated %q", sheetRow+1, id))
	}
	for _, it := range out.Items {
		if it.ID == id {
			deduped := fmt.Sprintf("%s.%d", id, pos+1)
			out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: duplicate item number %q, renamed to %q", sheetRow+1, id, deduped))
			id = deduped
			break
		}
	}

	unit := domain.ParseUnit(ri.Unit)
	if unit == domain.UnitUnknown && strings.TrimSpace(ri.Unit) != "" {
		out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: unrecognized unit %q", sheetRow+1, ri.Unit))
	}

	out.Items = append(out.Items, domain.LineItem{
		ID:          id,
		Description: strings.TrimSpace(ri.Description),
		Unit:        unit,
		Quantity:    ri.Quantity,
		UnitPrice:   ri.UnitPrice,
		Category:    domain.ParseCategory(ri.Category),
		Source:      kind.Source(),
		Position:    pos,
	})
}

// findHeader scans the first 10 rows for one containing a description
// column, returning its index and column mapping.
func findHeader(rows [][]string) (int, map[string]int) {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for r := 0; r < limit; r++ {
		cols := map[string]int{}
		for c, raw := range rows[r] {
			name := strings.ToLower(strings.TrimSpace(raw))
			for field, synonyms := range columnNames {
				if _, taken := cols[field]; taken {
					continue
				}
				for _, s := range synonyms {
					if name == s {
						cols[field] = c
						break
					}
				}
			}
		}
		if _, ok := cols["description"]; ok {
			return r, cols
		}
	}
	return 0, nil
}

func colIdx(cols map[string]int, field string) int {
	if idx, ok := cols[field]; ok {
		return idx
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseNumber handles the formatting spreadsheets apply to quantities:
// thousands separators, currency symbols, stray whitespace.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
