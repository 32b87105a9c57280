package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bidrecon/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first for Excel compatibility
// on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// lineItemColumns defines the CSV header row for line-item exports.
var lineItemColumns = []string{
	"Source",
	"Item No",
	"Description",
	"Category",
	"Unit",
	"Quantity",
	"Unit Price",
	"Mandatory",
	"Notes",
}

// CSVWriter exports line items as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(lineItemColumns)
}

// WriteItems converts a batch of line items to CSV rows and writes them.
func (w *CSVWriter) WriteItems(items []domain.LineItem) error {
	for i := range items {
		if err := w.csv.Write(itemToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

func itemToRow(item *domain.LineItem) []string {
	row := make([]string, len(lineItemColumns))
	row[0] = string(item.Source)
	row[1] = item.ID
	row[2] = item.Description
	row[3] = string(item.Category)
	row[4] = string(item.Unit)
	row[5] = formatOptional(item.Quantity, -1)
	row[6] = formatOptional(item.UnitPrice, 2)
	row[7] = formatBool(item.Mandatory)
	row[8] = item.Notes
	return row
}

// formatOptional renders an absent value as an empty cell, never as 0.
func formatOptional(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a project name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_project_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(projectName, ext string) string {
	sanitized := SanitizeFilename(projectName)
	if sanitized == "" {
		sanitized = "bid_analysis"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
