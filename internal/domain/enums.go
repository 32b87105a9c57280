package domain

import "strings"

// Source identifies which uploaded collection a line item came from.
type Source string

const (
	SourceRFP  Source = "rfp"
	SourceBid  Source = "bid"
	SourcePlan Source = "plan"
)

// DocumentKind is the upload slot a document fills. It maps 1:1 onto Source.
type DocumentKind string

const (
	DocumentKindRFP  DocumentKind = "rfp"
	DocumentKindBid  DocumentKind = "bid"
	DocumentKindPlan DocumentKind = "plan"
)

// ParseDocumentKind parses a URL path segment into a DocumentKind.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	switch DocumentKind(strings.ToLower(strings.TrimSpace(s))) {
	case DocumentKindRFP:
		return DocumentKindRFP, true
	case DocumentKindBid:
		return DocumentKindBid, true
	case DocumentKindPlan:
		return DocumentKindPlan, true
	}
	return "", false
}

// Source returns the item Source a document of this kind produces.
func (k DocumentKind) Source() Source {
	return Source(k)
}

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"xlsx": FileTypeXLSX,
	"xlsm": FileTypeXLSX,
	"xls":  FileTypeXLS,
}

// AllowedContentTypes lists the sniffed MIME types accepted at upload. xlsx
// files detect as zip containers; legacy xls often detects as octet-stream.
var AllowedContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/zip":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// ContentType returns the MIME type used when archiving a file of this type.
func (t FileType) ContentType() string {
	switch t {
	case FileTypePDF:
		return "application/pdf"
	case FileTypeXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FileTypeXLS:
		return "application/vnd.ms-excel"
	}
	return "application/octet-stream"
}

// Unit is a construction unit of measure, normalized to its short uppercase form.
// UnitUnknown marks a unit the extractor could not determine; it is preserved,
// never guessed.
type Unit string

const (
	UnitUnknown Unit = ""
	UnitCY      Unit = "CY" // cubic yard
	UnitCF      Unit = "CF" // cubic foot
	UnitSY      Unit = "SY" // square yard
	UnitSF      Unit = "SF" // square foot
	UnitAC      Unit = "AC" // acre
	UnitLF      Unit = "LF" // linear foot
	UnitMI      Unit = "MI" // mile
	UnitEA      Unit = "EA" // each
	UnitLS      Unit = "LS" // lump sum
	UnitTON     Unit = "TON"
	UnitLB      Unit = "LB"
	UnitGAL     Unit = "GAL"
	UnitDAY     Unit = "DAY"
	UnitHR      Unit = "HR"
)

var unitAliases = map[string]Unit{
	"CY": UnitCY, "CU YD": UnitCY, "CUYD": UnitCY, "CUBIC YARD": UnitCY, "CUBIC YARDS": UnitCY,
	"CF": UnitCF, "CU FT": UnitCF, "CUFT": UnitCF, "CUBIC FOOT": UnitCF, "CUBIC FEET": UnitCF,
	"SY": UnitSY, "SQ YD": UnitSY, "SQYD": UnitSY, "SQUARE YARD": UnitSY, "SQUARE YARDS": UnitSY,
	"SF": UnitSF, "SQ FT": UnitSF, "SQFT": UnitSF, "SQUARE FOOT": UnitSF, "SQUARE FEET": UnitSF,
	"AC": UnitAC, "ACRE": UnitAC, "ACRES": UnitAC,
	"LF": UnitLF, "LIN FT": UnitLF, "LINFT": UnitLF, "LINEAR FOOT": UnitLF, "LINEAR FEET": UnitLF,
	"MI": UnitMI, "MILE": UnitMI, "MILES": UnitMI,
	"EA": UnitEA, "EACH": UnitEA,
	"LS": UnitLS, "LUMP SUM": UnitLS, "LUMPSUM": UnitLS, "LUMP": UnitLS,
	"TON": UnitTON, "TONS": UnitTON, "TN": UnitTON,
	"LB": UnitLB, "LBS": UnitLB, "POUND": UnitLB, "POUNDS": UnitLB,
	"GAL": UnitGAL, "GALLON": UnitGAL, "GALLONS": UnitGAL,
	"DAY": UnitDAY, "DAYS": UnitDAY,
	"HR": UnitHR, "HRS": UnitHR, "HOUR": UnitHR, "HOURS": UnitHR,
}

// ParseUnit normalizes a raw unit string. Unknown units return UnitUnknown;
// callers that need to preserve the raw text keep it in LineItem.Notes.
func ParseUnit(s string) Unit {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.Trim(key, ".")
	key = strings.ReplaceAll(key, ".", " ")
	key = strings.Join(strings.Fields(key), " ")
	if u, ok := unitAliases[key]; ok {
		return u
	}
	return UnitUnknown
}

// Category groups line items into the work categories used by plan takeoffs.
// Matching never crosses category boundaries except through CategoryGeneral.
type Category string

const (
	CategoryEarthwork  Category = "earthwork"
	CategoryPaving     Category = "paving"
	CategoryUtilities  Category = "utilities"
	CategoryStructures Category = "structures"
	CategoryTraffic    Category = "traffic"
	CategoryErosion    Category = "erosion"
	CategoryLandscape  Category = "landscape"
	CategoryGeneral    Category = "general"
)

var categoryAliases = map[string]Category{
	"earthwork": CategoryEarthwork, "excavation": CategoryEarthwork, "grading": CategoryEarthwork,
	"paving": CategoryPaving, "pavement": CategoryPaving, "asphalt": CategoryPaving,
	"utilities": CategoryUtilities, "utility": CategoryUtilities, "drainage": CategoryUtilities,
	"structures": CategoryStructures, "structural": CategoryStructures, "structure": CategoryStructures,
	"traffic": CategoryTraffic, "traffic_control": CategoryTraffic, "traffic control": CategoryTraffic, "signage": CategoryTraffic,
	"erosion": CategoryErosion, "erosion_control": CategoryErosion, "erosion control": CategoryErosion, "swppp": CategoryErosion,
	"landscape": CategoryLandscape, "landscaping": CategoryLandscape, "seeding": CategoryLandscape,
	"general": CategoryGeneral, "general conditions": CategoryGeneral, "mobilization": CategoryGeneral, "misc": CategoryGeneral,
}

// ParseCategory normalizes a raw category string, defaulting to CategoryGeneral.
func ParseCategory(s string) Category {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return CategoryGeneral
}

// MatchStatus is the outcome of reconciling one line item pairing.
type MatchStatus string

const (
	// StatusMatchedConsistent: paired items whose quantities agree within tolerance.
	StatusMatchedConsistent MatchStatus = "matched_consistent"
	// StatusQuantityMismatch: paired items whose quantity deviation exceeds tolerance.
	StatusQuantityMismatch MatchStatus = "matched_quantity_mismatch"
	// StatusUnitMismatch: paired items measured in units with no defined conversion.
	StatusUnitMismatch MatchStatus = "matched_unit_mismatch"
	// StatusUnverifiable: paired items where at least one side has no quantity.
	StatusUnverifiable MatchStatus = "unverifiable"
	// StatusMissingFromBid: an RFP item with no counterpart in the bid.
	StatusMissingFromBid MatchStatus = "missing_from_bid"
	// StatusMissingFromRFP: a plan quantity with no counterpart in the RFP.
	StatusMissingFromRFP MatchStatus = "missing_from_rfp"
	// StatusExtraInBid: a bid item with no counterpart in the RFP.
	StatusExtraInBid MatchStatus = "extra_in_bid"
)

// Matched reports whether the status represents a committed pairing of two items.
func (s MatchStatus) Matched() bool {
	switch s {
	case StatusMatchedConsistent, StatusQuantityMismatch, StatusUnitMismatch, StatusUnverifiable:
		return true
	}
	return false
}

// Severity classifies an issue in the analysis report.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// BidStatus is the overall readiness verdict derived from an AnalysisReport.
type BidStatus string

const (
	BidStatusReady          BidStatus = "ready"
	BidStatusNotReady       BidStatus = "not_ready"
	BidStatusIncomplete     BidStatus = "incomplete"
	BidStatusNeedsReview    BidStatus = "needs_review"
	BidStatusReviewWarnings BidStatus = "review_warnings"
)
