package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LineItem is one normalized pay item from an RFP, a bid proposal, or a plan
// takeoff. Quantity is a pointer so that "no quantity stated" survives
// normalization instead of collapsing to zero.
type LineItem struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Unit        Unit     `json:"unit,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Category    Category `json:"category"`
	Source      Source   `json:"source"`
	Mandatory   bool     `json:"mandatory,omitempty"`
	Position    int      `json:"position"`
	Notes       string   `json:"notes,omitempty"`
}

// HasQuantity reports whether the item carries a usable quantity.
func (li *LineItem) HasQuantity() bool {
	return li.Quantity != nil
}

// MatchCandidate is a scored potential pairing between two line items.
type MatchCandidate struct {
	LeftID  string  `json:"left_id"`
	RightID string  `json:"right_id"`
	Score   float64 `json:"score"`
}

// ComparisonResult is the reconciliation outcome for one pairing (or one
// unmatched item). Item references are stored by ID per source so a result
// can never dangle.
type ComparisonResult struct {
	Status       MatchStatus `json:"status"`
	Severity     Severity    `json:"severity,omitempty"`
	RFPItemID    string      `json:"rfp_item_id,omitempty"`
	BidItemID    string      `json:"bid_item_id,omitempty"`
	PlanItemID   string      `json:"plan_item_id,omitempty"`
	Description  string      `json:"description"`
	Explanation  string      `json:"explanation"`
	MatchScore   float64     `json:"match_score,omitempty"`
	Delta        *float64    `json:"delta,omitempty"`
	DeviationPct *float64    `json:"deviation_pct,omitempty"`

	// Position is the document order of the reference-side item, used for
	// stable issue ordering. Not serialized.
	Position int `json:"-"`
}

// ReportSummary holds the item counts behind the report scores.
type ReportSummary struct {
	RFPItems     int `json:"rfp_items"`
	BidItems     int `json:"bid_items"`
	PlanItems    int `json:"plan_items"`
	Matched      int `json:"matched"`
	Consistent   int `json:"consistent"`
	Mismatched   int `json:"mismatched"`
	Unverifiable int `json:"unverifiable"`
	MissingBid   int `json:"missing_from_bid"`
	MissingRFP   int `json:"missing_from_rfp"`
	ExtraBid     int `json:"extra_in_bid"`
}

// AnalysisReport is the full output of one reconciliation run. It is a pure
// function of the inputs: no timestamps, no identifiers minted inside the
// engine, so equal inputs yield byte-identical reports.
type AnalysisReport struct {
	Results        []ComparisonResult `json:"results"`
	CriticalIssues []ComparisonResult `json:"critical_issues"`
	Warnings       []ComparisonResult `json:"warnings"`
	Completeness   float64            `json:"completeness"`
	Accuracy       float64            `json:"accuracy"`
	Summary        ReportSummary      `json:"summary"`
	Status         BidStatus          `json:"status"`
	StatusMessage  string             `json:"status_message"`
}

// QuantityComparison is the output of the bid-vs-plan quantity check,
// bucketed the way estimators review takeoffs.
type QuantityComparison struct {
	Matches        []ComparisonResult `json:"matches"`
	Overestimated  []ComparisonResult `json:"overestimated"`
	Underestimated []ComparisonResult `json:"underestimated"`
	NotOnPlans     []ComparisonResult `json:"not_on_plans"`
	NotInProposal  []ComparisonResult `json:"not_in_proposal"`
	Summary        ReportSummary      `json:"summary"`
}

// ProjectInfo is header-level metadata extracted from the RFP.
type ProjectInfo struct {
	ProjectName string `json:"project_name,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Location    string `json:"location,omitempty"`
	BidDate     string `json:"bid_date,omitempty"`
	EngineerEst string `json:"engineer_estimate,omitempty"`
}

// DocumentMeta records one uploaded source document archived to object storage.
type DocumentMeta struct {
	ID           uuid.UUID    `json:"id"`
	SessionID    string       `json:"session_id"`
	Kind         DocumentKind `json:"kind"`
	OriginalName string       `json:"original_name"`
	FileType     FileType     `json:"file_type"`
	FileSize     int64        `json:"file_size"`
	StorageKey   string       `json:"storage_key"`
	ItemCount    int          `json:"item_count"`
	UploadedAt   time.Time    `json:"uploaded_at"`
}

// AnalysisRecord is one persisted history row for a completed analysis.
type AnalysisRecord struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	SessionID    string          `db:"session_id" json:"session_id"`
	ProjectName  string          `db:"project_name" json:"project_name"`
	Status       BidStatus       `db:"status" json:"status"`
	Completeness float64         `db:"completeness" json:"completeness"`
	Accuracy     float64         `db:"accuracy" json:"accuracy"`
	RFPItems     int             `db:"rfp_items" json:"rfp_items"`
	BidItems     int             `db:"bid_items" json:"bid_items"`
	PlanItems    int             `db:"plan_items" json:"plan_items"`
	Criticals    int             `db:"criticals" json:"criticals"`
	Warnings     int             `db:"warnings" json:"warnings"`
	Report       json.RawMessage `db:"report" json:"report,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// SessionState is everything held for one user session.
type SessionState struct {
	ID          string         `json:"id"`
	ProjectInfo ProjectInfo    `json:"project_info"`
	RFPItems    []LineItem     `json:"rfp_items"`
	BidItems    []LineItem     `json:"bid_items"`
	PlanItems   []LineItem     `json:"plan_items"`
	Documents   []DocumentMeta `json:"documents"`
	Report      *AnalysisReport `json:"report,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
