package faktur

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token is a single OCR token with its bounding box. Positional data is
// carried for layout-aware disambiguation; the pipeline primarily consumes
// the line-delimited text.
type Token struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
	Page   int     `json:"page"`
}

// RawDocument is the opaque OCR output handed to the pipeline. It is never
// mutated: every parse attempt reads it fresh and builds a new ParseResult.
type RawDocument struct {
	Text        string     `json:"raw_text"`
	Tokens      []Token    `json:"tokens,omitempty"`
	DocTypeCode string     `json:"doc_type_code,omitempty"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
}

// ExtractedField is one summary field pulled out of the raw text by a label
// pattern. Found distinguishes an extraction miss (label never matched) from
// a field that matched but normalized to zero.
type ExtractedField struct {
	Label      string          `json:"label"`
	Raw        string          `json:"raw"`
	Value      decimal.Decimal `json:"value"`
	Found      bool            `json:"found"`
	Line       int             `json:"line"`
	Diagnostic string          `json:"diagnostic,omitempty"`
}

// LineItemFlags records which corrections touched a row.
type LineItemFlags struct {
	DPPRecalculated      bool `json:"dpp_recalculated"`
	VATInclusiveDetected bool `json:"vat_inclusive_detected"`
	FieldsSwapped        bool `json:"fields_swapped"`
}

// LineItem is a single parsed invoice row. Correctors mutate it in place
// before validation; after validation it is frozen into the ParseResult.
type LineItem struct {
	LineNo        int             `json:"line_no"`
	Description   string          `json:"description"`
	ItemCode      string          `json:"item_code"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	TaxableBase   decimal.Decimal `json:"taxable_base"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	RowConfidence float64         `json:"row_confidence"`
	Notes         []string        `json:"notes"`
	Flags         LineItemFlags   `json:"flags"`
}

// HeaderSummary is the document-level totals block.
type HeaderSummary struct {
	GrossTotal        decimal.Decimal `json:"gross_total"`
	DiscountTotal     decimal.Decimal `json:"discount_total"`
	AdvanceTotal      decimal.Decimal `json:"advance_total"`
	TaxableBaseTotal  decimal.Decimal `json:"taxable_base_total"`
	TaxTotal          decimal.Decimal `json:"tax_total"`
	SecondaryTaxTotal decimal.Decimal `json:"secondary_tax_total"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	RateTier          RateTier        `json:"rate_type"`
}

// ParseStatus is the terminal routing decision for a parsed document.
type ParseStatus string

const (
	StatusApproved    ParseStatus = "approved"
	StatusNeedsReview ParseStatus = "needs_review"
)

// ReasonCode distinguishes why a document was routed to review.
type ReasonCode string

const (
	ReasonNothingExtracted    ReasonCode = "nothing_extracted"
	ReasonLowRowConfidence    ReasonCode = "low_row_confidence"
	ReasonReconcileMismatch   ReasonCode = "reconciliation_mismatch"
	ReasonDateOutsidePeriod   ReasonCode = "date_outside_period"
	ReasonHeaderIncomplete    ReasonCode = "header_incomplete"
)

// Penalty is one entry of the ordered confidence ledger. The final document
// confidence is the product of all multipliers applied to the base value, so
// it can be reconstructed from the audit trail alone.
type Penalty struct {
	Reason     string  `json:"reason"`
	Multiplier float64 `json:"multiplier"`
}

// Discrepancy describes one header field that failed cross-total
// reconciliation.
type Discrepancy struct {
	Field    string          `json:"field"`
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
	DiffPct  float64         `json:"diff_pct"`
}

// Reconciliation is the outcome of comparing line-item sums against the
// header totals.
type Reconciliation struct {
	Match         bool          `json:"match"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// DebugInfo carries every intermediate signal the pipeline produced. It is a
// first-class output: reviewers resolve NeedsReview documents from it.
type DebugInfo struct {
	RateTier          RateTier         `json:"rate_tier"`
	RateRatio         string           `json:"rate_ratio,omitempty"`
	FakturNumber      string           `json:"faktur_number,omitempty"`
	DocumentDate      string           `json:"document_date,omitempty"`
	SummaryFields     []ExtractedField `json:"summary_fields"`
	SwapCorrections   int              `json:"swap_corrections"`
	InclusiveDetected int              `json:"inclusive_detected"`
	NumberDiagnostics []string         `json:"number_diagnostics,omitempty"`
	Penalties         []Penalty        `json:"penalties"`
	Reconciliation    *Reconciliation  `json:"reconciliation,omitempty"`
}

// ParseResult is the single output of the pipeline. It is immutable once
// returned and contains everything a reviewer or downstream consumer needs.
type ParseResult struct {
	Items           []LineItem    `json:"items"`
	Header          HeaderSummary `json:"header"`
	Status          ParseStatus   `json:"status"`
	Confidence      float64       `json:"confidence"`
	ReasonCodes     []ReasonCode  `json:"reason_codes,omitempty"`
	ValidationNotes []string      `json:"validation_notes"`
	Debug           DebugInfo     `json:"debug_info"`
}

// Confidence bands for a validated row.
const (
	ConfidenceHigh   = 0.95
	ConfidenceMedium = 0.85
)

// RowBand classifies a row confidence into high / medium / needs review.
func RowBand(confidence float64) string {
	switch {
	case confidence >= ConfidenceHigh:
		return "high"
	case confidence >= ConfidenceMedium:
		return "medium"
	default:
		return "needs_review"
	}
}
