package validator

import (
	"fmt"
	"time"

	"pajakos/internal/faktur"
)

// Document-level penalty multipliers. Like the row penalties these compound
// multiplicatively, and each application is recorded in the ledger so the
// final confidence can be re-derived from the audit trail.
const (
	reconcileMismatchPenalty = 0.75
	dateOutsidePenalty       = 0.80
	headerIncompletePenalty  = 0.90
)

// Metadata is the document-level context checked alongside the amounts.
type Metadata struct {
	DocumentDate   *time.Time
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	HeaderComplete bool
}

// Engine runs the registered row checks and aggregates their outcomes, the
// reconciliation result and the metadata checks into a routing decision.
type Engine struct {
	registry *Registry
	tol      Tolerances
}

// NewEngine creates an Engine over a check registry.
func NewEngine(registry *Registry, tol Tolerances) *Engine {
	return &Engine{registry: registry, tol: tol}
}

// Tolerances exposes the engine's thresholds for reconciliation.
func (e *Engine) Tolerances() Tolerances {
	return e.tol
}

// ValidateRows applies every registered check to every row, in registry
// order. Each failed check multiplies the row confidence by its penalty and
// appends a note; rows are annotated in place.
func (e *Engine) ValidateRows(items []faktur.LineItem, rc RateContext) {
	for i := range items {
		item := &items[i]
		confidence := 1.0
		for _, check := range e.registry.All() {
			for _, res := range check.Apply(item, rc) {
				if res.Passed {
					continue
				}
				confidence *= res.Penalty
				item.Notes = append(item.Notes,
					fmt.Sprintf("[%s] %s: %s", check.Severity(), check.Name(), res.Message))
			}
		}
		item.RowConfidence = confidence
	}
}

// Evaluation is the document-level outcome produced by Evaluate.
type Evaluation struct {
	Status      faktur.ParseStatus
	Confidence  float64
	ReasonCodes []faktur.ReasonCode
	Notes       []string
	Penalties   []faktur.Penalty
}

// Evaluate folds validated rows, the reconciliation outcome and the metadata
// checks into the final routing decision. The document confidence starts at
// the weakest row and is then discounted once per document-level finding; a
// document is approved only when no reason code fired at all.
func (e *Engine) Evaluate(items []faktur.LineItem, rec faktur.Reconciliation, meta Metadata) Evaluation {
	if len(items) == 0 {
		return Evaluation{
			Status:      faktur.StatusNeedsReview,
			Confidence:  0,
			ReasonCodes: []faktur.ReasonCode{faktur.ReasonNothingExtracted},
			Notes:       []string{"no line items could be extracted from the document"},
			Penalties:   []faktur.Penalty{{Reason: string(faktur.ReasonNothingExtracted), Multiplier: 0}},
		}
	}

	ev := Evaluation{}

	minConf := 1.0
	lowRows := 0
	for _, it := range items {
		if it.RowConfidence < minConf {
			minConf = it.RowConfidence
		}
		if it.RowConfidence < faktur.ConfidenceMedium {
			lowRows++
		}
	}
	confidence := minConf
	ev.Penalties = append(ev.Penalties, faktur.Penalty{Reason: "row_confidence_floor", Multiplier: minConf})
	if lowRows > 0 {
		ev.ReasonCodes = append(ev.ReasonCodes, faktur.ReasonLowRowConfidence)
		ev.Notes = append(ev.Notes, fmt.Sprintf("%d of %d rows fell below the review threshold", lowRows, len(items)))
	}

	if !rec.Match {
		confidence *= reconcileMismatchPenalty
		ev.ReasonCodes = append(ev.ReasonCodes, faktur.ReasonReconcileMismatch)
		ev.Penalties = append(ev.Penalties, faktur.Penalty{Reason: string(faktur.ReasonReconcileMismatch), Multiplier: reconcileMismatchPenalty})
		for _, d := range rec.Discrepancies {
			ev.Notes = append(ev.Notes, fmt.Sprintf(
				"header %s %s does not reconcile with line-item sum %s (diff %.2f%%)",
				d.Field, d.Actual.StringFixed(2), d.Expected.StringFixed(2), d.DiffPct))
		}
	}

	if dateOutsidePeriod(meta) {
		confidence *= dateOutsidePenalty
		ev.ReasonCodes = append(ev.ReasonCodes, faktur.ReasonDateOutsidePeriod)
		ev.Penalties = append(ev.Penalties, faktur.Penalty{Reason: string(faktur.ReasonDateOutsidePeriod), Multiplier: dateOutsidePenalty})
		ev.Notes = append(ev.Notes, fmt.Sprintf(
			"document date %s falls outside the declared tax period", meta.DocumentDate.Format("2006-01-02")))
	}

	if !meta.HeaderComplete {
		confidence *= headerIncompletePenalty
		ev.ReasonCodes = append(ev.ReasonCodes, faktur.ReasonHeaderIncomplete)
		ev.Penalties = append(ev.Penalties, faktur.Penalty{Reason: string(faktur.ReasonHeaderIncomplete), Multiplier: headerIncompletePenalty})
		ev.Notes = append(ev.Notes, "one or more header totals were not found in the document")
	}

	ev.Confidence = confidence
	if len(ev.ReasonCodes) == 0 {
		ev.Status = faktur.StatusApproved
	} else {
		ev.Status = faktur.StatusNeedsReview
	}
	return ev
}

// dateOutsidePeriod reports whether a known document date falls outside a
// known tax period. Missing date or missing bounds never fire the check.
func dateOutsidePeriod(meta Metadata) bool {
	if meta.DocumentDate == nil || meta.PeriodStart == nil || meta.PeriodEnd == nil {
		return false
	}
	d := *meta.DocumentDate
	return d.Before(*meta.PeriodStart) || d.After(*meta.PeriodEnd)
}
