package validator

import (
	"github.com/shopspring/decimal"

	"pajakos/internal/faktur"
)

// HeaderPresence records which header totals were actually found in the
// document. Absent totals are skipped rather than reconciled against zero.
type HeaderPresence struct {
	TaxableBase bool
	Tax         bool
	Gross       bool
}

// Reconcile compares the line-item sums against the header totals. The
// expected value is always the sum of rows, the actual is the stated header
// figure. A total matches when the difference stays within the larger of the
// absolute floor and the percentage tolerance; the floor absorbs
// currency-unit rounding on small documents, the percentage absorbs
// compounded per-row rounding on large ones.
func Reconcile(items []faktur.LineItem, header faktur.HeaderSummary, present HeaderPresence, tol Tolerances) faktur.Reconciliation {
	var sumBase, sumTax, sumGross decimal.Decimal
	for _, it := range items {
		sumBase = sumBase.Add(it.TaxableBase)
		sumTax = sumTax.Add(it.TaxAmount)
		sumGross = sumGross.Add(it.GrossAmount)
	}

	rec := faktur.Reconciliation{Match: true}
	compare := func(field string, expected, actual decimal.Decimal) {
		diff := actual.Sub(expected).Abs()
		limit := tol.ReconcileAbsFloor
		if pctLimit := actual.Abs().Mul(tol.ReconcilePct).Div(decimal.NewFromInt(100)); pctLimit.GreaterThan(limit) {
			limit = pctLimit
		}
		if diff.LessThanOrEqual(limit) {
			return
		}
		rec.Match = false
		diffPct := 0.0
		if !actual.IsZero() {
			diffPct, _ = diff.Div(actual.Abs()).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		rec.Discrepancies = append(rec.Discrepancies, faktur.Discrepancy{
			Field:    field,
			Expected: expected.Round(2),
			Actual:   actual.Round(2),
			DiffPct:  diffPct,
		})
	}

	// Fixed comparison order keeps the discrepancy list stable across runs.
	if present.TaxableBase {
		compare("taxable_base_total", sumBase, header.TaxableBaseTotal)
	}
	if present.Tax {
		compare("tax_total", sumTax, header.TaxTotal)
	}
	if present.Gross {
		compare("gross_total", sumGross, header.GrossTotal)
	}
	return rec
}
