package validator

import (
	"fmt"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

const (
	swapPenalty      = 0.80
	inclusivePenalty = 0.95
	recalcPenalty    = 0.95
)

// CorrectionFlagChecks turns the corrections applied upstream into ledger
// entries. A corrected row is a usable row, but the correction itself is
// evidence the source text was degraded, so each one discounts confidence.
func CorrectionFlagChecks() []RowCheck {
	return []RowCheck{
		&rowCheck{
			key:      "row.fields_swapped",
			name:     "Base/Tax Swap Correction",
			severity: domain.CheckSeverityCritical,
			apply: func(item *faktur.LineItem, _ RateContext) []CheckResult {
				fp := fmt.Sprintf("items[%d]", item.LineNo)
				if !item.Flags.FieldsSwapped {
					return []CheckResult{{Passed: true, FieldPath: fp, Message: "base and tax in original positions"}}
				}
				return []CheckResult{{
					FieldPath: fp,
					Expected:  "base >= tax",
					Actual:    fmt.Sprintf("base %s, tax %s after swap", fmtAmount(item.TaxableBase), fmtAmount(item.TaxAmount)),
					Message:   "taxable base and tax amount were swapped in the source",
					Penalty:   swapPenalty,
				}}
			},
		},
		&rowCheck{
			key:      "row.vat_inclusive",
			name:     "VAT-Inclusive Base Correction",
			severity: domain.CheckSeverityWarning,
			apply: func(item *faktur.LineItem, _ RateContext) []CheckResult {
				fp := fmt.Sprintf("items[%d].taxable_base", item.LineNo)
				if !item.Flags.VATInclusiveDetected {
					return []CheckResult{{Passed: true, FieldPath: fp, Message: "base stated tax-exclusive"}}
				}
				return []CheckResult{{
					FieldPath: fp,
					Expected:  "tax-exclusive base",
					Actual:    fmtAmount(item.TaxableBase),
					Message:   "base equalled the gross amount; tax was backed out",
					Penalty:   inclusivePenalty,
				}}
			},
		},
		&rowCheck{
			key:      "row.dpp_recalculated",
			name:     "Derived Amount",
			severity: domain.CheckSeverityWarning,
			apply: func(item *faktur.LineItem, _ RateContext) []CheckResult {
				fp := fmt.Sprintf("items[%d].tax_amount", item.LineNo)
				if !item.Flags.DPPRecalculated {
					return []CheckResult{{Passed: true, FieldPath: fp, Message: "amounts taken verbatim from the source"}}
				}
				return []CheckResult{{
					FieldPath: fp,
					Expected:  "tax stated in the source",
					Actual:    fmtAmount(item.TaxAmount),
					Message:   "tax amount derived from base at the detected rate",
					Penalty:   recalcPenalty,
				}}
			},
		},
	}
}
