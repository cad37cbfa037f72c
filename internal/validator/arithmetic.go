package validator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

const arithmeticPenalty = 0.85

// ArithmeticCheck verifies base × rate ≈ tax at the detected document rate.
// Violations are warnings, not rejections: the row stays, flagged for
// review.
func ArithmeticCheck(tol Tolerances) RowCheck {
	return &rowCheck{
		key:      "row.tax_arithmetic",
		name:     "Base/Tax Consistency",
		severity: domain.CheckSeverityWarning,
		apply: func(item *faktur.LineItem, rc RateContext) []CheckResult {
			fp := fmt.Sprintf("items[%d].tax_amount", item.LineNo)
			expected := item.TaxableBase.Mul(rc.Rate).Round(2)

			if expected.IsZero() {
				// Zero-rate (or zero-base) rows must carry zero tax.
				if item.TaxAmount.IsZero() {
					return []CheckResult{{Passed: true, FieldPath: fp, Expected: "0.00", Actual: fmtAmount(item.TaxAmount), Message: "zero tax consistent with rate"}}
				}
				return []CheckResult{{
					FieldPath: fp,
					Expected:  "0.00",
					Actual:    fmtAmount(item.TaxAmount),
					Message:   fmt.Sprintf("tax %s stated on a zero-rate row", fmtAmount(item.TaxAmount)),
					Penalty:   arithmeticPenalty,
				}}
			}

			diff := item.TaxAmount.Sub(expected).Abs()
			pct := diff.Div(expected).Mul(decimal.NewFromInt(100))
			if pct.LessThanOrEqual(tol.ArithmeticPct) {
				return []CheckResult{{Passed: true, FieldPath: fp, Expected: fmtAmount(expected), Actual: fmtAmount(item.TaxAmount), Message: "tax matches base at detected rate"}}
			}
			return []CheckResult{{
				FieldPath: fp,
				Expected:  fmtAmount(expected),
				Actual:    fmtAmount(item.TaxAmount),
				Message: fmt.Sprintf("tax %s deviates %s%% from base %s at rate %s",
					fmtAmount(item.TaxAmount), pct.Round(2), fmtAmount(item.TaxableBase), rc.Rate),
				Penalty: arithmeticPenalty,
			}}
		},
	}
}
