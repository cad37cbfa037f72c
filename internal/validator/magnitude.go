package validator

import (
	"fmt"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

const magnitudePenalty = 0.92

// MagnitudeCheck flags amounts below the plausible floor or above the
// plausible ceiling for manual attention.
func MagnitudeCheck(tol Tolerances) RowCheck {
	return &rowCheck{
		key:      "row.magnitude",
		name:     "Amount Magnitude Sanity",
		severity: domain.CheckSeverityWarning,
		apply: func(item *faktur.LineItem, _ RateContext) []CheckResult {
			fp := fmt.Sprintf("items[%d].taxable_base", item.LineNo)
			switch {
			case item.TaxableBase.LessThan(tol.MagnitudeFloor):
				return []CheckResult{{
					FieldPath: fp,
					Expected:  fmt.Sprintf(">= %s", fmtAmount(tol.MagnitudeFloor)),
					Actual:    fmtAmount(item.TaxableBase),
					Message:   "taxable base below plausible floor",
					Penalty:   magnitudePenalty,
				}}
			case item.TaxableBase.GreaterThan(tol.MagnitudeCeiling):
				return []CheckResult{{
					FieldPath: fp,
					Expected:  fmt.Sprintf("<= %s", fmtAmount(tol.MagnitudeCeiling)),
					Actual:    fmtAmount(item.TaxableBase),
					Message:   "taxable base above plausible ceiling",
					Penalty:   magnitudePenalty,
				}}
			default:
				return []CheckResult{{Passed: true, FieldPath: fp, Actual: fmtAmount(item.TaxableBase), Message: "amount within plausible range"}}
			}
		},
	}
}
