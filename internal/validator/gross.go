package validator

import (
	"fmt"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

const grossPenalty = 0.80

// GrossConsistencyCheck flags rows whose taxable base exceeds the gross
// amount. The base is the gross less discounts, so it can equal the gross
// but never exceed it; a violation means the gross column was misread.
func GrossConsistencyCheck() RowCheck {
	return &rowCheck{
		key:      "row.gross_consistency",
		name:     "Base/Gross Consistency",
		severity: domain.CheckSeverityCritical,
		apply: func(item *faktur.LineItem, _ RateContext) []CheckResult {
			fp := fmt.Sprintf("items[%d].gross_amount", item.LineNo)
			if item.TaxableBase.LessThanOrEqual(item.GrossAmount) {
				return []CheckResult{{Passed: true, FieldPath: fp, Actual: fmtAmount(item.GrossAmount), Message: "gross amount covers the taxable base"}}
			}
			return []CheckResult{{
				FieldPath: fp,
				Expected:  fmt.Sprintf(">= %s", fmtAmount(item.TaxableBase)),
				Actual:    fmtAmount(item.GrossAmount),
				Message: fmt.Sprintf("gross amount %s is below the taxable base %s",
					fmtAmount(item.GrossAmount), fmtAmount(item.TaxableBase)),
				Penalty: grossPenalty,
			}}
		},
	}
}
