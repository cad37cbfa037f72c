package validator

import (
	"fmt"
	"strings"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

const itemCodePenalty = 0.90

// ItemCodeCheck flags absent or all-zero item codes. These are
// placeholder/default-code artifacts and mark the row as low-trust, but
// never fatal: a reviewer may still approve the row.
func ItemCodeCheck() RowCheck {
	return &rowCheck{
		key:      "row.item_code",
		name:     "Item Code Sanity",
		severity: domain.CheckSeverityWarning,
		apply: func(item *faktur.LineItem, _ RateContext) []CheckResult {
			fp := fmt.Sprintf("items[%d].item_code", item.LineNo)
			switch {
			case item.ItemCode == "":
				return []CheckResult{{
					FieldPath: fp,
					Expected:  "non-empty item code",
					Actual:    "",
					Message:   "item code missing",
					Penalty:   itemCodePenalty,
				}}
			case strings.Trim(item.ItemCode, "0") == "":
				return []CheckResult{{
					FieldPath: fp,
					Expected:  "non-placeholder item code",
					Actual:    item.ItemCode,
					Message:   "item code is the all-zero placeholder",
					Penalty:   itemCodePenalty,
				}}
			default:
				return []CheckResult{{
					Passed:    true,
					FieldPath: fp,
					Actual:    item.ItemCode,
					Message:   "item code present",
				}}
			}
		},
	}
}
