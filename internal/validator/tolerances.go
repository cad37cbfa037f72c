package validator

import "github.com/shopspring/decimal"

// Tolerances holds the empirically-tuned thresholds for row validation and
// cross-total reconciliation. All values are configurable; the defaults were
// tuned against a representative document corpus.
type Tolerances struct {
	// ArithmeticPct is the allowed relative deviation (percent) between the
	// stated tax amount and base × rate.
	ArithmeticPct decimal.Decimal
	// ReconcileAbsFloor absorbs small currency-unit rounding when comparing
	// line-item sums to header totals.
	ReconcileAbsFloor decimal.Decimal
	// ReconcilePct accommodates compounding rounding across many rows; the
	// effective tolerance is the larger of the floor and this percentage.
	ReconcilePct decimal.Decimal
	// MagnitudeFloor and MagnitudeCeiling bound plausible row amounts.
	MagnitudeFloor   decimal.Decimal
	MagnitudeCeiling decimal.Decimal
}

// DefaultTolerances returns the tuned defaults (amounts in rupiah).
func DefaultTolerances() Tolerances {
	return Tolerances{
		ArithmeticPct:     decimal.NewFromFloat(0.5),
		ReconcileAbsFloor: decimal.NewFromInt(1000),
		ReconcilePct:      decimal.NewFromFloat(0.5),
		MagnitudeFloor:    decimal.NewFromInt(1000),
		MagnitudeCeiling:  decimal.NewFromInt(100_000_000_000),
	}
}
